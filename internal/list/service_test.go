package list_test

import (
	"context"
	"sync"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	listDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/list"
	listItemDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/listitem"
	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/list"
	listPostgres "github.com/frahmantamala/shopping-list/internal/list/postgres"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	listItemPostgres "github.com/frahmantamala/shopping-list/internal/listitem/postgres"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeDirectory map[string]string

func (d fakeDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := d[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type notification struct {
	userID, kind, message, listID string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, kind, message, relatedListID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID, kind, message, relatedListID})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fakeRecorder struct {
	created, shared, completed int
}

func (r *fakeRecorder) ListCreated(string)              { r.created++ }
func (r *fakeRecorder) ListShared(count int)            { r.shared += count }
func (r *fakeRecorder) ShoppingCompleted(string, int64) { r.completed++ }

type testEnv struct {
	db        *gorm.DB
	lists     *list.Service
	items     *listitem.Service
	itemRepo  *listItemPostgres.ItemRepository
	notifier  *fakeNotifier
	publisher *recordingPublisher
	recorder  *fakeRecorder
	clock     time.Time
}

func (e *testEnv) now() time.Time {
	e.clock = e.clock.Add(time.Second)
	return e.clock
}

func newTestEnv() *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(
		&listDatamodel.List{},
		&listDatamodel.ListShare{},
		&listDatamodel.ListHistory{},
		&listItemDatamodel.ListItem{},
	)).To(Succeed())

	env := &testEnv{
		db:        db,
		itemRepo:  listItemPostgres.NewItemRepository(db),
		notifier:  &fakeNotifier{},
		publisher: &recordingPublisher{},
		recorder:  &fakeRecorder{},
		clock:     time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	users := fakeDirectory{"u1": "Dana", "u2": "Sam", "u3": "Noa", "u4": "Lior"}
	env.lists = list.NewService(listPostgres.NewListRepository(db), env.itemRepo, users, env.notifier, env.publisher, logger.Discard()).
		WithRecorder(env.recorder).
		WithClock(env.now)
	env.items = listitem.NewService(env.itemRepo, env.lists, nil, env.publisher, logger.Discard()).
		WithClock(env.now)
	return env
}

func (e *testEnv) createList(owner string, listType list.Type) *list.List {
	l, err := e.lists.CreateList(context.Background(), owner, list.CreateListDTO{Name: "Weekly", Type: string(listType)})
	Expect(err).NotTo(HaveOccurred())
	return l
}

func (e *testEnv) share(listID, requester, target string, perm list.Permission) {
	_, err := e.lists.Share(context.Background(), listID, requester, list.ShareListDTO{
		Users: []list.ShareRequest{{UserID: target, Permission: perm}},
	})
	Expect(err).NotTo(HaveOccurred())
}

func (e *testEnv) addItem(listID, requester, name, category string) *listitem.Item {
	item, err := e.items.AddItem(context.Background(), listID, requester, listitem.AddItemDTO{
		Name:     name,
		Category: catalog.ItemCategory{Main: category},
	})
	Expect(err).NotTo(HaveOccurred())
	return item
}

var _ = Describe("List Service", func() {
	var (
		ctx context.Context
		env *testEnv
	)

	BeforeEach(func() {
		ctx = context.Background()
		env = newTestEnv()
	})

	Describe("CreateList", func() {
		It("defaults to an active one-time list", func() {
			l, err := env.lists.CreateList(ctx, "u1", list.CreateListDTO{Name: "Party"})

			Expect(err).NotTo(HaveOccurred())
			Expect(l.Type).To(Equal(list.TypeOneTime))
			Expect(l.Status).To(Equal(list.StatusActive))
			Expect(l.History).To(HaveLen(1))
			Expect(env.recorder.created).To(Equal(1))

			stored, err := env.lists.GetList(ctx, l.ID, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Party"))
			Expect(stored.History).To(HaveLen(1))
		})

		It("rejects an empty name", func() {
			_, err := env.lists.CreateList(ctx, "u1", list.CreateListDTO{Name: "  "})

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects an unknown type", func() {
			_, err := env.lists.CreateList(ctx, "u1", list.CreateListDTO{Name: "x", Type: "weekly"})

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("GetList", func() {
		It("returns not found for a missing list", func() {
			_, err := env.lists.GetList(ctx, "missing", "u1")

			Expect(err).To(MatchError(errors.ErrListNotFound))
		})

		It("denies users without a share", func() {
			l := env.createList("u1", list.TypeOneTime)

			_, err := env.lists.GetList(ctx, l.ID, "u2")

			Expect(err).To(MatchError(errors.ErrNoAccess))
		})
	})

	Describe("GetLists and GetSharedLists", func() {
		It("returns owned and shared lists by last modification", func() {
			a := env.createList("u1", list.TypeOneTime)
			b := env.createList("u1", list.TypePermanent)
			env.share(a.ID, "u1", "u2", list.PermissionView)

			owned, err := env.lists.GetLists(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(owned).To(HaveLen(2))
			Expect(owned[0].ID).To(Equal(a.ID))
			Expect(owned[1].ID).To(Equal(b.ID))

			shared, err := env.lists.GetSharedLists(ctx, "u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(shared).To(HaveLen(1))
			Expect(shared[0].ID).To(Equal(a.ID))
		})
	})

	Describe("UpdateList", func() {
		It("records the changed fields in history", func() {
			l := env.createList("u1", list.TypeOneTime)
			name := "Renamed"

			updated, err := env.lists.UpdateList(ctx, l.ID, "u1", list.UpdateListDTO{Name: &name})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Renamed"))
			last := updated.History[len(updated.History)-1]
			Expect(last.Action).To(Equal(list.ActionUpdate))
			Expect(last.Details).To(HaveKeyWithValue("name", "Renamed"))
			Expect(updated.LastModified).To(BeTemporally(">", l.LastModified))
		})

		It("denies view sharers", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionView)
			name := "x"

			_, err := env.lists.UpdateList(ctx, l.ID, "u2", list.UpdateListDTO{Name: &name})

			Expect(err).To(MatchError(errors.ErrInsufficientPermission))
		})
	})

	Describe("UpdateStatus", func() {
		It("moves through the status states", func() {
			l := env.createList("u1", list.TypeOneTime)

			shopping, err := env.lists.UpdateStatus(ctx, l.ID, "u1", list.UpdateStatusDTO{Status: "shopping"})
			Expect(err).NotTo(HaveOccurred())
			Expect(shopping.Status).To(Equal(list.StatusShopping))
			Expect(shopping.History[len(shopping.History)-1].Action).To(Equal(list.ActionStatusChange))
		})

		It("rejects unknown statuses", func() {
			l := env.createList("u1", list.TypeOneTime)

			_, err := env.lists.UpdateStatus(ctx, l.ID, "u1", list.UpdateStatusDTO{Status: "archived"})

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Share", func() {
		It("adds the share, records history and notifies new users", func() {
			l := env.createList("u1", list.TypeOneTime)

			shared, err := env.lists.Share(ctx, l.ID, "u1", list.ShareListDTO{Users: []list.ShareRequest{
				{UserID: "u2", Permission: list.PermissionView},
				{UserID: "u3"},
			}})

			Expect(err).NotTo(HaveOccurred())
			Expect(shared.SharedWith).To(HaveLen(2))
			s3, _ := shared.ShareFor("u3")
			Expect(s3.Permission).To(Equal(list.PermissionView))
			last := shared.History[len(shared.History)-1]
			Expect(last.Action).To(Equal(list.ActionShare))
			Expect(last.Details["users"]).To(HaveLen(2))

			Expect(env.notifier.sent).To(HaveLen(2))
			Expect(env.notifier.sent[0].kind).To(Equal(list.NotificationKindShare))
			Expect(env.notifier.sent[0].message).To(Equal("Dana shared a shopping list with you: Weekly"))
			Expect(env.notifier.sent[0].listID).To(Equal(l.ID))
		})

		It("overwrites an existing share without notifying again", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionView)
			env.share(l.ID, "u1", "u2", list.PermissionEdit)

			stored, err := env.lists.GetList(ctx, l.ID, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.SharedWith).To(HaveLen(1))
			Expect(stored.SharedWith[0].Permission).To(Equal(list.PermissionEdit))
			Expect(env.notifier.sent).To(HaveLen(1))
		})

		It("lets an admin sharer share further", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionAdmin)

			_, err := env.lists.Share(ctx, l.ID, "u2", list.ShareListDTO{Users: []list.ShareRequest{{UserID: "u3"}}})

			Expect(err).NotTo(HaveOccurred())
		})

		It("denies an edit sharer", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionEdit)

			_, err := env.lists.Share(ctx, l.ID, "u2", list.ShareListDTO{Users: []list.ShareRequest{{UserID: "u3"}}})

			Expect(err).To(MatchError(errors.ErrInsufficientPermission))
		})

		It("rejects unknown users", func() {
			l := env.createList("u1", list.TypeOneTime)

			_, err := env.lists.Share(ctx, l.ID, "u1", list.ShareListDTO{Users: []list.ShareRequest{{UserID: "ghost"}}})

			Expect(err).To(MatchError(errors.ErrUserNotFound))
		})

		It("rejects invalid permissions", func() {
			l := env.createList("u1", list.TypeOneTime)

			_, err := env.lists.Share(ctx, l.ID, "u1", list.ShareListDTO{Users: []list.ShareRequest{{UserID: "u2", Permission: "owner"}}})

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Unshare", func() {
		var l *list.List

		BeforeEach(func() {
			l = env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionView)
			env.share(l.ID, "u1", "u3", list.PermissionEdit)
		})

		It("lets a view sharer remove themself", func() {
			next, err := env.lists.Unshare(ctx, l.ID, "u2", "u2")

			Expect(err).NotTo(HaveOccurred())
			Expect(next.IsMember("u2")).To(BeFalse())
			Expect(next.History[len(next.History)-1].Action).To(Equal(list.ActionUnshare))
		})

		It("does not let an edit sharer remove others", func() {
			_, err := env.lists.Unshare(ctx, l.ID, "u3", "u2")

			Expect(err).To(MatchError(errors.ErrInsufficientPermission))
		})

		It("lets the owner remove anyone", func() {
			next, err := env.lists.Unshare(ctx, l.ID, "u1", "u3")

			Expect(err).NotTo(HaveOccurred())
			Expect(next.IsMember("u3")).To(BeFalse())
			Expect(next.IsMember("u2")).To(BeTrue())
		})

		It("reports users who are not shared", func() {
			_, err := env.lists.Unshare(ctx, l.ID, "u1", "u4")

			Expect(err).To(MatchError(errors.ErrUserNotFound))
		})
	})

	Describe("DeleteList", func() {
		It("deletes the items before the list", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.addItem(l.ID, "u1", "Milk", "dairy")

			Expect(env.lists.DeleteList(ctx, l.ID, "u1")).To(Succeed())

			count, err := env.itemRepo.CountByListID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
			_, err = env.lists.GetList(ctx, l.ID, "u1")
			Expect(err).To(MatchError(errors.ErrListNotFound))
		})

		It("refuses admin sharers who are not the owner", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionAdmin)

			Expect(env.lists.DeleteList(ctx, l.ID, "u2")).To(MatchError(errors.ErrNotOwner))
		})

		It("refuses edit sharers", func() {
			l := env.createList("u1", list.TypeOneTime)
			env.share(l.ID, "u1", "u2", list.PermissionEdit)

			Expect(env.lists.DeleteList(ctx, l.ID, "u2")).To(MatchError(errors.ErrInsufficientPermission))
		})
	})

	Describe("concurrent editors", func() {
		// Writes are not serialized: two requests working from the same
		// snapshot overwrite each other's sharedWith and the last save wins.
		It("can lose a share when two admins share from the same snapshot", func() {
			l := env.createList("u1", list.TypeOneTime)
			repo := listPostgres.NewListRepository(env.db)

			snapshot, err := repo.GetByID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())

			first := list.ApplyShares(snapshot, []list.ShareRequest{{UserID: "u2", Permission: list.PermissionView}}, env.now())
			second := list.ApplyShares(snapshot, []list.ShareRequest{{UserID: "u3", Permission: list.PermissionView}}, env.now())
			Expect(repo.Save(ctx, first.List)).To(Succeed())
			Expect(repo.Save(ctx, second.List)).To(Succeed())

			stored, err := repo.GetByID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(userIDs(stored)).To(ConsistOf("u3"))
		})
	})
})
