package listitem_test

import (
	"context"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	listDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/listitem"
	listTables "github.com/frahmantamala/shopping-list/internal/core/datamodel/list"
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

type staticDirectory struct{}

func (staticDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = id
	}
	return out, nil
}

type silentNotifier struct{}

func (silentNotifier) Notify(context.Context, string, string, string, string) {}

type fakeProducts map[string]*catalog.Product

func (f fakeProducts) Lookup(ctx context.Context, id string) (*catalog.Product, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, errors.ErrProductNotFound
}

type checkCounter struct{ checked, unchecked int }

func (c *checkCounter) ItemChecked(checked bool) {
	if checked {
		c.checked++
	} else {
		c.unchecked++
	}
}

var _ = Describe("List Item Service", func() {
	var (
		ctx      context.Context
		lists    *list.Service
		service  *listitem.Service
		counter  *checkCounter
		clock    time.Time
		listID   string
		products fakeProducts
	)

	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&listTables.List{}, &listTables.ListShare{}, &listTables.ListHistory{},
			&listDatamodel.ListItem{},
		)).To(Succeed())

		price := 12.9
		products = fakeProducts{"p-coffee": {
			ID:          "p-coffee",
			Name:        "Ground Coffee",
			Category:    catalog.ItemCategory{Main: "pantry", Sub: "coffee"},
			DefaultUnit: "pack",
			Price:       &price,
		}}

		itemRepo := listItemPostgres.NewItemRepository(db)
		lists = list.NewService(listPostgres.NewListRepository(db), itemRepo, staticDirectory{}, silentNotifier{}, nil, logger.Discard()).
			WithClock(tick)
		counter = &checkCounter{}
		service = listitem.NewService(itemRepo, lists, products, nil, logger.Discard()).
			WithRecorder(counter).
			WithClock(tick)

		l, err := lists.CreateList(ctx, "owner", list.CreateListDTO{Name: "Home"})
		Expect(err).NotTo(HaveOccurred())
		listID = l.ID
		_, err = lists.Share(ctx, listID, "owner", list.ShareListDTO{Users: []list.ShareRequest{
			{UserID: "viewer", Permission: list.PermissionView},
			{UserID: "editor", Permission: list.PermissionEdit},
		}})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("AddItem", func() {
		It("stores an unchecked item and registers its category", func() {
			before, _ := lists.GetList(ctx, listID, "owner")

			item, err := service.AddItem(ctx, listID, "editor", listitem.AddItemDTO{
				Name:     "Tomatoes",
				Category: catalog.ItemCategory{Main: "produce"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(item.IsChecked).To(BeFalse())
			Expect(item.AddedBy).To(Equal("editor"))
			Expect(item.ListID).To(Equal(listID))
			Expect(item.Quantity).To(BeEquivalentTo(listitem.DefaultQuantity))

			after, _ := lists.GetList(ctx, listID, "owner")
			Expect(after.CategoriesUsed).To(ConsistOf("produce"))
			Expect(after.LastModified).To(BeTemporally(">", before.LastModified))
		})

		It("rejects a missing main category before storing anything", func() {
			_, err := service.AddItem(ctx, listID, "owner", listitem.AddItemDTO{Name: "Mystery"})

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
			items, err := service.GetItems(ctx, listID, "owner")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("fills details from a catalog product", func() {
			pid := "p-coffee"

			item, err := service.AddItem(ctx, listID, "owner", listitem.AddItemDTO{ProductID: &pid})

			Expect(err).NotTo(HaveOccurred())
			Expect(item.Name).To(Equal("Ground Coffee"))
			Expect(item.Category.Main).To(Equal("pantry"))
			Expect(item.Unit).To(Equal("pack"))
			Expect(*item.Price).To(Equal(12.9))
		})

		It("denies view sharers", func() {
			_, err := service.AddItem(ctx, listID, "viewer", listitem.AddItemDTO{
				Name:     "Chips",
				Category: catalog.ItemCategory{Main: "snacks"},
			})

			Expect(err).To(MatchError(errors.ErrInsufficientPermission))
		})
	})

	Describe("UpdateItem", func() {
		var item *listitem.Item

		BeforeEach(func() {
			var err error
			item, err = service.AddItem(ctx, listID, "owner", listitem.AddItemDTO{
				Name:     "Cheese",
				Category: catalog.ItemCategory{Main: "dairy"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("registers a changed main category on the list", func() {
			qty := 3.0

			updated, err := service.UpdateItem(ctx, listID, item.ID, "editor", listitem.UpdateItemDTO{
				Category: &catalog.ItemCategory{Main: "deli"},
				Quantity: &qty,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Category.Main).To(Equal("deli"))
			Expect(updated.Quantity).To(Equal(3.0))
			l, _ := lists.GetList(ctx, listID, "owner")
			Expect(l.CategoriesUsed).To(ConsistOf("dairy", "deli"))
		})

		It("denies view sharers", func() {
			name := "Gouda"

			_, err := service.UpdateItem(ctx, listID, item.ID, "viewer", listitem.UpdateItemDTO{Name: &name})

			Expect(err).To(MatchError(errors.ErrInsufficientPermission))
		})

		It("returns not found for items of another list", func() {
			other, err := lists.CreateList(ctx, "owner", list.CreateListDTO{Name: "Other"})
			Expect(err).NotTo(HaveOccurred())
			name := "x"

			_, err = service.UpdateItem(ctx, other.ID, item.ID, "owner", listitem.UpdateItemDTO{Name: &name})

			Expect(err).To(MatchError(errors.ErrItemNotFound))
		})
	})

	Describe("ToggleCheck", func() {
		var item *listitem.Item

		BeforeEach(func() {
			var err error
			item, err = service.AddItem(ctx, listID, "owner", listitem.AddItemDTO{
				Name:     "Apples",
				Category: catalog.ItemCategory{Main: "produce"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets a view sharer check items", func() {
			checked, err := service.ToggleCheck(ctx, listID, item.ID, "viewer", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(checked.IsChecked).To(BeTrue())
			Expect(checked.CheckedAt).NotTo(BeNil())
			Expect(counter.checked).To(Equal(1))
		})

		It("does not re-stamp checkedAt when set to true twice", func() {
			yes := true
			first, err := service.ToggleCheck(ctx, listID, item.ID, "owner", &yes)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.ToggleCheck(ctx, listID, item.ID, "owner", &yes)

			Expect(err).NotTo(HaveOccurred())
			Expect(second.IsChecked).To(BeTrue())
			Expect(second.CheckedAt.Equal(*first.CheckedAt)).To(BeTrue())
			Expect(counter.checked).To(Equal(1))
		})

		It("clears checkedAt on uncheck", func() {
			_, err := service.ToggleCheck(ctx, listID, item.ID, "owner", nil)
			Expect(err).NotTo(HaveOccurred())

			unchecked, err := service.ToggleCheck(ctx, listID, item.ID, "owner", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(unchecked.IsChecked).To(BeFalse())
			Expect(unchecked.CheckedAt).To(BeNil())

			items, err := service.GetItems(ctx, listID, "owner")
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].CheckedAt).To(BeNil())
		})

		It("denies strangers", func() {
			_, err := service.ToggleCheck(ctx, listID, item.ID, "stranger", nil)

			Expect(err).To(MatchError(errors.ErrNoAccess))
		})
	})

	Describe("DeleteItem", func() {
		It("removes the item for editors only", func() {
			item, err := service.AddItem(ctx, listID, "owner", listitem.AddItemDTO{
				Name:     "Soap",
				Category: catalog.ItemCategory{Main: "household"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteItem(ctx, listID, item.ID, "viewer")).To(MatchError(errors.ErrInsufficientPermission))
			Expect(service.DeleteItem(ctx, listID, item.ID, "editor")).To(Succeed())
			Expect(service.DeleteItem(ctx, listID, item.ID, "editor")).To(MatchError(errors.ErrItemNotFound))

			l, _ := lists.GetList(ctx, listID, "owner")
			Expect(l.CategoriesUsed).To(ContainElement("household"))
		})
	})

	Describe("GetItems", func() {
		It("returns items grouped by category", func() {
			for _, dto := range []listitem.AddItemDTO{
				{Name: "Bananas", Category: catalog.ItemCategory{Main: "produce"}},
				{Name: "Milk", Category: catalog.ItemCategory{Main: "dairy"}, CustomOrder: 2},
				{Name: "Butter", Category: catalog.ItemCategory{Main: "dairy"}, CustomOrder: 1},
			} {
				_, err := service.AddItem(ctx, listID, "owner", dto)
				Expect(err).NotTo(HaveOccurred())
			}

			items, err := service.GetItems(ctx, listID, "viewer")

			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))
			Expect(items[0].Name).To(Equal("Butter"))
			Expect(items[1].Name).To(Equal("Milk"))
			Expect(items[2].Name).To(Equal("Bananas"))
		})
	})
})
