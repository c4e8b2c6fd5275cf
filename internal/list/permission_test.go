package list_test

import (
	"sync"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/list"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sharedList() *list.List {
	now := time.Now().UTC()
	l := list.New("owner", list.CreateListDTO{Name: "Weekly"}, now)
	return list.ApplyShares(l, []list.ShareRequest{
		{UserID: "viewer", Permission: list.PermissionView},
		{UserID: "editor", Permission: list.PermissionEdit},
		{UserID: "admin", Permission: list.PermissionAdmin},
	}, now).List
}

var allPermissions = []list.Permission{list.PermissionView, list.PermissionEdit, list.PermissionAdmin}

var _ = Describe("Permission Evaluator", func() {
	var l *list.List

	BeforeEach(func() {
		l = sharedList()
	})

	It("always allows the owner", func() {
		for _, p := range allPermissions {
			Expect(list.Evaluate("owner", l, p).Allowed).To(BeTrue(), string(p))
		}
	})

	It("allows the owner even with no shares at all", func() {
		bare := list.New("solo", list.CreateListDTO{Name: "Solo"}, time.Now())
		Expect(list.Evaluate("solo", bare, list.PermissionAdmin).Allowed).To(BeTrue())
	})

	It("denies strangers with no access", func() {
		d := list.Evaluate("stranger", l, list.PermissionView)

		Expect(d.Allowed).To(BeFalse())
		Expect(d.Reason).To(Equal(list.ReasonNoAccess))
		Expect(d.Err()).To(MatchError(errors.ErrNoAccess))
	})

	DescribeTable("share levels",
		func(user string, required list.Permission, allowed bool) {
			d := list.Evaluate(user, l, required)
			Expect(d.Allowed).To(Equal(allowed))
			if !allowed {
				Expect(d.Reason).To(Equal(list.ReasonInsufficient))
				Expect(d.Err()).To(MatchError(errors.ErrInsufficientPermission))
			}
		},
		Entry("view satisfies view", "viewer", list.PermissionView, true),
		Entry("view does not satisfy edit", "viewer", list.PermissionEdit, false),
		Entry("view does not satisfy admin", "viewer", list.PermissionAdmin, false),
		Entry("edit satisfies view", "editor", list.PermissionView, true),
		Entry("edit satisfies edit", "editor", list.PermissionEdit, true),
		Entry("edit does not satisfy admin", "editor", list.PermissionAdmin, false),
		Entry("admin satisfies view", "admin", list.PermissionView, true),
		Entry("admin satisfies edit", "admin", list.PermissionEdit, true),
		Entry("admin satisfies admin", "admin", list.PermissionAdmin, true),
	)

	Describe("operations", func() {
		It("lets a view sharer toggle items but not add, update or delete them", func() {
			Expect(list.Authorize("viewer", l, list.OpToggleCheck)).To(Succeed())
			Expect(list.Authorize("viewer", l, list.OpListItems)).To(Succeed())
			Expect(list.Authorize("viewer", l, list.OpAddItem)).To(MatchError(errors.ErrInsufficientPermission))
			Expect(list.Authorize("viewer", l, list.OpUpdateItem)).To(MatchError(errors.ErrInsufficientPermission))
			Expect(list.Authorize("viewer", l, list.OpDeleteItem)).To(MatchError(errors.ErrInsufficientPermission))
		})

		It("denies an edit sharer the admin operations", func() {
			for _, op := range []list.Operation{list.OpShare, list.OpUnshareOther, list.OpDelete} {
				Expect(list.Authorize("editor", l, op)).To(MatchError(errors.ErrInsufficientPermission), string(op))
			}
			for _, op := range []list.Operation{list.OpView, list.OpUpdate, list.OpComplete, list.OpAddItem} {
				Expect(list.Authorize("editor", l, op)).To(Succeed(), string(op))
			}
		})

		It("treats unknown operations as admin-only", func() {
			Expect(list.RequiredPermission(list.Operation("rename_owner"))).To(Equal(list.PermissionAdmin))
		})
	})

	It("is safe to evaluate concurrently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(list.Evaluate("editor", l, list.PermissionEdit).Allowed).To(BeTrue())
				Expect(list.Evaluate("stranger", l, list.PermissionView).Allowed).To(BeFalse())
			}()
		}
		wg.Wait()
	})
})
