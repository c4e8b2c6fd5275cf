package listitem_test

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Item", func() {
	var (
		t0   time.Time
		item *listitem.Item
	)

	BeforeEach(func() {
		t0 = time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
		item = &listitem.Item{ID: "i1", Name: "Milk", Category: catalog.ItemCategory{Main: "dairy"}}
	})

	Describe("Toggle", func() {
		It("flips when no value is given", func() {
			next, changed := listitem.Toggle(item, nil, t0)

			Expect(changed).To(BeTrue())
			Expect(next.IsChecked).To(BeTrue())
			Expect(*next.CheckedAt).To(Equal(t0))
			Expect(item.IsChecked).To(BeFalse())
		})

		It("stamps checkedAt only on the transition to checked", func() {
			yes := true
			first, _ := listitem.Toggle(item, &yes, t0)
			second, changed := listitem.Toggle(first, &yes, t0.Add(time.Hour))

			Expect(changed).To(BeFalse())
			Expect(second.IsChecked).To(BeTrue())
			Expect(*second.CheckedAt).To(Equal(t0))
		})

		It("clears checkedAt when unchecked", func() {
			checked, _ := listitem.Toggle(item, nil, t0)
			unchecked, changed := listitem.Toggle(checked, nil, t0.Add(time.Minute))

			Expect(changed).To(BeTrue())
			Expect(unchecked.IsChecked).To(BeFalse())
			Expect(unchecked.CheckedAt).To(BeNil())
		})
	})

	Describe("Sort", func() {
		It("orders by main category, custom order, then add time", func() {
			items := []*listitem.Item{
				{Name: "d", Category: catalog.ItemCategory{Main: "produce"}, AddedAt: t0},
				{Name: "c", Category: catalog.ItemCategory{Main: "dairy"}, CustomOrder: 2, AddedAt: t0},
				{Name: "b", Category: catalog.ItemCategory{Main: "dairy"}, CustomOrder: 1, AddedAt: t0.Add(time.Minute)},
				{Name: "a", Category: catalog.ItemCategory{Main: "dairy"}, CustomOrder: 1, AddedAt: t0},
			}

			listitem.Sort(items)

			names := []string{}
			for _, it := range items {
				names = append(names, it.Name)
			}
			Expect(names).To(Equal([]string{"a", "b", "c", "d"}))
		})
	})

	Describe("AddItemDTO", func() {
		It("fills blank fields from the product", func() {
			price := 4.2
			dto := listitem.AddItemDTO{Name: "My milk"}.FillFrom(&catalog.Product{
				Name:        "Milk 3%",
				Category:    catalog.ItemCategory{Main: "dairy", Sub: "milk"},
				DefaultUnit: "liter",
				Price:       &price,
			})

			Expect(dto.Name).To(Equal("My milk"))
			Expect(dto.Category.Main).To(Equal("dairy"))
			Expect(dto.Unit).To(Equal("liter"))
			Expect(*dto.Price).To(Equal(4.2))
		})

		It("requires a main category", func() {
			err := listitem.AddItemDTO{Name: "Milk"}.Validate()

			Expect(err).To(HaveOccurred())
		})

		It("accepts category and unit values at their column limits", func() {
			dto := listitem.AddItemDTO{
				Name:     "Milk",
				Category: catalog.ItemCategory{Main: strings.Repeat("m", 50), Sub: strings.Repeat("s", 50)},
				Unit:     strings.Repeat("u", 20),
			}

			Expect(dto.Validate()).To(Succeed())
		})

		DescribeTable("rejects values longer than their columns",
			func(dto listitem.AddItemDTO) {
				Expect(errors.IsType(dto.Validate(), errors.ErrorTypeValidation)).To(BeTrue())
			},
			Entry("main category", listitem.AddItemDTO{Name: "Milk", Category: catalog.ItemCategory{Main: strings.Repeat("m", 51)}}),
			Entry("sub category", listitem.AddItemDTO{Name: "Milk", Category: catalog.ItemCategory{Main: "dairy", Sub: strings.Repeat("s", 51)}}),
			Entry("unit", listitem.AddItemDTO{Name: "Milk", Category: catalog.ItemCategory{Main: "dairy"}, Unit: strings.Repeat("u", 21)}),
		)
	})

	Describe("UpdateItemDTO", func() {
		It("checks the same limits on the fields it carries", func() {
			unit := strings.Repeat("u", 21)
			Expect(errors.IsType(listitem.UpdateItemDTO{Unit: &unit}.Validate(), errors.ErrorTypeValidation)).To(BeTrue())

			cat := &catalog.ItemCategory{Main: "dairy", Sub: strings.Repeat("s", 51)}
			Expect(errors.IsType(listitem.UpdateItemDTO{Category: cat}.Validate(), errors.ErrorTypeValidation)).To(BeTrue())

			okUnit := "kg"
			Expect(listitem.UpdateItemDTO{Unit: &okUnit}.Validate()).To(Succeed())
		})
	})
})
