package list_test

import (
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/list"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("List DTOs", func() {
	Describe("CreateListDTO", func() {
		It("accepts a name at the column limit", func() {
			Expect(list.CreateListDTO{Name: strings.Repeat("a", 100)}.Validate()).To(Succeed())
		})

		It("rejects a longer name before it reaches storage", func() {
			err := list.CreateListDTO{Name: strings.Repeat("a", 101)}.Validate()

			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("UpdateListDTO", func() {
		It("applies the same name limit", func() {
			ok := strings.Repeat("b", 100)
			long := strings.Repeat("b", 101)

			Expect(list.UpdateListDTO{Name: &ok}.Validate()).To(Succeed())
			Expect(errors.IsType(list.UpdateListDTO{Name: &long}.Validate(), errors.ErrorTypeValidation)).To(BeTrue())
		})
	})
})
