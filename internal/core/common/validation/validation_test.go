package validation_test

import (
	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func fieldErrors(err *errors.AppError) []errors.ValidationError {
	details, ok := err.Details.(errors.ValidationErrors)
	Expect(ok).To(BeTrue())
	return details.Errors
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("name", "Weekly").Required().MaxLength(100)
		v.Field("status", "shopping").OneOf(errors.ErrCodeInvalidStatus, "active", "shopping", "completed")
		Expect(v.Validate()).To(BeNil())
	})

	It("collects every failing field into one error", func() {
		v := validation.NewValidator()
		v.Field("name", "   ").Required()
		v.Field("status", "paused").OneOf(errors.ErrCodeInvalidStatus, "active", "shopping")
		v.Field("quantity", -1.0).MinFloat(0, errors.ErrCodeInvalidQuantity)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Type).To(Equal(errors.ErrorTypeValidation))

		fields := fieldErrors(err)
		Expect(fields).To(HaveLen(3))
		Expect(fields[0].Field).To(Equal("name"))
		Expect(fields[1].Code).To(Equal(string(errors.ErrCodeInvalidStatus)))
		Expect(fields[2].Code).To(Equal(string(errors.ErrCodeInvalidQuantity)))
	})

	It("lets OneOf skip empty and nil values", func() {
		var missing *string
		v := validation.NewValidator()
		v.Field("theme", missing).OneOf(errors.ErrCodeValidationFailed, "light", "dark")
		v.Field("type", "").OneOf(errors.ErrCodeInvalidListType, "permanent", "oneTime")
		Expect(v.Validate()).To(BeNil())
	})

	It("treats a nil pointer as missing for Required", func() {
		var missing *string
		v := validation.NewValidator()
		v.Field("name", missing).Required()
		Expect(v.Validate()).NotTo(BeNil())
	})

	It("checks integer lower bounds", func() {
		v := validation.NewValidator()
		v.Field("shoppingFrequency", -3).MinInt(0, errors.ErrCodeValidationFailed)
		Expect(v.Validate()).NotTo(BeNil())
	})

	Describe("ValidateName", func() {
		It("rejects names over 200 characters", func() {
			long := make([]byte, 201)
			for i := range long {
				long[i] = 'a'
			}
			Expect(validation.ValidateName("name", string(long))).NotTo(BeNil())
			Expect(validation.ValidateName("name", "Milk")).To(BeNil())
		})
	})
})
