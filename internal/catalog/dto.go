package catalog

import (
	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

type SearchQuery struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

// Normalize clamps paging to sane values.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	return q
}

func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type SearchResult struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
	Count      int         `json:"count"`
}

type CreateProductDTO struct {
	Barcode        string       `json:"barcode"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Price          *float64     `json:"price"`
	Supermarket    string       `json:"supermarket"`
	Category       ItemCategory `json:"category"`
	Image          string       `json:"image"`
	DefaultUnit    string       `json:"defaultUnit"`
	AvailableUnits []string     `json:"availableUnits"`
	Tags           []string     `json:"tags"`
	Allergens      []string     `json:"allergens"`
}

func (d CreateProductDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("barcode", d.Barcode).Required().MaxLength(64)
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("category.main", d.Category.Main).Required().MaxLength(50)
	v.Field("category.sub", d.Category.Sub).MaxLength(50)
	v.Field("defaultUnit", d.DefaultUnit).MaxLength(20)
	v.Field("supermarket", d.Supermarket).MaxLength(100)
	v.Field("price", d.Price).MinFloat(0, errors.ErrCodeInvalidPrice)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdatePriceDTO struct {
	Price       *float64 `json:"price"`
	Supermarket string   `json:"supermarket"`
}

func (d UpdatePriceDTO) Validate() error {
	if d.Price == nil || *d.Price <= 0 {
		return errors.NewValidationFieldError("price", "price must be a positive number", errors.ErrCodeInvalidPrice)
	}
	if len(d.Supermarket) > 100 {
		return errors.NewValidationFieldError("supermarket", "supermarket must not exceed 100 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

type CreateCategoryDTO struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	Color        string   `json:"color"`
	Parent       *string  `json:"parent"`
	DefaultUnits []string `json:"defaultUnits"`
	CustomOrder  int      `json:"customOrder"`
}

func (d CreateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("code", d.Code).Required().MaxLength(50)
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("icon", d.Icon).MaxLength(50)
	v.Field("color", d.Color).MaxLength(20)
	if d.Parent != nil {
		v.Field("parent", *d.Parent).MaxLength(50)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
