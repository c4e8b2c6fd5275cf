package listitem

import (
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

type AddItemDTO struct {
	ProductID   *string              `json:"productId"`
	Name        string               `json:"name"`
	Category    catalog.ItemCategory `json:"category"`
	Quantity    *float64             `json:"quantity"`
	Unit        string               `json:"unit"`
	Price       *float64             `json:"price"`
	IsPermanent bool                 `json:"isPermanent"`
	CustomOrder int                  `json:"customOrder"`
	Notes       string               `json:"notes"`
}

func (d AddItemDTO) Normalize() AddItemDTO {
	d.Name = strings.TrimSpace(d.Name)
	d.Category.Main = strings.TrimSpace(d.Category.Main)
	d.Category.Sub = strings.TrimSpace(d.Category.Sub)
	if d.ProductID != nil && strings.TrimSpace(*d.ProductID) == "" {
		d.ProductID = nil
	}
	return d
}

// FillFrom copies name, category, unit and price from product where d leaves
// them blank.
func (d AddItemDTO) FillFrom(product *catalog.Product) AddItemDTO {
	if product == nil {
		return d
	}
	if d.Name == "" {
		d.Name = product.Name
	}
	if d.Category.Main == "" {
		d.Category = product.Category
	}
	if d.Unit == "" {
		d.Unit = product.DefaultUnit
	}
	if d.Price == nil && product.Price != nil {
		p := *product.Price
		d.Price = &p
	}
	return d
}

// Validate checks a fully filled item; product fill-in happens before it.
func (d AddItemDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("category.main", d.Category.Main).Required().MaxLength(50)
	v.Field("category.sub", d.Category.Sub).MaxLength(50)
	v.Field("quantity", d.Quantity).MinFloat(0, errors.ErrCodeInvalidQuantity)
	v.Field("unit", d.Unit).MaxLength(20)
	v.Field("price", d.Price).MinFloat(0, errors.ErrCodeInvalidPrice)
	v.Field("notes", d.Notes).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateItemDTO is a partial update; nil fields are left alone.
type UpdateItemDTO struct {
	Name        *string               `json:"name,omitempty"`
	Category    *catalog.ItemCategory `json:"category,omitempty"`
	Quantity    *float64              `json:"quantity,omitempty"`
	Unit        *string               `json:"unit,omitempty"`
	Price       *float64              `json:"price,omitempty"`
	IsPermanent *bool                 `json:"isPermanent,omitempty"`
	CustomOrder *int                  `json:"customOrder,omitempty"`
	Notes       *string               `json:"notes,omitempty"`
}

func (d UpdateItemDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required()
		v.Field("name", *d.Name).MaxLength(200)
	}
	if d.Category != nil {
		v.Field("category.main", d.Category.Main).Required().MaxLength(50)
		v.Field("category.sub", d.Category.Sub).MaxLength(50)
	}
	if d.Unit != nil {
		v.Field("unit", *d.Unit).MaxLength(20)
	}
	if d.Notes != nil {
		v.Field("notes", *d.Notes).MaxLength(500)
	}
	v.Field("quantity", d.Quantity).MinFloat(0, errors.ErrCodeInvalidQuantity)
	v.Field("price", d.Price).MinFloat(0, errors.ErrCodeInvalidPrice)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ToggleCheckDTO flips the item when IsChecked is absent.
type ToggleCheckDTO struct {
	IsChecked *bool `json:"isChecked"`
}

type ItemsResponse struct {
	Items []*Item `json:"items"`
	Count int     `json:"count"`
}
