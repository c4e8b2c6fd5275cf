package listitem

import (
	"sort"
	"time"

	"github.com/frahmantamala/shopping-list/internal/catalog"
	listItemDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/listitem"
	"github.com/google/uuid"
)

const DefaultQuantity = 1

type Item struct {
	ID          string               `json:"id"`
	ListID      string               `json:"listId"`
	ProductID   *string              `json:"productId,omitempty"`
	Name        string               `json:"name"`
	Category    catalog.ItemCategory `json:"category"`
	Quantity    float64              `json:"quantity"`
	Unit        string               `json:"unit"`
	Price       *float64             `json:"price,omitempty"`
	IsPermanent bool                 `json:"isPermanent"`
	IsChecked   bool                 `json:"isChecked"`
	CheckedAt   *time.Time           `json:"checkedAt,omitempty"`
	AddedBy     string               `json:"addedBy"`
	AddedAt     time.Time            `json:"addedAt"`
	CustomOrder int                  `json:"customOrder"`
	Notes       string               `json:"notes,omitempty"`
}

func (i *Item) Clone() *Item {
	cp := *i
	if i.ProductID != nil {
		id := *i.ProductID
		cp.ProductID = &id
	}
	if i.Price != nil {
		p := *i.Price
		cp.Price = &p
	}
	if i.CheckedAt != nil {
		t := *i.CheckedAt
		cp.CheckedAt = &t
	}
	return &cp
}

// SetChecked returns a copy with the checked flag set to checked. checkedAt
// is stamped only on an unchecked to checked transition and cleared on the
// reverse; setting the current value again changes nothing.
func SetChecked(i *Item, checked bool, now time.Time) (*Item, bool) {
	if i.IsChecked == checked {
		return i, false
	}
	next := i.Clone()
	next.IsChecked = checked
	if checked {
		next.CheckedAt = &now
	} else {
		next.CheckedAt = nil
	}
	return next, true
}

// Toggle flips the checked flag, or sets it when desired is given.
func Toggle(i *Item, desired *bool, now time.Time) (*Item, bool) {
	target := !i.IsChecked
	if desired != nil {
		target = *desired
	}
	return SetChecked(i, target, now)
}

// Sort orders items by main category, then custom order, then add time.
func Sort(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if x.Category.Main != y.Category.Main {
			return x.Category.Main < y.Category.Main
		}
		if x.CustomOrder != y.CustomOrder {
			return x.CustomOrder < y.CustomOrder
		}
		return x.AddedAt.Before(y.AddedAt)
	})
}

// New builds an unchecked item from a validated dto.
func New(listID, addedBy string, dto AddItemDTO, now time.Time) *Item {
	item := &Item{
		ID:          uuid.NewString(),
		ListID:      listID,
		ProductID:   dto.ProductID,
		Name:        dto.Name,
		Category:    dto.Category,
		Quantity:    DefaultQuantity,
		Unit:        dto.Unit,
		Price:       dto.Price,
		IsPermanent: dto.IsPermanent,
		AddedBy:     addedBy,
		AddedAt:     now,
		CustomOrder: dto.CustomOrder,
		Notes:       dto.Notes,
	}
	if dto.Quantity != nil {
		item.Quantity = *dto.Quantity
	}
	if item.Unit == "" {
		item.Unit = catalog.DefaultUnit
	}
	return item
}

func ToDataModel(i *Item) *listItemDatamodel.ListItem {
	return &listItemDatamodel.ListItem{
		ID:           i.ID,
		ListID:       i.ListID,
		ProductID:    i.ProductID,
		Name:         i.Name,
		CategoryMain: i.Category.Main,
		CategorySub:  i.Category.Sub,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
		Price:        i.Price,
		IsPermanent:  i.IsPermanent,
		IsChecked:    i.IsChecked,
		CheckedAt:    i.CheckedAt,
		AddedBy:      i.AddedBy,
		AddedAt:      i.AddedAt,
		CustomOrder:  i.CustomOrder,
		Notes:        i.Notes,
	}
}

func FromDataModel(m *listItemDatamodel.ListItem) *Item {
	return &Item{
		ID:          m.ID,
		ListID:      m.ListID,
		ProductID:   m.ProductID,
		Name:        m.Name,
		Category:    catalog.ItemCategory{Main: m.CategoryMain, Sub: m.CategorySub},
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		Price:       m.Price,
		IsPermanent: m.IsPermanent,
		IsChecked:   m.IsChecked,
		CheckedAt:   m.CheckedAt,
		AddedBy:     m.AddedBy,
		AddedAt:     m.AddedAt,
		CustomOrder: m.CustomOrder,
		Notes:       m.Notes,
	}
}
