package catalog

import (
	"sort"
	"time"

	catalogDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/catalog"
	"github.com/google/uuid"
)

// ItemCategory places a product or list item in the category tree.
type ItemCategory struct {
	Main string `json:"main"`
	Sub  string `json:"sub,omitempty"`
}

type PricePoint struct {
	Price       float64   `json:"price"`
	Date        time.Time `json:"date"`
	Supermarket string    `json:"supermarket,omitempty"`
}

type Product struct {
	ID             string       `json:"id"`
	Barcode        string       `json:"barcode"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Price          *float64     `json:"price,omitempty"`
	PriceHistory   []PricePoint `json:"priceHistory"`
	Category       ItemCategory `json:"category"`
	Image          string       `json:"image,omitempty"`
	DefaultUnit    string       `json:"defaultUnit"`
	AvailableUnits []string     `json:"availableUnits"`
	Tags           []string     `json:"tags"`
	Allergens      []string     `json:"allergens"`
	Popularity     int          `json:"popularity"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type Category struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Icon         string   `json:"icon,omitempty"`
	Color        string   `json:"color,omitempty"`
	Parent       *string  `json:"parent,omitempty"`
	DefaultUnits []string `json:"defaultUnits"`
	CustomOrder  int      `json:"customOrder"`
}

// AddPrice records price for supermarket when it differs from the current
// price or the supermarket has no entry yet. It reports whether p changed.
func (p *Product) AddPrice(price float64, supermarket string, at time.Time) (PricePoint, bool) {
	hasEntry := false
	for _, h := range p.PriceHistory {
		if supermarket == "" || h.Supermarket == supermarket {
			hasEntry = true
			break
		}
	}
	if p.Price != nil && *p.Price == price && hasEntry {
		return PricePoint{}, false
	}

	point := PricePoint{Price: price, Date: at, Supermarket: supermarket}
	p.PriceHistory = append(p.PriceHistory, point)
	p.Price = &price
	p.UpdatedAt = at
	return point, true
}

func NewProduct(dto CreateProductDTO, now time.Time) *Product {
	p := &Product{
		ID:             uuid.NewString(),
		Barcode:        dto.Barcode,
		Name:           dto.Name,
		Description:    dto.Description,
		Category:       dto.Category,
		Image:          dto.Image,
		DefaultUnit:    dto.DefaultUnit,
		AvailableUnits: nonNil(dto.AvailableUnits),
		Tags:           nonNil(dto.Tags),
		Allergens:      nonNil(dto.Allergens),
		PriceHistory:   []PricePoint{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.DefaultUnit == "" {
		p.DefaultUnit = DefaultUnit
	}
	if dto.Price != nil {
		p.AddPrice(*dto.Price, dto.Supermarket, now)
	}
	return p
}

// DefaultUnit is used when neither the caller nor the product names a unit.
const DefaultUnit = "unit"

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}

func ToDataModel(p *Product) *catalogDatamodel.Product {
	m := &catalogDatamodel.Product{
		ID:             p.ID,
		Barcode:        p.Barcode,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CategoryMain:   p.Category.Main,
		CategorySub:    p.Category.Sub,
		Image:          p.Image,
		DefaultUnit:    p.DefaultUnit,
		AvailableUnits: p.AvailableUnits,
		Tags:           p.Tags,
		Allergens:      p.Allergens,
		Popularity:     p.Popularity,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, h := range p.PriceHistory {
		m.PriceHistory = append(m.PriceHistory, PriceToDataModel(p.ID, h))
	}
	return m
}

func PriceToDataModel(productID string, h PricePoint) catalogDatamodel.ProductPrice {
	return catalogDatamodel.ProductPrice{
		ID:          uuid.NewString(),
		ProductID:   productID,
		Price:       h.Price,
		Supermarket: h.Supermarket,
		Date:        h.Date,
	}
}

func FromDataModel(m *catalogDatamodel.Product) *Product {
	p := &Product{
		ID:             m.ID,
		Barcode:        m.Barcode,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		Category:       ItemCategory{Main: m.CategoryMain, Sub: m.CategorySub},
		Image:          m.Image,
		DefaultUnit:    m.DefaultUnit,
		AvailableUnits: nonNil(m.AvailableUnits),
		Tags:           nonNil(m.Tags),
		Allergens:      nonNil(m.Allergens),
		Popularity:     m.Popularity,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		PriceHistory:   make([]PricePoint, 0, len(m.PriceHistory)),
	}
	for _, h := range m.PriceHistory {
		p.PriceHistory = append(p.PriceHistory, PricePoint{Price: h.Price, Date: h.Date, Supermarket: h.Supermarket})
	}
	sort.SliceStable(p.PriceHistory, func(i, j int) bool {
		return p.PriceHistory[i].Date.Before(p.PriceHistory[j].Date)
	})
	return p
}

func CategoryToDataModel(c *Category) *catalogDatamodel.Category {
	return &catalogDatamodel.Category{
		Code:         c.Code,
		Name:         c.Name,
		Icon:         c.Icon,
		Color:        c.Color,
		ParentCode:   c.Parent,
		DefaultUnits: c.DefaultUnits,
		CustomOrder:  c.CustomOrder,
	}
}

func CategoryFromDataModel(m *catalogDatamodel.Category) *Category {
	return &Category{
		Code:         m.Code,
		Name:         m.Name,
		Icon:         m.Icon,
		Color:        m.Color,
		Parent:       m.ParentCode,
		DefaultUnits: nonNil(m.DefaultUnits),
		CustomOrder:  m.CustomOrder,
	}
}
