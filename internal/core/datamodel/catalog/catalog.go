package catalog

import "time"

type Product struct {
	ID             string         `gorm:"column:id;primaryKey"`
	Barcode        string         `gorm:"column:barcode;uniqueIndex;not null"`
	Name           string         `gorm:"column:name;not null;index"`
	Description    string         `gorm:"column:description"`
	Price          *float64       `gorm:"column:price"`
	CategoryMain   string         `gorm:"column:category_main;not null;index"`
	CategorySub    string         `gorm:"column:category_sub"`
	Image          string         `gorm:"column:image"`
	DefaultUnit    string         `gorm:"column:default_unit"`
	AvailableUnits []string       `gorm:"column:available_units;type:text;serializer:json"`
	Tags           []string       `gorm:"column:tags;type:text;serializer:json"`
	Allergens      []string       `gorm:"column:allergens;type:text;serializer:json"`
	Popularity     int            `gorm:"column:popularity;index"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	PriceHistory   []ProductPrice `gorm:"foreignKey:ProductID;references:ID"`
}

func (Product) TableName() string {
	return "products"
}

type ProductPrice struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ProductID   string    `gorm:"column:product_id;not null;index"`
	Price       float64   `gorm:"column:price;not null"`
	Supermarket string    `gorm:"column:supermarket;not null"`
	Date        time.Time `gorm:"column:date"`
}

func (ProductPrice) TableName() string {
	return "product_prices"
}

type Category struct {
	Code         string   `gorm:"column:code;primaryKey"`
	Name         string   `gorm:"column:name;not null"`
	Icon         string   `gorm:"column:icon"`
	Color        string   `gorm:"column:color"`
	ParentCode   *string  `gorm:"column:parent_code;index"`
	DefaultUnits []string `gorm:"column:default_units;type:text;serializer:json"`
	CustomOrder  int      `gorm:"column:custom_order"`
}

func (Category) TableName() string {
	return "categories"
}
