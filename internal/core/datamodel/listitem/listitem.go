package listitem

import "time"

type ListItem struct {
	ID           string     `gorm:"column:id;primaryKey"`
	ListID       string     `gorm:"column:list_id;not null;index"`
	ProductID    *string    `gorm:"column:product_id"`
	Name         string     `gorm:"column:name;not null"`
	CategoryMain string     `gorm:"column:category_main;not null"`
	CategorySub  string     `gorm:"column:category_sub"`
	Quantity     float64    `gorm:"column:quantity"`
	Unit         string     `gorm:"column:unit"`
	Price        *float64   `gorm:"column:price"`
	IsPermanent  bool       `gorm:"column:is_permanent"`
	IsChecked    bool       `gorm:"column:is_checked"`
	CheckedAt    *time.Time `gorm:"column:checked_at"`
	AddedBy      string     `gorm:"column:added_by;not null"`
	AddedAt      time.Time  `gorm:"column:added_at"`
	CustomOrder  int        `gorm:"column:custom_order"`
	Notes        string     `gorm:"column:notes"`
}

func (ListItem) TableName() string {
	return "list_items"
}
