package list

import "time"

type List struct {
	ID                string        `gorm:"column:id;primaryKey"`
	Name              string        `gorm:"column:name;not null"`
	Description       string        `gorm:"column:description"`
	Type              string        `gorm:"column:type;not null"`
	Status            string        `gorm:"column:status;not null"`
	OwnerID           string        `gorm:"column:owner_id;not null;index"`
	CategoriesUsed    []string      `gorm:"column:categories_used;type:text;serializer:json"`
	Tags              []string      `gorm:"column:tags;type:text;serializer:json"`
	ShoppingFrequency int           `gorm:"column:shopping_frequency"`
	CreatedAt         time.Time     `gorm:"column:created_at"`
	LastModified      time.Time     `gorm:"column:last_modified;index"`
	Shares            []ListShare   `gorm:"foreignKey:ListID;references:ID"`
	History           []ListHistory `gorm:"foreignKey:ListID;references:ID"`
}

func (List) TableName() string {
	return "lists"
}

// ListShare rows are unique per (list_id, user_id).
type ListShare struct {
	ListID     string    `gorm:"column:list_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;primaryKey;index"`
	Permission string    `gorm:"column:permission;not null"`
	JoinedAt   time.Time `gorm:"column:joined_at"`
}

func (ListShare) TableName() string {
	return "list_shares"
}

type ListHistory struct {
	ID        string                 `gorm:"column:id;primaryKey"`
	ListID    string                 `gorm:"column:list_id;not null;index"`
	Seq       int                    `gorm:"column:seq;not null"`
	Action    string                 `gorm:"column:action;not null"`
	UserID    string                 `gorm:"column:user_id;not null"`
	Timestamp time.Time              `gorm:"column:timestamp"`
	Details   map[string]interface{} `gorm:"column:details;type:text;serializer:json"`
}

func (ListHistory) TableName() string {
	return "list_history"
}
