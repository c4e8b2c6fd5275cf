package user

import "time"

type User struct {
	ID                   string     `gorm:"column:id;primaryKey"`
	Email                string     `gorm:"column:email;uniqueIndex;not null"`
	Name                 string     `gorm:"column:name;not null"`
	PasswordHash         string     `gorm:"column:password_hash;not null"`
	Avatar               string     `gorm:"column:avatar"`
	Language             string     `gorm:"column:language"`
	Theme                string     `gorm:"column:theme"`
	NotificationsEnabled bool       `gorm:"column:notifications_enabled"`
	IsActive             bool       `gorm:"column:is_active"`
	LastLogin            *time.Time `gorm:"column:last_login"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

type RefreshToken struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;index"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

type Contact struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ContactID string    `gorm:"column:contact_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Contact) TableName() string {
	return "user_contacts"
}
