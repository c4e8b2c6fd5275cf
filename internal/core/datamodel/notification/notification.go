package notification

import "time"

// Notification maps the notifications table for sqlx scans.
type Notification struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	Message   string    `db:"message"`
	RelatedID string    `db:"related_id"`
	ActionURL string    `db:"action_url"`
	Read      bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}
