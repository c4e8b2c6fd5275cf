package postgres

import (
	"context"
	"database/sql"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	notificationDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/notification"
	"github.com/frahmantamala/shopping-list/internal/notification"
	"github.com/jmoiron/sqlx"
)

const selectColumns = `SELECT id, user_id, kind, message, related_id, action_url, is_read, created_at FROM notifications`

// Repository implements notification.Repository with sqlx. Queries are
// written with ? placeholders and rebound for the connected driver.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *notification.Notification) error {
	query := r.db.Rebind(`INSERT INTO notifications (id, user_id, kind, message, related_id, action_url, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	m := notification.ToDataModel(n)
	_, err := r.db.ExecContext(ctx, query, m.ID, m.UserID, m.Kind, m.Message, m.RelatedID, m.ActionURL, m.Read, m.CreatedAt)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	var m notificationDatamodel.Notification
	err := r.db.GetContext(ctx, &m, r.db.Rebind(selectColumns+` WHERE id = ?`), id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification.FromDataModel(&m), nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, q notification.ListQuery) ([]*notification.Notification, int64, error) {
	where := ` WHERE user_id = ?`
	if q.UnreadOnly {
		where += ` AND is_read = ?`
	}
	args := []interface{}{userID}
	if q.UnreadOnly {
		args = append(args, false)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM notifications`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []notificationDatamodel.Notification
	query := r.db.Rebind(selectColumns + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, err
	}

	out := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, notification.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`), userID, false)
	return n, err
}

func (r *Repository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ?`), true, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`), true, userID, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrNotificationNotFound
	}
	return nil
}

// ExistsSince reports whether userID already got a kind notification about
// relatedID at or after since.
func (r *Repository) ExistsSince(ctx context.Context, userID string, kind notification.Kind, relatedID string, since time.Time) (bool, error) {
	var n int64
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND kind = ? AND related_id = ? AND created_at >= ?`),
		userID, string(kind), relatedID, since)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
