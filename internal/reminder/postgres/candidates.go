package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/shopping-list/internal/list"
	"github.com/frahmantamala/shopping-list/internal/reminder"
	"github.com/jmoiron/sqlx"
)

// Store reads reminder candidates straight from the list tables.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type candidateRow struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	OwnerID           string    `db:"owner_id"`
	ShoppingFrequency int       `db:"shopping_frequency"`
	CreatedAt         time.Time `db:"created_at"`
}

type completionRow struct {
	ListID    string    `db:"list_id"`
	Timestamp time.Time `db:"timestamp"`
}

// Candidates returns permanent lists with a shopping frequency whose owner
// has notifications enabled.
func (s *Store) Candidates(ctx context.Context) ([]reminder.Candidate, error) {
	var rows []candidateRow
	query := s.db.Rebind(`SELECT l.id, l.name, l.owner_id, l.shopping_frequency, l.created_at
		FROM lists l
		JOIN users u ON u.id = l.owner_id
		WHERE l.type = ? AND l.shopping_frequency > 0
		AND u.is_active = ? AND u.notifications_enabled = ?
		ORDER BY l.created_at ASC`)
	if err := s.db.SelectContext(ctx, &rows, query, string(list.TypePermanent), true, true); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	last, err := s.lastCompletions(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]reminder.Candidate, 0, len(rows))
	for _, r := range rows {
		c := reminder.Candidate{
			ListID:        r.ID,
			ListName:      r.Name,
			OwnerID:       r.OwnerID,
			FrequencyDays: r.ShoppingFrequency,
			CreatedAt:     r.CreatedAt,
		}
		if t, ok := last[r.ID]; ok {
			t := t
			c.LastCompleted = &t
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) lastCompletions(ctx context.Context, ids []string) (map[string]time.Time, error) {
	query, args, err := sqlx.In(`SELECT list_id, "timestamp" FROM list_history WHERE action = ? AND list_id IN (?)`,
		list.ActionCompleteShopping, ids)
	if err != nil {
		return nil, err
	}

	var rows []completionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	last := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		if cur, ok := last[r.ListID]; !ok || r.Timestamp.After(cur) {
			last[r.ListID] = r.Timestamp
		}
	}
	return last, nil
}
