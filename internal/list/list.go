package list

import (
	"time"

	listDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/list"
	"github.com/google/uuid"
)

type Type string

const (
	TypePermanent Type = "permanent"
	TypeOneTime   Type = "oneTime"
)

func (t Type) Valid() bool {
	return t == TypePermanent || t == TypeOneTime
}

type Status string

const (
	StatusActive    Status = "active"
	StatusShopping  Status = "shopping"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusShopping, StatusCompleted:
		return true
	}
	return false
}

// History actions.
const (
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionShare            = "share"
	ActionUnshare          = "unshare"
	ActionStatusChange     = "status_change"
	ActionCompleteShopping = "complete_shopping"
	ActionDelete           = "delete"
)

type ShareEntry struct {
	UserID     string     `json:"userId"`
	Permission Permission `json:"permission"`
	JoinedAt   time.Time  `json:"joinedAt"`
}

type HistoryEntry struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	UserID    string                 `json:"userId"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// List is a plain value. Mutating helpers return a modified copy and never
// touch the receiver's slices.
type List struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Type              Type           `json:"type"`
	Status            Status         `json:"status"`
	OwnerID           string         `json:"owner"`
	SharedWith        []ShareEntry   `json:"sharedWith"`
	CategoriesUsed    []string       `json:"categoriesUsed"`
	History           []HistoryEntry `json:"history"`
	Tags              []string       `json:"tags"`
	ShoppingFrequency int            `json:"shoppingFrequency,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	LastModified      time.Time      `json:"lastModified"`
}

// Clone returns a deep copy.
func (l *List) Clone() *List {
	cp := *l
	cp.SharedWith = append(make([]ShareEntry, 0, len(l.SharedWith)), l.SharedWith...)
	cp.CategoriesUsed = append(make([]string, 0, len(l.CategoriesUsed)), l.CategoriesUsed...)
	cp.Tags = append(make([]string, 0, len(l.Tags)), l.Tags...)
	cp.History = make([]HistoryEntry, len(l.History))
	for i, h := range l.History {
		cp.History[i] = h
		if h.Details != nil {
			d := make(map[string]interface{}, len(h.Details))
			for k, v := range h.Details {
				d[k] = v
			}
			cp.History[i].Details = d
		}
	}
	return &cp
}

// Members returns the owner followed by every share recipient.
func (l *List) Members() []string {
	ids := make([]string, 0, len(l.SharedWith)+1)
	ids = append(ids, l.OwnerID)
	for _, s := range l.SharedWith {
		ids = append(ids, s.UserID)
	}
	return ids
}

// LastCompletedAt returns the time of the latest complete_shopping entry.
func (l *List) LastCompletedAt() (time.Time, bool) {
	for i := len(l.History) - 1; i >= 0; i-- {
		if l.History[i].Action == ActionCompleteShopping {
			return l.History[i].Timestamp, true
		}
	}
	return time.Time{}, false
}

func newHistoryEntry(action, userID string, at time.Time, details map[string]interface{}) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.NewString(),
		Action:    action,
		UserID:    userID,
		Timestamp: at,
		Details:   details,
	}
}

// WithHistory returns a copy with entry appended and lastModified bumped.
func (l *List) WithHistory(action, userID string, at time.Time, details map[string]interface{}) *List {
	next := l.Clone()
	next.History = append(next.History, newHistoryEntry(action, userID, at, details))
	next.LastModified = at
	return next
}

// New builds a fresh list owned by ownerID.
func New(ownerID string, dto CreateListDTO, now time.Time) *List {
	listType := TypeOneTime
	if dto.Type != "" {
		listType = Type(dto.Type)
	}
	tags := dto.Tags
	if tags == nil {
		tags = []string{}
	}
	l := &List{
		ID:                uuid.NewString(),
		Name:              dto.Name,
		Description:       dto.Description,
		Type:              listType,
		Status:            StatusActive,
		OwnerID:           ownerID,
		SharedWith:        []ShareEntry{},
		CategoriesUsed:    []string{},
		History:           []HistoryEntry{},
		Tags:              append([]string(nil), tags...),
		ShoppingFrequency: dto.ShoppingFrequency,
		CreatedAt:         now,
		LastModified:      now,
	}
	return l.WithHistory(ActionCreate, ownerID, now, nil)
}

func ToDataModel(l *List) *listDatamodel.List {
	shares := make([]listDatamodel.ListShare, len(l.SharedWith))
	for i, s := range l.SharedWith {
		shares[i] = listDatamodel.ListShare{
			ListID:     l.ID,
			UserID:     s.UserID,
			Permission: string(s.Permission),
			JoinedAt:   s.JoinedAt,
		}
	}
	history := make([]listDatamodel.ListHistory, len(l.History))
	for i, h := range l.History {
		history[i] = listDatamodel.ListHistory{
			ID:        h.ID,
			ListID:    l.ID,
			Seq:       i,
			Action:    h.Action,
			UserID:    h.UserID,
			Timestamp: h.Timestamp,
			Details:   h.Details,
		}
	}
	return &listDatamodel.List{
		ID:                l.ID,
		Name:              l.Name,
		Description:       l.Description,
		Type:              string(l.Type),
		Status:            string(l.Status),
		OwnerID:           l.OwnerID,
		CategoriesUsed:    l.CategoriesUsed,
		Tags:              l.Tags,
		ShoppingFrequency: l.ShoppingFrequency,
		CreatedAt:         l.CreatedAt,
		LastModified:      l.LastModified,
		Shares:            shares,
		History:           history,
	}
}

func FromDataModel(m *listDatamodel.List) *List {
	shares := make([]ShareEntry, len(m.Shares))
	for i, s := range m.Shares {
		shares[i] = ShareEntry{
			UserID:     s.UserID,
			Permission: Permission(s.Permission),
			JoinedAt:   s.JoinedAt,
		}
	}
	history := make([]HistoryEntry, len(m.History))
	for i, h := range m.History {
		history[i] = HistoryEntry{
			ID:        h.ID,
			Action:    h.Action,
			UserID:    h.UserID,
			Timestamp: h.Timestamp,
			Details:   h.Details,
		}
	}
	categories := m.CategoriesUsed
	if categories == nil {
		categories = []string{}
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &List{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Type:              Type(m.Type),
		Status:            Status(m.Status),
		OwnerID:           m.OwnerID,
		SharedWith:        shares,
		CategoriesUsed:    categories,
		History:           history,
		Tags:              tags,
		ShoppingFrequency: m.ShoppingFrequency,
		CreatedAt:         m.CreatedAt,
		LastModified:      m.LastModified,
	}
}

func FromDataModelSlice(models []*listDatamodel.List) []*List {
	result := make([]*List, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
