package notification

import (
	"fmt"
	"time"

	notificationDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/notification"
	"github.com/google/uuid"
)

type Kind string

const (
	KindShare    Kind = "share"
	KindReminder Kind = "reminder"
	KindSystem   Kind = "system"
)

func (k Kind) Valid() bool {
	switch k {
	case KindShare, KindReminder, KindSystem:
		return true
	}
	return false
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      Kind      `json:"type"`
	Message   string    `json:"message"`
	RelatedID string    `json:"relatedId,omitempty"`
	ActionURL string    `json:"actionUrl,omitempty"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// ListActionURL is where the client opens a list-related notification.
func ListActionURL(listID string) string {
	if listID == "" {
		return ""
	}
	return fmt.Sprintf("/lists/%s", listID)
}

func New(dto CreateDTO, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    dto.UserID,
		Type:      dto.Type,
		Message:   dto.Message,
		RelatedID: dto.RelatedID,
		ActionURL: dto.ActionURL,
		Timestamp: now,
	}
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      string(n.Type),
		Message:   n.Message,
		RelatedID: n.RelatedID,
		ActionURL: n.ActionURL,
		Read:      n.Read,
		CreatedAt: n.Timestamp,
	}
}

func FromDataModel(m *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      Kind(m.Kind),
		Message:   m.Message,
		RelatedID: m.RelatedID,
		ActionURL: m.ActionURL,
		Read:      m.Read,
		Timestamp: m.CreatedAt,
	}
}
