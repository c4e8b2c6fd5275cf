package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeNotificationRequested = "notification.requested"
	EventTypeNotificationCreated   = "notification.created"
	EventTypeListChanged           = "list.changed"
	EventTypeItemChanged           = "item.changed"
)

// NotificationRequestedEvent asks the notification sink to deliver a message.
type NotificationRequestedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RelatedID string `json:"related_id"`
	ActionURL string `json:"action_url"`
}

func NewNotificationRequestedEvent(userID, kind, message, relatedID, actionURL string) *NotificationRequestedEvent {
	return &NotificationRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeNotificationRequested,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"kind":       kind,
				"related_id": relatedID,
			},
		},
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		RelatedID: relatedID,
		ActionURL: actionURL,
	}
}

// NotificationCreatedEvent is emitted after a notification row is stored.
type NotificationCreatedEvent struct {
	BaseEvent
	UserID       string      `json:"user_id"`
	Notification interface{} `json:"notification"`
}

func NewNotificationCreatedEvent(userID string, notification interface{}) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeNotificationCreated,
			Timestamp: time.Now().UTC(),
			Data:      map[string]interface{}{"user_id": userID},
		},
		UserID:       userID,
		Notification: notification,
	}
}

// ListChangedEvent carries a list mutation to realtime subscribers.
type ListChangedEvent struct {
	BaseEvent
	ListID  string      `json:"list_id"`
	Action  string      `json:"action"`
	ActorID string      `json:"actor_id"`
	List    interface{} `json:"list,omitempty"`
}

func NewListChangedEvent(listID, action, actorID string, list interface{}) *ListChangedEvent {
	return &ListChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeListChanged,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"list_id":  listID,
				"action":   action,
				"actor_id": actorID,
			},
		},
		ListID:  listID,
		Action:  action,
		ActorID: actorID,
		List:    list,
	}
}

// ItemChangedEvent carries an item mutation to realtime subscribers.
type ItemChangedEvent struct {
	BaseEvent
	ListID  string      `json:"list_id"`
	ItemID  string      `json:"item_id"`
	Action  string      `json:"action"`
	ActorID string      `json:"actor_id"`
	Item    interface{} `json:"item,omitempty"`
}

func NewItemChangedEvent(listID, itemID, action, actorID string, item interface{}) *ItemChangedEvent {
	return &ItemChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeItemChanged,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"list_id":  listID,
				"item_id":  itemID,
				"action":   action,
				"actor_id": actorID,
			},
		},
		ListID:  listID,
		ItemID:  itemID,
		Action:  action,
		ActorID: actorID,
		Item:    item,
	}
}
