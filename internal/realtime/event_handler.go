package realtime

import (
	"context"
	"fmt"

	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/list"
)

func (h *Hub) HandleListChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ListChangedEvent)
	if !ok {
		return fmt.Errorf("expected ListChangedEvent, got %T", event)
	}

	switch e.Action {
	case list.ActionShare, list.ActionUnshare:
		l, _ := e.List.(*list.List)
		h.Evict(ctx, e.ListID, l)
	}

	h.BroadcastToList(e.ListID, Message{
		Type:    TypeListUpdated,
		ListID:  e.ListID,
		Action:  e.Action,
		ActorID: e.ActorID,
		Data:    e.List,
	})
	if e.Action == list.ActionDelete {
		h.CloseRoom(e.ListID)
	}
	return nil
}

func (h *Hub) HandleItemChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ItemChangedEvent)
	if !ok {
		return fmt.Errorf("expected ItemChangedEvent, got %T", event)
	}

	h.BroadcastToList(e.ListID, Message{
		Type:    TypeItemUpdated,
		ListID:  e.ListID,
		ItemID:  e.ItemID,
		Action:  e.Action,
		ActorID: e.ActorID,
		Data:    e.Item,
	})
	return nil
}

func (h *Hub) HandleNotificationCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("expected NotificationCreatedEvent, got %T", event)
	}

	h.SendToUser(e.UserID, Message{Type: TypeNotification, Data: e.Notification})
	return nil
}

func (h *Hub) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeListChanged, h.HandleListChanged)
	eventBus.Subscribe(events.EventTypeItemChanged, h.HandleItemChanged)
	eventBus.Subscribe(events.EventTypeNotificationCreated, h.HandleNotificationCreated)

	h.logger.Info("realtime event handlers registered",
		"handlers", []string{
			events.EventTypeListChanged,
			events.EventTypeItemChanged,
			events.EventTypeNotificationCreated,
		})
}
