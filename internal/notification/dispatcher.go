package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/shopping-list/internal/core/events"
)

// Dispatcher hands notifications to the event bus. Notify never blocks on
// storage and never reports failure to the caller.
type Dispatcher struct {
	publisher events.Publisher
	logger    *slog.Logger
}

func NewDispatcher(publisher events.Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, userID, kind, message, relatedListID string) {
	event := events.NewNotificationRequestedEvent(userID, kind, message, relatedListID, ListActionURL(relatedListID))
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to queue notification", "error", err, "user_id", userID, "kind", kind)
	}
}

type EventHandler struct {
	service ServiceAPI
	logger  *slog.Logger
}

func NewEventHandler(service ServiceAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleNotificationRequested(ctx context.Context, event events.Event) error {
	req, ok := event.(*events.NotificationRequestedEvent)
	if !ok {
		h.logger.Error("invalid event type for notification handler", "event_type", event.EventType())
		return fmt.Errorf("expected NotificationRequestedEvent, got %T", event)
	}

	n, err := h.service.Create(ctx, CreateDTO{
		UserID:    req.UserID,
		Type:      Kind(req.Kind),
		Message:   req.Message,
		RelatedID: req.RelatedID,
		ActionURL: req.ActionURL,
	})
	if err != nil {
		h.logger.Error("failed to deliver notification",
			"error", err,
			"user_id", req.UserID,
			"kind", req.Kind,
			"event_id", req.EventID())
		return fmt.Errorf("notification delivery failed for user %s: %w", req.UserID, err)
	}

	h.logger.Debug("notification delivered", "notification_id", n.ID, "user_id", n.UserID, "event_id", req.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeNotificationRequested, h.HandleNotificationRequested)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeNotificationRequested})
}
