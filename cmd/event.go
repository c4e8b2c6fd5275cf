package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/notification"
	notificationPostgres "github.com/frahmantamala/shopping-list/internal/notification/postgres"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish an event through the in-process bus",
	Long: `Publish an event through the event bus with the production subscribers attached.
notification.requested stores a notification for --user; other event types are
only logged, which is useful to check a handler registration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishEvent(args[0])
	},
}

var (
	eventUserID  string
	eventKind    string
	eventMessage string
	eventRelated string
)

func publishEvent(eventType string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.LoggerWrapper()

	conns, err := initDB(cfg.Database, cfg.Env)
	if err != nil {
		return err
	}
	defer conns.Close()

	eventBus := events.NewEventBus(log)

	notificationService := notification.NewService(notificationPostgres.NewRepository(conns.SQLX), eventBus, log)
	notification.NewEventHandler(notificationService, log).RegisterEventHandlers(eventBus)

	eventBus.Subscribe(events.EventTypeNotificationCreated, func(ctx context.Context, event events.Event) error {
		log.Info("notification stored",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	var event events.Event
	switch eventType {
	case events.EventTypeNotificationRequested:
		if eventUserID == "" {
			return fmt.Errorf("--user is required for %s", eventType)
		}
		event = events.NewNotificationRequestedEvent(
			eventUserID,
			eventKind,
			eventMessage,
			eventRelated,
			notification.ListActionURL(eventRelated),
		)
	default:
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			log.Info("handler received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
		event = events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data:      map[string]interface{}{"message": eventMessage, "source": "cli"},
		}
	}

	log.Info("publishing event", "event_type", event.EventType(), "event_id", event.EventID())
	if err := eventBus.Publish(context.Background(), event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	eventBus.Drain()

	log.Info("event published", "event_type", eventType)
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventUserID, "user", "", "recipient user id for notification.requested")
	publishEventCmd.Flags().StringVar(&eventKind, "kind", string(notification.KindSystem), "notification kind: share, reminder or system")
	publishEventCmd.Flags().StringVar(&eventMessage, "message", "test message", "event or notification message")
	publishEventCmd.Flags().StringVar(&eventRelated, "related", "", "related list id")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
