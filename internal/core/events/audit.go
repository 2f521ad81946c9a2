package events

import (
	"context"
	"log/slog"
)

// RegisterAuditSubscriber attaches handlers that write an audit trail
// for every request lifecycle event. The trail is log-only; request
// rows carry their own reviewer and timestamp columns.
func RegisterAuditSubscriber(bus *EventBus, logger *slog.Logger) {
	bus.Subscribe(EventTypeRequestSubmitted, func(ctx context.Context, event Event) error {
		logger.Info("audit: request submitted",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(EventTypeRequestReviewed, func(ctx context.Context, event Event) error {
		logger.Info("audit: request reviewed",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}
