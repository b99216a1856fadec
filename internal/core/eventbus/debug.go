package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity with the payload's identifying fields.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnSubscribe(func(event Event) {
		logger.Debug().Str("event", string(event)).Msg("subscriber registered")
	})

	bus.OnPublish(func(event Event, payload any) {
		logger.Debug().Str("event", string(event)).Func(payloadFields(payload)).Msg("event published")
	})

	bus.OnDrop(func(event Event, payload any) {
		logger.Warn().Str("event", string(event)).Func(payloadFields(payload)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Func(payloadFields(payload)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func payloadFields(payload any) func(*zerolog.Event) {
	return func(e *zerolog.Event) {
		switch p := payload.(type) {
		case BookmarkUpdatedPayload:
			e.Int("bookmark_id", p.Bookmark.ID).Bool("pending", p.Pending)
		case EnhanceStartedPayload:
			e.Int("bookmark_id", p.BookmarkID)
		case EnhanceFinishedPayload:
			e.Int("bookmark_id", p.Message.BookmarkID).Str("outcome", string(p.Message.Outcome))
		case NotificationPublishedPayload:
			e.Str("level", string(p.Level))
		case WorkflowReorderedPayload:
			e.Int("workflow_id", p.WorkflowID).Int("from", p.From).Int("to", p.To).Int("applied", p.Applied)
		}
	}
}
