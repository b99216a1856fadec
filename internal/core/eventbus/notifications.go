package eventbus

import (
	"fmt"

	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeEnhanceFinished(func(p EnhanceFinishedPayload) {
		msg := p.Message
		switch msg.Outcome {
		case enhance.OutcomeCompleted:
			r.notifyf(notify.LevelInfo, "bookmark %d: %s", msg.BookmarkID, msg.Text)
		case enhance.OutcomeTimedOut:
			r.notifyf(notify.LevelWarning, "bookmark %d: %s", msg.BookmarkID, msg.Text)
		case enhance.OutcomeTriggerFailed, enhance.OutcomePollFailed:
			if msg.Err != nil {
				r.notifyf(notify.LevelError, "bookmark %d: %s: %v", msg.BookmarkID, msg.Text, msg.Err)
				return
			}
			r.notifyf(notify.LevelError, "bookmark %d: %s", msg.BookmarkID, msg.Text)
		}
	})

	r.bus.SubscribeWorkflowReordered(func(p WorkflowReorderedPayload) {
		if p.Err != nil {
			r.notifyf(notify.LevelError, "workflow %q reorder stopped after %d updates: %v", p.Name, p.Applied, p.Err)
			return
		}
		r.notifyf(notify.LevelInfo, "workflow %q moved from %d to %d", p.Name, p.From, p.To)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
