// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within linkgenie.
package eventbus

import (
	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/notify"
)

// Event names a bus topic.
type Event string

const (
	// Keep list sorted A-Z
	EventBookmarkUpdated       Event = "bookmark.updated"
	EventEnhanceFinished       Event = "enhance.finished"
	EventEnhanceStarted        Event = "enhance.started"
	EventNotificationPublished Event = "notification.published"
	EventWorkflowReordered     Event = "workflow.reordered"
)

// BookmarkUpdatedPayload is emitted whenever a newer bookmark snapshot is observed.
type BookmarkUpdatedPayload struct {
	Bookmark bookmark.Bookmark
	Pending  bool
}

// EnhanceStartedPayload is emitted when an enhancement session begins.
type EnhanceStartedPayload struct {
	BookmarkID int
}

// EnhanceFinishedPayload is emitted once per session with its terminal status.
type EnhanceFinishedPayload struct {
	Message enhance.Message
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// WorkflowReorderedPayload is emitted after workflow priorities are rewritten.
type WorkflowReorderedPayload struct {
	WorkflowID int
	Name       string
	From       int
	To         int
	Applied    int
	Err        error
}
