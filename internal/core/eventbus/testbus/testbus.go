// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riccilnl/linkgenie/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus
	cancel context.CancelFunc

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus, starts it in a background goroutine, and
// subscribes to all event types for recording. The bus is stopped
// when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())

	tb := &Bus{
		EventBus: bus,
		cancel:   cancel,
	}

	bus.SubscribeBookmarkUpdated(func(p eventbus.BookmarkUpdatedPayload) {
		tb.record(eventbus.EventBookmarkUpdated, p)
	})
	bus.SubscribeEnhanceStarted(func(p eventbus.EnhanceStartedPayload) {
		tb.record(eventbus.EventEnhanceStarted, p)
	})
	bus.SubscribeEnhanceFinished(func(p eventbus.EnhanceFinishedPayload) {
		tb.record(eventbus.EventEnhanceFinished, p)
	})
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		tb.record(eventbus.EventNotificationPublished, p)
	})
	bus.SubscribeWorkflowReordered(func(p eventbus.WorkflowReorderedPayload) {
		tb.record(eventbus.EventWorkflowReordered, p)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]RecordedEvent, len(tb.events))
	copy(out, tb.events)
	return out
}

// Count returns how many events of the given type were recorded.
func (tb *Bus) Count(event eventbus.Event) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	n := 0
	for _, e := range tb.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// WaitFor blocks until an event of the given type is recorded or the timeout expires.
// Returns true if the event was found.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if tb.Count(event) > 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

// AssertPublished asserts that an event of the given type was recorded.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished asserts that an event of the given type was NOT recorded
// within the given wait period.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.Count(event) > 0 {
		t.Errorf("expected event %q to NOT be published, but it was", event)
	}
}

// FindPayload waits for event and returns the payload of its latest occurrence.
func FindPayload[T any](tb *Bus, t *testing.T, event eventbus.Event) T {
	t.Helper()
	tb.AssertPublished(t, event)

	var out T
	found := false
	for _, e := range tb.Events() {
		if e.Event != event {
			continue
		}
		p, ok := e.Payload.(T)
		if !ok {
			t.Fatalf("event %q payload has type %T", event, e.Payload)
		}
		out = p
		found = true
	}
	if !found {
		t.Fatalf("event %q not recorded", event)
	}
	return out
}
