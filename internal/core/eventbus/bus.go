package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches published events to subscribers on a single goroutine.
// Publish never blocks; events are dropped when the buffer is full.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu          sync.RWMutex
	subscribers map[Event][]func(any)
}

// New creates a bus with the given buffer size. Call Start to begin dispatch.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:          make(chan envelope, buffer),
		subscribers: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled. Events already queued when
// ctx is cancelled are delivered before Start returns.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		case <-ctx.Done():
			for {
				select {
				case env := <-bus.ch:
					bus.dispatch(env)
				default:
					return
				}
			}
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subscribers[event] = append(bus.subscribers[event], fn)
	bus.mu.Unlock()

	bus.notifySubscribed(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subscribers[env.event]))
	copy(subs, bus.subscribers[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.notifyPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) PublishBookmarkUpdated(p BookmarkUpdatedPayload) {
	bus.send(EventBookmarkUpdated, p)
}

func (bus *EventBus) SubscribeBookmarkUpdated(fn func(BookmarkUpdatedPayload)) {
	bus.subscribe(EventBookmarkUpdated, func(p any) { fn(p.(BookmarkUpdatedPayload)) })
}

func (bus *EventBus) PublishEnhanceStarted(p EnhanceStartedPayload) {
	bus.send(EventEnhanceStarted, p)
}

func (bus *EventBus) SubscribeEnhanceStarted(fn func(EnhanceStartedPayload)) {
	bus.subscribe(EventEnhanceStarted, func(p any) { fn(p.(EnhanceStartedPayload)) })
}

func (bus *EventBus) PublishEnhanceFinished(p EnhanceFinishedPayload) {
	bus.send(EventEnhanceFinished, p)
}

func (bus *EventBus) SubscribeEnhanceFinished(fn func(EnhanceFinishedPayload)) {
	bus.subscribe(EventEnhanceFinished, func(p any) { fn(p.(EnhanceFinishedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) PublishWorkflowReordered(p WorkflowReorderedPayload) {
	bus.send(EventWorkflowReordered, p)
}

func (bus *EventBus) SubscribeWorkflowReordered(fn func(WorkflowReorderedPayload)) {
	bus.subscribe(EventWorkflowReordered, func(p any) { fn(p.(WorkflowReorderedPayload)) })
}
