package eventbus

import "sync"

// hookList is an append-only list of callbacks, safe to snapshot while
// another goroutine registers.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (l *hookList[F]) add(fn F) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

// snapshot returns the registered callbacks. Callers iterate without
// holding the lock so a hook may register further hooks.
func (l *hookList[F]) snapshot() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fns[:len(l.fns):len(l.fns)]
}

type hooks struct {
	publish   hookList[func(Event, any)]
	drop      hookList[func(Event, any)]
	subscribe hookList[func(Event)]
	panics    hookList[func(Event, any, any)]
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.publish.add(fn) }

// OnDrop registers a hook that fires when an event is dropped due to a full buffer.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.drop.add(fn) }

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.subscribe.add(fn) }

// OnPanic registers a hook that fires when a subscriber panics. Panics in
// the hook itself are swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panics.add(fn) }

// send enqueues an event without blocking.
func (bus *EventBus) send(event Event, payload any) {
	list := &bus.hooks.publish
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
	default:
		list = &bus.hooks.drop
	}
	for _, fn := range list.snapshot() {
		fn(event, payload)
	}
}

func (bus *EventBus) notifySubscribed(event Event) {
	for _, fn := range bus.hooks.subscribe.snapshot() {
		fn(event)
	}
}

func (bus *EventBus) notifyPanic(event Event, payload any, recovered any) {
	for _, fn := range bus.hooks.panics.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
