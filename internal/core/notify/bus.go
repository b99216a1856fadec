package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(Notification)

// Bus dispatches notifications to subscribers inline and persists them to a
// Store.
type Bus struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time

	mu          sync.Mutex
	subscribers []Subscriber
}

// NewBus creates a notification bus backed by the given store.
// If store is nil, notifications are dispatched to subscribers but not persisted.
func NewBus(store Store, log zerolog.Logger) *Bus {
	return &Bus{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish persists a notification and dispatches it to all subscribers.
// Persistence failures are logged; subscribers still receive the notification.
func (b *Bus) Publish(ctx context.Context, n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}

	// Persist first so the notification has an ID for subscribers.
	if b.store != nil {
		id, err := b.store.Save(ctx, n)
		if err != nil {
			b.log.Error().Err(err).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(ctx context.Context, format string, args ...any) {
	b.Publish(ctx, Notification{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(ctx context.Context, format string, args ...any) {
	b.Publish(ctx, Notification{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(ctx context.Context, format string, args ...any) {
	b.Publish(ctx, Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// History returns all persisted notifications, newest first.
// Returns nil if no store is configured.
func (b *Bus) History(ctx context.Context) ([]Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx)
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
