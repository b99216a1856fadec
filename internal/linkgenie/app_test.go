package linkgenie

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccilnl/linkgenie/internal/core/eventbus"
	"github.com/riccilnl/linkgenie/internal/core/eventbus/testbus"
	"github.com/riccilnl/linkgenie/internal/core/notify"
)

type memNotifyStore struct {
	saved []notify.Notification
}

func (m *memNotifyStore) Save(_ context.Context, n notify.Notification) (int64, error) {
	m.saved = append(m.saved, n)
	return int64(len(m.saved)), nil
}

func (m *memNotifyStore) List(context.Context) ([]notify.Notification, error) { return m.saved, nil }

func (m *memNotifyStore) Clear(context.Context) error {
	m.saved = nil
	return nil
}

func (m *memNotifyStore) Count(context.Context) (int64, error) { return int64(len(m.saved)), nil }

func TestPersistNotifications(t *testing.T) {
	bus := testbus.New(t)
	store := &memNotifyStore{}
	notifications := notify.NewBus(store, zerolog.Nop())

	received := make(chan notify.Notification, 1)
	notifications.Subscribe(func(n notify.Notification) { received <- n })

	PersistNotifications(context.Background(), bus.EventBus, notifications)
	bus.PublishNotificationPublished(eventbus.NotificationPublishedPayload{
		Level:   notify.LevelWarning,
		Message: "bookmark 1: timed out",
	})

	select {
	case n := <-received:
		assert.Equal(t, notify.LevelWarning, n.Level)
		assert.Equal(t, "bookmark 1: timed out", n.Message)
		assert.EqualValues(t, 1, n.ID)
	case <-time.After(time.Second):
		require.FailNow(t, "notification not forwarded")
	}
}
