package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	saved   []Notification
	saveErr error
	cleared bool
}

func (m *mockStore) Save(_ context.Context, n Notification) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, n)
	return int64(len(m.saved)), nil
}

func (m *mockStore) List(_ context.Context) ([]Notification, error) {
	out := make([]Notification, 0, len(m.saved))
	for i := len(m.saved) - 1; i >= 0; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

func (m *mockStore) Clear(_ context.Context) error {
	m.saved = nil
	m.cleared = true
	return nil
}

func (m *mockStore) Count(_ context.Context) (int64, error) {
	return int64(len(m.saved)), nil
}

func TestBus_PublishPersistsAndDispatches(t *testing.T) {
	store := &mockStore{}
	bus := NewBus(store, zerolog.Nop())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var got []Notification
	bus.Subscribe(func(n Notification) { got = append(got, n) })

	bus.Infof(context.Background(), "bookmark %d enhanced", 7)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.Equal(t, "bookmark 7 enhanced", got[0].Message)
	assert.Equal(t, fixed, got[0].CreatedAt)
	require.Len(t, store.saved, 1)
}

func TestBus_Levels(t *testing.T) {
	store := &mockStore{}
	bus := NewBus(store, zerolog.Nop())
	ctx := context.Background()

	bus.Errorf(ctx, "e")
	bus.Warnf(ctx, "w")
	bus.Infof(ctx, "i")

	history, err := bus.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, LevelInfo, history[0].Level)
	assert.Equal(t, LevelWarning, history[1].Level)
	assert.Equal(t, LevelError, history[2].Level)
}

func TestBus_SaveErrorStillDispatches(t *testing.T) {
	bus := NewBus(&mockStore{saveErr: errors.New("disk full")}, zerolog.Nop())

	var got []Notification
	bus.Subscribe(func(n Notification) { got = append(got, n) })
	bus.Warnf(context.Background(), "careful")

	require.Len(t, got, 1)
	assert.Zero(t, got[0].ID)
}

func TestBus_NilStore(t *testing.T) {
	bus := NewBus(nil, zerolog.Nop())
	ctx := context.Background()

	bus.Infof(ctx, "ignored")

	history, err := bus.History(ctx)
	require.NoError(t, err)
	assert.Nil(t, history)
	assert.NoError(t, bus.Clear(ctx))
}

func TestBus_Clear(t *testing.T) {
	store := &mockStore{}
	bus := NewBus(store, zerolog.Nop())
	ctx := context.Background()

	bus.Infof(ctx, "one")
	require.NoError(t, bus.Clear(ctx))
	assert.True(t, store.cleared)
}
