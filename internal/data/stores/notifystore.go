package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/riccilnl/linkgenie/internal/core/notify"
	"github.com/riccilnl/linkgenie/internal/data/db"
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db        *db.DB
	retention int64
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a SQLite-backed notification store that keeps at
// most retention rows. A retention of 0 keeps everything.
func NewNotifyStore(db *db.DB, retention int) *NotifyStore {
	return &NotifyStore{db: db, retention: int64(retention)}
}

// Save persists a notification, prunes history beyond the retention limit
// and returns the new ID.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	var id int64
	err := retryBusy(ctx, func() error {
		return s.db.WithTx(ctx, func(q *db.Queries) error {
			return s.insert(ctx, q, n, &id)
		})
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *NotifyStore) insert(ctx context.Context, q *db.Queries, n notify.Notification, id *int64) error {
	var err error
	*id, err = q.InsertNotification(ctx, db.InsertNotificationParams{
		Level:     string(n.Level),
		Message:   n.Message,
		CreatedAt: n.CreatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	if s.retention > 0 {
		if _, err := q.PruneNotifications(ctx, s.retention); err != nil {
			return fmt.Errorf("prune notifications: %w", err)
		}
	}
	return nil
}

// List returns all notifications, newest first.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Notification, error) {
	rows, err := s.db.Queries().ListNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	result := make([]notify.Notification, 0, len(rows))
	for _, row := range rows {
		result = append(result, notify.Notification{
			ID:        row.ID,
			Level:     notify.Level(row.Level),
			Message:   row.Message,
			CreatedAt: time.Unix(0, row.CreatedAt),
		})
	}

	return result, nil
}

// Clear deletes all notifications.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllNotifications(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Queries().CountNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
