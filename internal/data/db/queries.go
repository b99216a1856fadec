package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

// New returns queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// KvStore is a row of kv_store. Timestamps are unix nanoseconds.
type KvStore struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

// Notification is a row of notifications.
type Notification struct {
	ID        int64
	Level     string
	Message   string
	CreatedAt int64
}

const kvGet = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`

func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	var row KvStore
	err := q.db.QueryRowContext(ctx, kvGet, key).Scan(
		&row.Key, &row.Value, &row.ExpiresAt, &row.CreatedAt, &row.UpdatedAt,
	)
	return row, err
}

type KVSetParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

// created_at survives overwrites
const kvSet = `
INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.ExpiresAt, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvDelete = `DELETE FROM kv_store WHERE key = ?`

func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, kvDelete, key)
	return err
}

const kvDeletePrefix = `DELETE FROM kv_store WHERE substr(key, 1, length(?1)) = ?1`

func (q *Queries) KVDeletePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := q.db.ExecContext(ctx, kvDeletePrefix, prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const kvListKeys = `
SELECT key FROM kv_store
WHERE substr(key, 1, length(?1)) = ?1
  AND (expires_at IS NULL OR expires_at >= ?2)
ORDER BY key`

func (q *Queries) KVListKeys(ctx context.Context, prefix string, now sql.NullInt64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, kvListKeys, prefix, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

const kvSweepExpired = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at < ?`

func (q *Queries) KVSweepExpired(ctx context.Context, now sql.NullInt64) (int64, error) {
	res, err := q.db.ExecContext(ctx, kvSweepExpired, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type InsertNotificationParams struct {
	Level     string
	Message   string
	CreatedAt int64
}

const insertNotification = `INSERT INTO notifications (level, message, created_at) VALUES (?, ?, ?) RETURNING id`

func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertNotification, arg.Level, arg.Message, arg.CreatedAt).Scan(&id)
	return id, err
}

const listNotifications = `SELECT id, level, message, created_at FROM notifications ORDER BY created_at DESC, id DESC`

func (q *Queries) ListNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotifications)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Level, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// keeps the newest rows by created_at, then id
const pruneNotifications = `
DELETE FROM notifications
WHERE id NOT IN (
    SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?
)`

func (q *Queries) PruneNotifications(ctx context.Context, keep int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneNotifications, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllNotifications = `DELETE FROM notifications`

func (q *Queries) DeleteAllNotifications(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllNotifications)
	return err
}

const countNotifications = `SELECT COUNT(*) FROM notifications`

func (q *Queries) CountNotifications(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countNotifications).Scan(&n)
	return n, err
}
