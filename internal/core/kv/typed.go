package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TypedKV is a namespace of a KV store holding values of one type. Every
// value written through Put shares the namespace TTL.
type TypedKV[T any] struct {
	store  KV
	prefix string
	ttl    time.Duration
}

// Scoped returns a TypedKV[T] that prefixes all keys with "namespace:".
// A ttl of zero stores values without expiry.
func Scoped[T any](store KV, namespace string, ttl time.Duration) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: namespace + ":",
		ttl:    ttl,
	}
}

// Get retrieves and deserializes a value by key.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	if err := t.store.Get(ctx, t.prefix+key, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Put stores value under key with the namespace TTL.
func (t *TypedKV[T]) Put(ctx context.Context, key string, value T) error {
	if t.ttl > 0 {
		return t.store.SetTTL(ctx, t.prefix+key, value, t.ttl)
	}
	return t.store.Set(ctx, t.prefix+key, value)
}

// Delete removes key from the namespace.
func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.prefix+key)
}

// Has returns whether a live key exists.
func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.prefix+key)
}

// Keys returns the live keys in the namespace with the prefix stripped.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	keys, err := t.store.ListKeys(ctx, t.prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, t.prefix)
	}
	return keys, nil
}

// Item is a decoded value with its entry metadata.
type Item[T any] struct {
	Key   string
	Value T
	Entry Entry
}

// Item returns the decoded value for key along with its timestamps.
func (t *TypedKV[T]) Item(ctx context.Context, key string) (Item[T], error) {
	e, err := t.store.GetRaw(ctx, t.prefix+key)
	if err != nil {
		return Item[T]{}, err
	}

	it := Item[T]{Key: key, Entry: e}
	if err := json.Unmarshal(e.Value, &it.Value); err != nil {
		return Item[T]{}, fmt.Errorf("decode %q: %w", t.prefix+key, err)
	}
	return it, nil
}

// Items returns every live item in key order. Entries that expire between
// listing and reading are skipped.
func (t *TypedKV[T]) Items(ctx context.Context) ([]Item[T], error) {
	keys, err := t.Keys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Item[T], 0, len(keys))
	for _, k := range keys {
		it, err := t.Item(ctx, k)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			continue
		case err != nil:
			return out, err
		}
		out = append(out, it)
	}
	return out, nil
}

// Values is Items without the metadata.
func (t *TypedKV[T]) Values(ctx context.Context) ([]T, error) {
	items, err := t.Items(ctx)
	vals := make([]T, len(items))
	for i, it := range items {
		vals[i] = it.Value
	}
	return vals, err
}

// Clear removes every key in the namespace.
func (t *TypedKV[T]) Clear(ctx context.Context) (int64, error) {
	return t.store.DeletePrefix(ctx, t.prefix)
}
