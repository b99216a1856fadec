// Package kv provides a generic thread-safe in-memory key-value store with
// key-ordered iteration.
package kv

import (
	"cmp"
	"slices"
	"sync"
)

// Store is a thread-safe map whose listings are ordered by key.
type Store[K cmp.Ordered, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates an empty store.
func New[K cmp.Ordered, V any]() *Store[K, V] {
	return &Store[K, V]{data: make(map[K]V)}
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set stores value under key, replacing any previous value.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// Delete removes key.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns all keys in ascending order.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Values returns a copy of all values ordered by key.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	vals := make([]V, len(keys))
	for i, k := range keys {
		vals[i] = s.data[k]
	}
	return vals
}
