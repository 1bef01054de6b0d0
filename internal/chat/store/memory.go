package store

import (
	"context"
	"sync"
)

// memoryStore implements Store with an in-process map. An optional byte
// capacity over the stored values makes it behave like a quota-limited
// browser store, which the memory manager's truncate-and-retry path needs.
type memoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	capacity int
}

func newMemoryStore(capacity int) *memoryStore {
	return &memoryStore{
		values:   make(map[string]string),
		capacity: capacity,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 {
		used := 0
		for k, v := range s.values {
			if k == key {
				continue
			}
			used += len(v)
		}
		if used+len(value) > s.capacity {
			return ErrCapacityExceeded
		}
	}

	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = nil
	return nil
}
