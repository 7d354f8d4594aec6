package memory

import (
	"context"
	"sync"
)

// LocalStore is a map-backed key-value store.
type LocalStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewLocalStore() *LocalStore {
	return &LocalStore{m: make(map[string]string)}
}

func (s *LocalStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *LocalStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}
