package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
)

// ChallengeStore keeps pending two-factor challenges in a map.
type ChallengeStore struct {
	mu    sync.Mutex
	items map[string]auth.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{items: make(map[string]auth.Challenge)}
}

func (s *ChallengeStore) Put(_ context.Context, key string, c auth.Challenge) error {
	s.mu.Lock()
	s.items[key] = c
	s.mu.Unlock()
	return nil
}

// Take returns and removes the challenge under key, or nil when none is pending.
func (s *ChallengeStore) Take(_ context.Context, key string) (*auth.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	delete(s.items, key)
	return &c, nil
}
