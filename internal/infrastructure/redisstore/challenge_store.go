package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
)

// ChallengeStore keeps two-factor challenges in Redis with a TTL matching
// their expiry.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Put(ctx context.Context, key string, c auth.Challenge) error {
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return helpers.RedisSetJSON(ctx, s.client, key, c, ttl)
}

// Take atomically reads and deletes the challenge.
func (s *ChallengeStore) Take(ctx context.Context, key string) (*auth.Challenge, error) {
	raw, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c auth.Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
