// Package redisstore holds the Redis-backed change feed and challenge store.
package redisstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

const channelPrefix = "directory:changes:"

func channel(collection string) string {
	return channelPrefix + collection
}

// Feed announces collection writes over Redis pub/sub so every API instance
// refreshes its sessions.
type Feed struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewFeed(client *redis.Client, logger *logrus.Logger) *Feed {
	return &Feed{client: client, logger: logger}
}

func (f *Feed) Publish(ctx context.Context, collection string) error {
	if err := f.client.Publish(ctx, channel(collection), collection).Err(); err != nil {
		return fmt.Errorf("redisstore: publish %s: %w", collection, err)
	}
	return nil
}

// Subscribe runs fn once per message until ctx ends or the returned func is called.
func (f *Feed) Subscribe(ctx context.Context, collection string, fn func()) (repo.Unsubscribe, error) {
	ps := f.client.Subscribe(ctx, channel(collection))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redisstore: subscribe %s: %w", collection, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := ps.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := ps.Close(); err != nil && f.logger != nil {
				f.logger.WithError(err).WithField("collection", collection).Warn("redis unsubscribe failed")
			}
			<-done
		})
	}, nil
}
