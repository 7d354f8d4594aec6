package mongostore

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

var errNoFeed = errors.New("mongostore: no change feed configured")

func (s *Store) SubscribeUsers(ctx context.Context, fn func([]entity.User)) (repo.Unsubscribe, error) {
	return subscribe(ctx, s.feed, s.logger, repo.ColUsers, s.Users, fn)
}

func (s *Store) SubscribeVendors(ctx context.Context, fn func([]entity.Vendor)) (repo.Unsubscribe, error) {
	return subscribe(ctx, s.feed, s.logger, repo.ColVendors, s.Vendors, fn)
}

func (s *Store) SubscribeBanned(ctx context.Context, fn func([]string)) (repo.Unsubscribe, error) {
	return subscribe(ctx, s.feed, s.logger, repo.ColBanned, s.Banned, fn)
}

func (s *Store) SubscribeAppConfig(ctx context.Context, fn func(entity.AppConfig)) (repo.Unsubscribe, error) {
	return subscribe(ctx, s.feed, s.logger, repo.ColConfig, s.AppConfig, fn)
}

// subscribe emits the current snapshot, then a fresh one after every change
// announced on the feed. The feed is joined before the first load so no write
// falls between the two; reloads wait for the first emit. Reload errors are
// logged and the snapshot skipped.
func subscribe[T any](ctx context.Context, feed repo.ChangeFeed, logger *logrus.Logger, col string, load func(context.Context) (T, error), fn func(T)) (repo.Unsubscribe, error) {
	if feed == nil {
		return nil, errNoFeed
	}
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	unsub, err := feed.Subscribe(ctx, col, func() {
		mu.Lock()
		defer mu.Unlock()
		snap, err := load(ctx)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("collection", col).Warn("snapshot reload failed")
			}
			return
		}
		fn(snap)
	})
	if err != nil {
		return nil, err
	}
	first, err := load(ctx)
	if err != nil {
		unsub()
		return nil, err
	}
	fn(first)
	return unsub, nil
}
