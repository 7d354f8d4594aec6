package application

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

const indexSyncTimeout = 30 * time.Second

// IndexSync mirrors every vendor snapshot into the search index. Snapshots
// that arrive while a sync runs are coalesced: only the newest is indexed.
type IndexSync struct {
	store  repo.RemoteStore
	index  VendorIndex
	logger *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	unsub  repo.Unsubscribe
	wg     sync.WaitGroup
}

func NewIndexSync(store repo.RemoteStore, index VendorIndex, logger *logrus.Logger) *IndexSync {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &IndexSync{store: store, index: index, logger: logger}
}

func (j *IndexSync) Start(ctx context.Context) error {
	j.Stop()

	latest := make(chan []entity.Vendor, 1)
	jobCtx, cancel := context.WithCancel(ctx)
	unsub, err := j.store.SubscribeVendors(jobCtx, func(vs []entity.Vendor) {
		for {
			select {
			case latest <- vs:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	if err != nil {
		cancel()
		return err
	}

	j.mu.Lock()
	j.cancel = cancel
	j.unsub = unsub
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		for {
			select {
			case <-jobCtx.Done():
				return
			case vs := <-latest:
				j.sync(jobCtx, vs)
			}
		}
	}()
	return nil
}

func (j *IndexSync) Stop() {
	j.mu.Lock()
	cancel, unsub := j.cancel, j.unsub
	j.cancel, j.unsub = nil, nil
	j.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *IndexSync) sync(ctx context.Context, vs []entity.Vendor) {
	c, cancel := context.WithTimeout(ctx, indexSyncTimeout)
	defer cancel()
	if err := j.index.Sync(c, vs); err != nil {
		j.logger.WithError(err).WithField("vendors", len(vs)).Warn("search index sync failed")
		return
	}
	j.logger.WithField("vendors", len(vs)).Debug("search index synced")
}
