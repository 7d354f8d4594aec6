// Package memory provides in-process implementations of the storage ports,
// used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/vendor-directory/internal/domain/repository"
)

// Feed is an in-process change feed. Publish calls subscribers synchronously,
// outside the lock, in subscription order.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[int]func())}
}

func (f *Feed) Publish(_ context.Context, collection string) error {
	f.mu.Lock()
	ids := make([]int, 0, len(f.subs[collection]))
	for id := range f.subs[collection] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, f.subs[collection][id])
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, collection string, fn func()) (repository.Unsubscribe, error) {
	f.mu.Lock()
	id := f.next
	f.next++
	if f.subs[collection] == nil {
		f.subs[collection] = make(map[int]func())
	}
	f.subs[collection][id] = fn
	f.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[collection], id)
			f.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, remove)
	return func() {
		stop()
		remove()
	}, nil
}
