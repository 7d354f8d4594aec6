package application

import (
	"context"
	"sync"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

// SharedStore keeps a single subscription per collection on the wrapped store
// and fans each snapshot out to every session. Late subscribers get the last
// snapshot straight from memory. Snapshots are shared between sessions and
// must be treated as read-only. Writes pass through unchanged.
type SharedStore struct {
	repo.RemoteStore

	ctx    context.Context
	cancel context.CancelFunc

	users   *topic[[]entity.User]
	vendors *topic[[]entity.Vendor]
	banned  *topic[[]string]
	config  *topic[entity.AppConfig]
}

var _ repo.RemoteStore = (*SharedStore)(nil)

func NewSharedStore(store repo.RemoteStore) *SharedStore {
	ctx, cancel := context.WithCancel(context.Background())
	return &SharedStore{
		RemoteStore: store,
		ctx:         ctx,
		cancel:      cancel,
		users:       newTopic(store.SubscribeUsers),
		vendors:     newTopic(store.SubscribeVendors),
		banned:      newTopic(store.SubscribeBanned),
		config:      newTopic(store.SubscribeAppConfig),
	}
}

func (s *SharedStore) SubscribeUsers(_ context.Context, fn func([]entity.User)) (repo.Unsubscribe, error) {
	return s.users.add(s.ctx, fn)
}

func (s *SharedStore) SubscribeVendors(_ context.Context, fn func([]entity.Vendor)) (repo.Unsubscribe, error) {
	return s.vendors.add(s.ctx, fn)
}

func (s *SharedStore) SubscribeBanned(_ context.Context, fn func([]string)) (repo.Unsubscribe, error) {
	return s.banned.add(s.ctx, fn)
}

func (s *SharedStore) SubscribeAppConfig(_ context.Context, fn func(entity.AppConfig)) (repo.Unsubscribe, error) {
	return s.config.add(s.ctx, fn)
}

// Close drops the upstream subscriptions. Listeners stop receiving updates.
func (s *SharedStore) Close() {
	s.cancel()
	s.users.stop()
	s.vendors.stop()
	s.banned.stop()
	s.config.stop()
}

type topic[T any] struct {
	subscribe func(context.Context, func(T)) (repo.Unsubscribe, error)

	startMu sync.Mutex
	unsub   repo.Unsubscribe

	// mu also serializes emits so every listener sees snapshots in order.
	mu        sync.Mutex
	has       bool
	last      T
	listeners map[int]func(T)
	next      int
}

func newTopic[T any](subscribe func(context.Context, func(T)) (repo.Unsubscribe, error)) *topic[T] {
	return &topic[T]{subscribe: subscribe, listeners: make(map[int]func(T))}
}

// start subscribes upstream once. The store emits its first snapshot before
// returning, so the cache is warm afterwards.
func (t *topic[T]) start(ctx context.Context) error {
	t.startMu.Lock()
	defer t.startMu.Unlock()
	if t.unsub != nil {
		return nil
	}
	unsub, err := t.subscribe(ctx, t.emit)
	if err != nil {
		return err
	}
	t.unsub = unsub
	return nil
}

func (t *topic[T]) stop() {
	t.startMu.Lock()
	unsub := t.unsub
	t.unsub = nil
	t.startMu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (t *topic[T]) emit(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last, t.has = v, true
	for _, fn := range t.listeners {
		fn(v)
	}
}

func (t *topic[T]) add(ctx context.Context, fn func(T)) (repo.Unsubscribe, error) {
	if err := t.start(ctx); err != nil {
		return nil, err
	}
	t.mu.Lock()
	id := t.next
	t.next++
	t.listeners[id] = fn
	if t.has {
		fn(t.last)
	}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
		})
	}, nil
}
