package memory

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

type collection struct {
	ids  []string
	docs map[string]bson.M
}

// Store is a RemoteStore kept in process memory. Records go through a bson
// round trip on every read and write so callers never share memory with the
// store and nil fields come back the way a document service returns them.
type Store struct {
	mu   sync.RWMutex
	cols map[string]*collection
	feed repo.ChangeFeed
}

var _ repo.RemoteStore = (*Store)(nil)

// NewStore returns an empty store. A nil feed gets a private in-process feed.
func NewStore(feed repo.ChangeFeed) *Store {
	if feed == nil {
		feed = NewFeed()
	}
	s := &Store{cols: make(map[string]*collection), feed: feed}
	for _, name := range []string{repo.ColUsers, repo.ColVendors, repo.ColBanned, repo.ColConfig} {
		s.cols[name] = &collection{docs: make(map[string]bson.M)}
	}
	return s
}

func (s *Store) FindUser(_ context.Context, field string, value any) (*entity.User, error) {
	return findOne[entity.User](s, repo.ColUsers, field, value)
}

func (s *Store) FindVendor(_ context.Context, field string, value any) (*entity.Vendor, error) {
	return findOne[entity.Vendor](s, repo.ColVendors, field, value)
}

func (s *Store) UpsertUser(ctx context.Context, u *entity.User) error {
	return s.upsert(ctx, repo.ColUsers, u.ID, u)
}

func (s *Store) UpsertVendor(ctx context.Context, v *entity.Vendor) error {
	return s.upsert(ctx, repo.ColVendors, v.ID, v)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.delete(ctx, repo.ColUsers, id)
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	return s.delete(ctx, repo.ColVendors, id)
}

func (s *Store) Ban(ctx context.Context, value string) error {
	return s.upsert(ctx, repo.ColBanned, value, bson.M{"_id": value})
}

func (s *Store) Unban(ctx context.Context, value string) error {
	err := s.delete(ctx, repo.ColBanned, value)
	if err == repo.ErrNotFound {
		return nil
	}
	return err
}

func (s *Store) IsBanned(_ context.Context, value string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cols[repo.ColBanned].docs[value]
	return ok, nil
}

func (s *Store) SaveAppConfig(ctx context.Context, cfg *entity.AppConfig) error {
	return s.upsert(ctx, repo.ColConfig, repo.AppConfigID, cfg)
}

func (s *Store) SubscribeUsers(ctx context.Context, fn func([]entity.User)) (repo.Unsubscribe, error) {
	return s.subscribe(ctx, repo.ColUsers, func() { fn(findAll[entity.User](s, repo.ColUsers)) })
}

func (s *Store) SubscribeVendors(ctx context.Context, fn func([]entity.Vendor)) (repo.Unsubscribe, error) {
	return s.subscribe(ctx, repo.ColVendors, func() { fn(findAll[entity.Vendor](s, repo.ColVendors)) })
}

func (s *Store) SubscribeBanned(ctx context.Context, fn func([]string)) (repo.Unsubscribe, error) {
	return s.subscribe(ctx, repo.ColBanned, func() {
		s.mu.RLock()
		out := append([]string(nil), s.cols[repo.ColBanned].ids...)
		s.mu.RUnlock()
		fn(out)
	})
}

func (s *Store) SubscribeAppConfig(ctx context.Context, fn func(entity.AppConfig)) (repo.Unsubscribe, error) {
	return s.subscribe(ctx, repo.ColConfig, func() {
		cfg, _ := findOne[entity.AppConfig](s, repo.ColConfig, "_id", repo.AppConfigID)
		if cfg == nil {
			fn(entity.DefaultAppConfig())
			return
		}
		fn(*cfg)
	})
}

func (s *Store) subscribe(ctx context.Context, col string, emit func()) (repo.Unsubscribe, error) {
	unsub, err := s.feed.Subscribe(ctx, col, emit)
	if err != nil {
		return nil, err
	}
	emit()
	return unsub, nil
}

// upsert merges the fields of record into the stored document.
func (s *Store) upsert(ctx context.Context, col, id string, record any) error {
	if id == "" {
		return fmt.Errorf("memory: upsert into %s: empty id", col)
	}
	doc, err := toDoc(record)
	if err != nil {
		return fmt.Errorf("memory: encode %s/%s: %w", col, id, err)
	}
	delete(doc, "_id")

	s.mu.Lock()
	c := s.cols[col]
	cur, ok := c.docs[id]
	if !ok {
		cur = bson.M{"_id": id}
		c.ids = append(c.ids, id)
	}
	for k, v := range doc {
		cur[k] = v
	}
	c.docs[id] = cur
	s.mu.Unlock()

	return s.feed.Publish(ctx, col)
}

func (s *Store) delete(ctx context.Context, col, id string) error {
	s.mu.Lock()
	c := s.cols[col]
	if _, ok := c.docs[id]; !ok {
		s.mu.Unlock()
		return repo.ErrNotFound
	}
	delete(c.docs, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i:i], c.ids[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return s.feed.Publish(ctx, col)
}

func findOne[T any](s *Store, col, field string, value any) (*T, error) {
	if field == "id" {
		field = "_id"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cols[col]
	for _, id := range c.ids {
		doc := c.docs[id]
		if v, ok := doc[field]; ok && v == value {
			var out T
			if err := fromDoc(doc, &out); err != nil {
				return nil, err
			}
			return &out, nil
		}
	}
	return nil, nil
}

func findAll[T any](s *Store, col string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cols[col]
	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		var item T
		if err := fromDoc(c.docs[id], &item); err == nil {
			out = append(out, item)
		}
	}
	return out
}

func toDoc(v any) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc bson.M, out any) error {
	b, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, out)
}
