// Package mongostore implements the remote document store on MongoDB.
// Writes are announced on a ChangeFeed; subscribers re-read the collection.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	feed   repo.ChangeFeed
	logger *logrus.Logger
}

var _ repo.RemoteStore = (*Store)(nil)

// NewStore connects, pings and bootstraps indexes.
func NewStore(uri, dbName string, timeout time.Duration, feed repo.ChangeFeed, logger *logrus.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), feed: feed, logger: logger}
	if err := s.ensureIndexes(ctx); err != nil && logger != nil {
		logger.WithError(err).Warn("mongostore: ensure indexes failed")
	}
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}
	indexes := []idx{
		{repo.ColUsers, bson.D{{Key: "email", Value: 1}}, false},
		{repo.ColUsers, bson.D{{Key: "cpf", Value: 1}}, false},
		{repo.ColVendors, bson.D{{Key: "document", Value: 1}}, false},
		{repo.ColVendors, bson.D{{Key: "featuredUntil", Value: -1}}, false},
	}
	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, field string, value any) (*entity.User, error) {
	return findOne[entity.User](ctx, s.col(repo.ColUsers), bson.D{{Key: fieldName(field), Value: value}})
}

func (s *Store) FindVendor(ctx context.Context, field string, value any) (*entity.Vendor, error) {
	return findOne[entity.Vendor](ctx, s.col(repo.ColVendors), bson.D{{Key: fieldName(field), Value: value}})
}

func (s *Store) UpsertUser(ctx context.Context, u *entity.User) error {
	if err := upsertFields(ctx, s.col(repo.ColUsers), u.ID, u); err != nil {
		return fmt.Errorf("mongostore: upsert user %s: %w", u.ID, err)
	}
	return s.publish(ctx, repo.ColUsers)
}

func (s *Store) UpsertVendor(ctx context.Context, v *entity.Vendor) error {
	if err := upsertFields(ctx, s.col(repo.ColVendors), v.ID, v); err != nil {
		return fmt.Errorf("mongostore: upsert vendor %s: %w", v.ID, err)
	}
	return s.publish(ctx, repo.ColVendors)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.col(repo.ColUsers), id); err != nil {
		return err
	}
	return s.publish(ctx, repo.ColUsers)
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.col(repo.ColVendors), id); err != nil {
		return err
	}
	return s.publish(ctx, repo.ColVendors)
}

type bannedDoc struct {
	Value     string `bson:"_id"`
	CreatedAt int64  `bson:"createdAt"`
}

func (s *Store) Ban(ctx context.Context, value string) error {
	_, err := s.col(repo.ColBanned).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: value}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: time.Now().UnixMilli()}}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongostore: ban: %w", wrapError(err))
	}
	return s.publish(ctx, repo.ColBanned)
}

func (s *Store) Unban(ctx context.Context, value string) error {
	if _, err := s.col(repo.ColBanned).DeleteOne(ctx, bson.D{{Key: "_id", Value: value}}); err != nil {
		return fmt.Errorf("mongostore: unban: %w", wrapError(err))
	}
	return s.publish(ctx, repo.ColBanned)
}

func (s *Store) IsBanned(ctx context.Context, value string) (bool, error) {
	d, err := findOne[bannedDoc](ctx, s.col(repo.ColBanned), bson.D{{Key: "_id", Value: value}})
	if err != nil {
		return false, err
	}
	return d != nil, nil
}

func (s *Store) SaveAppConfig(ctx context.Context, cfg *entity.AppConfig) error {
	if err := upsertFields(ctx, s.col(repo.ColConfig), repo.AppConfigID, cfg); err != nil {
		return fmt.Errorf("mongostore: save config: %w", err)
	}
	return s.publish(ctx, repo.ColConfig)
}

func (s *Store) Users(ctx context.Context) ([]entity.User, error) {
	return findMany[entity.User](ctx, s.col(repo.ColUsers), bson.D{})
}

func (s *Store) Vendors(ctx context.Context) ([]entity.Vendor, error) {
	return findMany[entity.Vendor](ctx, s.col(repo.ColVendors), bson.D{})
}

func (s *Store) Banned(ctx context.Context) ([]string, error) {
	docs, err := findMany[bannedDoc](ctx, s.col(repo.ColBanned), bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Value)
	}
	return out, nil
}

func (s *Store) AppConfig(ctx context.Context) (entity.AppConfig, error) {
	cfg, err := findOne[entity.AppConfig](ctx, s.col(repo.ColConfig), bson.D{{Key: "_id", Value: repo.AppConfigID}})
	if err != nil {
		return entity.AppConfig{}, err
	}
	if cfg == nil {
		return entity.DefaultAppConfig(), nil
	}
	return *cfg, nil
}

func (s *Store) publish(ctx context.Context, col string) error {
	if s.feed == nil {
		return nil
	}
	if err := s.feed.Publish(ctx, col); err != nil {
		// the write itself landed; subscribers catch up on the next change
		if s.logger != nil {
			s.logger.WithError(err).WithField("collection", col).Warn("change feed publish failed")
		}
	}
	return nil
}
