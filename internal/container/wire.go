package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/mongostore"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/redisstore"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/sqlite"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/mailer"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
)

// Stores are the persistence backends every session shares.
type Stores struct {
	Remote repo.RemoteStore
	Local  repo.LocalStore

	closers []func() error
}

// Close releases the stores in reverse opening order.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.closers = nil
}

// OpenStores builds the change feed, remote store and local store the config
// selects. rdb may be nil, in which case the feed stays in process.
func OpenStores(cfg *config.Config, rdb *redis.Client, logger *logrus.Logger) (*Stores, error) {
	var feed repo.ChangeFeed
	if cfg.FeedDriver == "redis" && rdb != nil {
		feed = redisstore.NewFeed(rdb, logger)
	} else {
		feed = memory.NewFeed()
	}

	s := &Stores{}
	switch cfg.StoreDriver {
	case "mongo":
		ms, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDB, cfg.MongoTimeout, feed, logger)
		if err != nil {
			return nil, err
		}
		s.Remote = ms
		s.closers = append(s.closers, ms.Close)
	case "memory", "":
		s.Remote = memory.NewStore(feed)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	local, err := sqlite.Open(cfg.LocalStorePath)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Local = local
	s.closers = append(s.closers, local.Close)
	return s, nil
}

// ConnectRedis returns a client when Redis answers, nil otherwise.
func ConnectRedis(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable; using in-process feed, challenges and no rate limits")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// BuildNotifier queues emails on RabbitMQ for the worker. With sending
// disabled, notifications only go to the log. With sending enabled the broker
// must be reachable.
func BuildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, error) {
	if !cfg.MailSendEnabled {
		return mailer.LogNotifier{Logger: logger}, nil
	}
	q, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", application.ErrNotificationFailed, err)
	}
	SetEmailQueue(q)
	return mailer.NewQueueNotifier(q, logger), nil
}

// NewEvaluator builds the login rules from the lockout settings.
func NewEvaluator(cfg *config.Config) *auth.Evaluator {
	return auth.NewEvaluator(
		auth.LockoutPolicy{Threshold: cfg.UserLockThreshold, Duration: cfg.UserLockDuration},
		auth.LockoutPolicy{Threshold: cfg.AdminLockThreshold, Window: cfg.AdminLockWindow, Duration: cfg.AdminLockDuration},
		cfg.MasterEmail, cfg.MasterBootstrap, cfg.FallbackPassword,
	)
}

// BuildServices assembles the application services over stores and deps.
func BuildServices(cfg *config.Config, stores *Stores, deps *application.Deps, m *metrics.Metrics, jwt *helpers.JWTManager) Services {
	sessions := application.NewSessionManager(stores.Remote, stores.Local, deps.Logger, m, cfg.SessionTTL)
	sessions.VisitorTTL = cfg.VisitorSessionTTL
	sessions.MaxSessions = cfg.MaxSessions
	return Services{
		Sessions:     sessions,
		Auth:         application.NewAuthService(deps, NewEvaluator(cfg), cfg.TwoFactorTTL, cfg.ResetPasswordURL),
		Registration: application.NewRegistrationService(deps),
		Vendors:      application.NewVendorService(deps, cfg.FeedbackInbox),
		Admin:        application.NewAdminService(deps, cfg.RecoveryPassword),
		Profiles:     application.NewProfileService(deps, jwt, sessions),
	}
}
