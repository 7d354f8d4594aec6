package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	esClient    *elasticsearch.Client
	emailQueue  *helpers.RabbitQueue
	metricsReg  *metrics.Metrics
	cookies     *helpers.Manager

	services Services
)

// Services are the application services the HTTP modules call.
type Services struct {
	Sessions     *application.SessionManager
	Auth         *application.AuthService
	Registration *application.RegistrationService
	Vendors      *application.VendorService
	Admin        *application.AdminService
	Profiles     *application.ProfileService
}

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetES(c *elasticsearch.Client)        { esClient = c }
func GetES() *elasticsearch.Client         { return esClient }
func SetEmailQueue(q *helpers.RabbitQueue) { emailQueue = q }
func GetEmailQueue() *helpers.RabbitQueue  { return emailQueue }
func SetMetrics(m *metrics.Metrics)        { metricsReg = m }
func GetMetrics() *metrics.Metrics         { return metricsReg }
func SetServices(s Services)               { services = s }
func GetServices() Services                { return services }

// GetCookies builds the cookie manager from the config on first use.
func GetCookies() *helpers.Manager {
	if cookies == nil && cfg != nil {
		cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	}
	return cookies
}
