package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

// DebugModule exposes Prometheus metrics to private networks only.
type DebugModule struct {
	Metrics http.Handler
	Redis   *redis.Client
}

func NewDebugModule(metrics http.Handler, rdb *redis.Client) *DebugModule {
	return &DebugModule{Metrics: metrics, Redis: rdb}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/metrics", middleware.OnlyPrivateIP(), rl, gin.WrapH(m.Metrics))
}
