package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/pkg/helpers"
)

// HealthModule reports whether the optional backends the process was started
// with still answer. Backends that were never configured show as "disabled".
type HealthModule struct {
	Redis   *redis.Client
	Elastic *elasticsearch.Client
}

func NewHealthModule(rdb *redis.Client, es *elasticsearch.Client) *HealthModule {
	return &HealthModule{Redis: rdb, Elastic: es}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.check)
}

func (m *HealthModule) check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := gin.H{"status": "ok", "redis": "disabled", "elasticsearch": "disabled"}
	if m.Redis != nil {
		report["redis"] = "ok"
		if err := m.Redis.Ping(ctx).Err(); err != nil {
			report["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if m.Elastic != nil {
		report["elasticsearch"] = "ok"
		if err := helpers.PingES(ctx, m.Elastic); err != nil {
			report["elasticsearch"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		report["status"] = "degraded"
	}
	c.JSON(status, report)
}
