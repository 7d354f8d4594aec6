package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	Device  gin.HandlerFunc
	Redis   *redis.Client
}

func NewEmailModule(h *handlers.EmailHandler, device gin.HandlerFunc, rdb *redis.Client) *EmailModule {
	return &EmailModule{Handler: h, Device: device, Redis: rdb}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, 3, 10*time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/feedback", m.Device, limiter, m.Handler.Feedback)
}
