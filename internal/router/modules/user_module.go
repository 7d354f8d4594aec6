package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/application"
	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

// UserModule wires session state, registration and profile routes.
// Public: GET /api/state, POST /api/theme/toggle, POST /api/register/{user,vendor}
// Protected: GET /api/profile, PUT /api/profile
type UserModule struct {
	Handler  *handlers.UserHandler
	Profiles *application.ProfileService
	Device   gin.HandlerFunc
	Redis    *redis.Client
}

func NewUserModule(h *handlers.UserHandler, profiles *application.ProfileService, device gin.HandlerFunc, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Profiles: profiles, Device: device, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/", m.Device)
	g.GET("/state", m.Handler.State)
	g.POST("/theme/toggle", m.Handler.ToggleTheme)
	g.POST("/register/user", registerLimiter, m.Handler.RegisterUser)
	g.POST("/register/vendor", registerLimiter, m.Handler.RegisterVendor)

	auth := g.Group("/")
	auth.Use(middleware.RequireUser(m.Profiles))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
