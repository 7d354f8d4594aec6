package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/application"
	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

// AuthModule mounts sign-in, token and password routes under /auth.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Profiles *application.ProfileService
	Device   gin.HandlerFunc
	Redis    *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, profiles *application.ProfileService, device gin.HandlerFunc, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Profiles: profiles, Device: device, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	codeLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByDevice(), nil)
	resetInitLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/auth", m.Device)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/admin/login", loginLimiter, m.Handler.AdminLogin)
	g.POST("/admin/verify", codeLimiter, m.Handler.VerifyAdminLogin)
	g.POST("/logout", m.Handler.Logout)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	g.POST("/reset/init", resetInitLimiter, m.Handler.ResetInit)
	g.POST("/reset/confirm", resetConfirmLimiter, m.Handler.ResetConfirm)

	// Protected password change with user-based rate limit
	auth := g.Group("/")
	auth.Use(middleware.RequireUser(m.Profiles))
	auth.Use(middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/password/code", m.Handler.PasswordCode)
		auth.POST("/password", m.Handler.ChangePassword)
	}
}
