package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/application"
	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

// AdminModule mounts /admin behind an ADMIN or MASTER sign-in.
type AdminModule struct {
	Handler  *handlers.AdminHandler
	Profiles *application.ProfileService
	Device   gin.HandlerFunc
	Redis    *redis.Client
}

func NewAdminModule(h *handlers.AdminHandler, profiles *application.ProfileService, device gin.HandlerFunc, rdb *redis.Client) *AdminModule {
	return &AdminModule{Handler: h, Profiles: profiles, Device: device, Redis: rdb}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin", m.Device, middleware.RequireUser(m.Profiles), middleware.RequireAdmin())
	g.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("/bans", m.Handler.Ban)
		g.DELETE("/bans/:value", m.Handler.Unban)

		g.POST("/admins", m.Handler.CreateAdmin)
		g.PATCH("/users/:id", m.Handler.EditUser)
		g.DELETE("/users/:id", m.Handler.DeleteUser)
		g.POST("/users/:id/unlock", m.Handler.UnlockUser)
		g.POST("/users/:id/reset-password", m.Handler.ResetPassword)

		g.DELETE("/vendors/:id", m.Handler.DeleteVendor)
		g.POST("/vendors/:id/feature", m.Handler.FeatureVendor)

		g.PUT("/config", m.Handler.UpdateConfig)
		g.POST("/factory-reset", m.Handler.FactoryReset)

		g.GET("/logs", m.Handler.SecurityLogs)
		g.DELETE("/logs", m.Handler.ClearSecurityLogs)
	}
}
