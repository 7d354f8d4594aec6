package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vendor-directory/internal/application"
	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
)

type VendorModule struct {
	Handler  *handlers.VendorHandler
	Profiles *application.ProfileService
	Device   gin.HandlerFunc
	Redis    *redis.Client
}

func NewVendorModule(h *handlers.VendorHandler, profiles *application.ProfileService, device gin.HandlerFunc, rdb *redis.Client) *VendorModule {
	return &VendorModule{Handler: h, Profiles: profiles, Device: device, Redis: rdb}
}

func (m *VendorModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/", m.Device)
	g.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil))
	g.GET("/vendors", m.Handler.List)
	g.GET("/vendors/search", m.Handler.Search)
	g.GET("/vendors/:id", m.Handler.Get)
	g.PUT("/filters", m.Handler.Filters)
	g.POST("/location", m.Handler.Locate)

	auth := g.Group("/")
	auth.Use(middleware.RequireUser(m.Profiles))
	auth.Use(middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/vendors/:id/reviews", m.Handler.AddReview)
		auth.PUT("/vendors/:id/reviews/:reviewId/reply", m.Handler.ReplyReview)
		auth.PATCH("/vendors/:id", m.Handler.UpdateListing)
	}
}
