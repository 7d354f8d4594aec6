package router

import (
	"github.com/oksasatya/vendor-directory/internal/container"
	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
	"github.com/oksasatya/vendor-directory/internal/router/modules"
)

// InitModules builds the HTTP handlers from the container services and
// registers their modules. Call it once at startup, after the container
// is filled.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	svc := container.GetServices()
	cookies := container.GetCookies()

	device := middleware.Device(svc.Sessions, cookies)

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(svc.Auth, svc.Profiles, cookies, logger),
		svc.Profiles, device, rdb,
	))
	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(svc.Registration, svc.Profiles, cookies, logger),
		svc.Profiles, device, rdb,
	))
	r.Add(modules.NewVendorModule(
		handlers.NewVendorHandler(svc.Vendors, logger),
		svc.Profiles, device, rdb,
	))
	r.Add(modules.NewAdminModule(
		handlers.NewAdminHandler(svc.Admin, logger),
		svc.Profiles, device, rdb,
	))
	r.Add(modules.NewEmailModule(
		handlers.NewEmailHandler(svc.Vendors, logger, cfg.MailSendEnabled),
		device, rdb,
	))
	r.Add(modules.NewLiveModule(handlers.NewLiveHandler(cfg.CORSOrigins(), logger), device))
	r.AddOps(modules.NewHealthModule(rdb, container.GetES()))

	if cfg.DebugMetricsEnabled {
		if m := container.GetMetrics(); m != nil {
			r.AddOps(modules.NewDebugModule(m.Handler(), rdb))
		}
	}
}
