package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/container"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/geo"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/redisstore"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/search"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
	"github.com/oksasatya/vendor-directory/internal/router"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Redis: change feed, 2FA challenges and rate limits
	rdb := container.ConnectRedis(cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	stores, err := container.OpenStores(cfg, rdb, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}
	defer stores.Close()

	notifier, err := container.BuildNotifier(cfg, logger)
	if err != nil {
		log.Fatalf("MAIL_SEND_ENABLED is set but emails cannot be queued: %v", err)
	}
	deps := &application.Deps{
		Notifier:      notifier,
		Locator:       geo.NewLocator(cfg.GeoIPURL, cfg.GeoTimeout, entity.Location{Lat: cfg.GeoFallbackLat, Lng: cfg.GeoFallbackLng}, logger),
		Addresses:     geo.NewAddressResolver(cfg.CEPURL, cfg.GeoTimeout, cfg.AllowedCities, cfg.AllowedNeighborhoods),
		Logger:        logger,
		Metrics:       m,
		HashPasswords: cfg.PasswordHashing,
	}
	if rdb != nil {
		deps.Challenges = redisstore.NewChallengeStore(rdb)
	} else {
		deps.Challenges = memory.NewChallengeStore()
	}

	// GCS photo uploads are optional
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		deps.Photos = helpers.NewPhotoBucket(gcsClient, cfg.GCSBucket)
	}

	// Elasticsearch mirror for full-text vendor search
	var indexSync *application.IndexSync
	es, err := helpers.NewESClient(cfg.ElasticsearchAddrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		logger.WithError(err).Warn("elasticsearch disabled")
	case es != nil:
		if err := helpers.PingES(ctx, es); err != nil {
			logger.WithError(err).Warn("elasticsearch unreachable; search falls back to the listing")
			break
		}
		container.SetES(es)
		index := search.NewVendorIndex(es, cfg.ESVendorsIndex, logger)
		deps.Index = index
		indexSync = application.NewIndexSync(stores.Remote, index, logger)
		if err := indexSync.Start(ctx); err != nil {
			logger.WithError(err).Warn("vendor index sync not started")
			indexSync = nil
		}
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	svc := container.BuildServices(cfg, stores, deps, m, jwtManager)
	defer svc.Sessions.Close()

	idle := application.NewIdleMonitor(svc.Sessions, svc.Auth, cfg.IdleTimeout, cfg.IdlePollInterval)
	idle.Start(ctx)

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetMetrics(m)
	container.SetServices(svc)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", helpers.HeaderDeviceID, middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", helpers.HeaderDeviceID, middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))

	registry := router.NewRegistry(r)
	if cfg.HTTPLogEnabled {
		registry.Use(helpers.AccessLog(logger))
	}
	router.InitModules(registry)
	registry.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	idle.Stop()
	if indexSync != nil {
		indexSync.Stop()
	}
	if q := container.GetEmailQueue(); q != nil {
		q.Close()
	}
	logger.Info("server exited properly")
}
