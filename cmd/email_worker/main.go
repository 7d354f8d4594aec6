package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/geo"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/vendor-directory/pkg/mailer/templates"
)

const defaultZone = "America/Sao_Paulo"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	q, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer q.Close()

	// prefetch keeps dispatch fair across workers
	msgs, err := q.Consume(16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}

	zone, err := time.LoadLocation(defaultZone)
	if err != nil {
		zone = time.UTC
	}
	w := &mailer.Worker{
		Sender:      mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		Branding:    mailtpl.BrandingFrom(cfg),
		Resolver:    geo.NewLocator(cfg.GeoIPURL, cfg.GeoTimeout, entity.Location{Lat: cfg.GeoFallbackLat, Lng: cfg.GeoFallbackLng}, logger),
		Zone:        zone,
		Logger:      logger,
		SendTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, msgs)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
