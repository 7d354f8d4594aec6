package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/container"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	rdb := container.ConnectRedis(cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	stores, err := container.OpenStores(cfg, rdb, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}
	defer stores.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, done, err := stores.Local.Get(ctx, repo.KeySeedMarker); err != nil {
		log.Fatalf("failed to read seed marker: %v", err)
	} else if done {
		fmt.Println("already seeded; nothing to do")
		return
	}

	password := "password123"
	if cfg.PasswordHashing {
		if password, err = helpers.HashPassword(password); err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
	}

	users, vendors := demoData(password)
	for i := range users {
		if err := stores.Remote.UpsertUser(ctx, &users[i]); err != nil {
			log.Fatalf("failed to seed user %s: %v", users[i].Email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s type=%s\n", users[i].ID, users[i].Email, users[i].Type)
	}
	for i := range vendors {
		if err := stores.Remote.UpsertVendor(ctx, &vendors[i]); err != nil {
			log.Fatalf("failed to seed vendor %s: %v", vendors[i].Name, err)
		}
		fmt.Printf("seeded vendor: id=%s name=%s\n", vendors[i].ID, vendors[i].Name)
	}
	appCfg := entity.DefaultAppConfig()
	if err := stores.Remote.SaveAppConfig(ctx, &appCfg); err != nil {
		log.Fatalf("failed to seed app config: %v", err)
	}

	if err := stores.Local.Set(ctx, repo.KeySeedMarker, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Fatalf("failed to write seed marker: %v", err)
	}
	fmt.Println("seed complete (demo password: password123)")
}

func demoData(password string) ([]entity.User, []entity.Vendor) {
	f := func(v float64) *float64 { return &v }
	site := "https://padariacentral.example"

	users := []entity.User{
		{ID: "demo-user", Name: "Ana Lima", Email: "ana@example.com", CPF: "11122233344", Address: "Rua Augusta, 100, Consolação, São Paulo - SP", Type: entity.UserTypeUser, Password: password},
		{ID: "demo-padaria", Name: "Bruno Costa", Email: "bruno@padaria.example", CPF: "12345678000190", Address: "Rua Augusta, 10, Consolação, São Paulo - SP", Type: entity.UserTypeVendor, Password: password},
		{ID: "demo-eletricista", Name: "Carla Dias", Email: "carla@servicos.example", CPF: "98765432100", Address: "Rua Frei Caneca, 55, Consolação, São Paulo - SP", Type: entity.UserTypeVendor, Password: password},
	}
	vendors := []entity.Vendor{
		{
			ID: "demo-padaria", Name: "Padaria Central", Document: "12345678000190", Phone: "1133334444",
			Address: users[1].Address, Latitude: f(-23.5535), Longitude: f(-46.6580),
			Categories: []string{"Padaria", "Café"}, Description: "Pães artesanais e café da manhã.",
			Website: &site, Reviews: []entity.Review{}, Subtype: entity.SubtypeCommerce,
			Visibility: entity.Visibility{ShowPhone: true, ShowAddress: true, ShowWebsite: true},
		},
		{
			ID: "demo-eletricista", Name: "Carla Elétrica", Document: "98765432100", Phone: "11988887777",
			Address: users[2].Address, Latitude: f(-23.5550), Longitude: f(-46.6530),
			Categories: []string{"Eletricista"}, Description: "Instalações e reparos residenciais.",
			Reviews: []entity.Review{}, Subtype: entity.SubtypeService,
			Visibility: entity.Visibility{ShowPhone: true, ShowAddress: false, ShowWebsite: false},
		},
	}
	return users, vendors
}
