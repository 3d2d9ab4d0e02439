package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/internal/cartsvc"
	"github.com/cuong200111/baitap-sub001/internal/config"
	"github.com/cuong200111/baitap-sub001/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}
	defer b.Close()

	if cfg.SeedFile != "" {
		if err := seedFromFile(ctx, cfg.SeedFile, b); err != nil {
			log.Fatalf("Failed to seed from %s: %v", cfg.SeedFile, err)
		}
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set; login is disabled and user_id scopes are not verified")
	} else {
		jwtManager, err = auth.NewJWTManager(auth.JWTConfig{
			Issuer: cfg.JWTIssuer,
			Secret: cfg.JWTSecret,
			TTL:    cfg.TokenTTL(),
		})
		if err != nil {
			log.Fatalf("Failed to configure JWT: %v", err)
		}
	}

	svc := cartsvc.NewService(b.repo, b.catalog, b.buyNow, cartsvc.Options{
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		BuyNowTTL:             cfg.BuyNowTTL(),
	})

	engine := router.New(router.EngineConfig{
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.AllowedOrigins,
		RateRPS:        cfg.RateRPS,
		RateBurst:      cfg.RateBurst,
	}, router.Dependencies{
		Service:      svc,
		JWT:          jwtManager,
		Customers:    b.customers,
		HealthChecks: b.health,
	})

	log.Printf("Server is running on port %s (store=%s, catalog=%s)", cfg.Port, cfg.StoreBackend, cfg.CatalogBackend)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
