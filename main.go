package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/niu-24-19333-stack/ScamShield/internal/client"
	"github.com/niu-24-19333-stack/ScamShield/internal/config"
	"github.com/niu-24-19333-stack/ScamShield/internal/db"
	"github.com/niu-24-19333-stack/ScamShield/internal/handler"
	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

const blacklistPurgeInterval = time.Hour

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("[Config] Loaded .env")
	}
	cfg := config.Load()

	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		log.Fatalf("[DB] %v", err)
	}
	defer pool.Close()
	store := &db.Postgres{Pool: pool}

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("[DB] Failed to ensure schema: %v", err)
	}

	codec, err := service.NewTokenCodec(cfg.Auth)
	if err != nil {
		log.Fatalf("[Auth] %v", err)
	}

	ledger := service.NewRevocationLedger(store)
	ledger.StartPurgeLoop(ctx, blacklistPurgeInterval)

	mailer := client.NewEmailClient(cfg.SMTP, cfg.App.FrontendURL)
	if !mailer.IsConfigured() {
		log.Println("[Email] SMTP not configured - transactional email disabled")
	}

	oauthSvc, err := service.NewOAuthService(ctx, cfg.OAuth)
	if err != nil {
		log.Fatalf("[OAuth] %v", err)
	}

	authSvc := service.NewAuthService(store, codec, ledger, mailer)
	userSvc := service.NewUserService(store, store, store, store)

	authH := handler.NewAuthHandler(authSvc, oauthSvc)
	userH := handler.NewUserHandler(userSvc, authSvc)
	adminH := handler.NewAdminHandler(ledger)

	router := handler.NewRouter(authSvc, authH, userH, adminH, cfg.App.CORSOrigins)

	addr := ":" + cfg.App.Port
	log.Printf("[HTTP] Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("[HTTP] %v", err)
	}
}
