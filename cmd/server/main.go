package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv" // .env loader for local development
	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/config"
	"github.com/minhvt/photobooth-backend/internal/database"
	"github.com/minhvt/photobooth-backend/internal/handler"
	"github.com/minhvt/photobooth-backend/internal/hub"
	"github.com/minhvt/photobooth-backend/internal/middleware"
	"github.com/minhvt/photobooth-backend/internal/queue"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/router"
	"github.com/minhvt/photobooth-backend/internal/service"
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set env directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	// Redis is optional: without it caching and rate limiting turn off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	booths := repository.NewPhotoboothRepo(db)
	sessions := repository.NewSessionRepo(db)
	photos := repository.NewPhotoRepo(db)
	assets := repository.NewAssetRepo(db)
	bank := repository.NewBankInfoRepo(db)

	// The role table must exist before the first registration.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := roles.Seed(seedCtx); err != nil {
		cancel()
		log.Fatalf("seed roles: %v", err)
	}
	cancel()

	// Services.
	coord := service.NewCoordinator(sessions, booths, time.Duration(cfg.SessionTTLMin)*time.Minute)
	points := service.NewPointsLedger(users)

	// Realtime hub.
	h := hub.New()
	go h.Run()

	// Broker consumer mirrors lifecycle events into logs/session.log.
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session consumer stopped: %v", err)
		}
	}()

	// Periodic expiry sweep; the admin endpoint triggers the same path
	// on demand.
	go func() {
		interval := time.Duration(cfg.CleanupIntervalSec) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := coord.CleanupExpired(ctx)
			cancel()
			if err != nil {
				log.Printf("expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry sweep: expired %d sessions", n)
			}
		}
	}()

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, roles),
		Booths:        handler.NewBoothHandler(booths, sessions),
		Sessions:      handler.NewSessionHandler(cfg, coord, sessions, assets, points, h),
		Photos:        handler.NewPhotoHandler(photos, sessions),
		Assets:        handler.NewAssetHandler(assets),
		Bank:          handler.NewBankHandler(bank),
		AdminUsers:    handler.NewAdminUserHandler(users, roles, points),
		AdminSessions: handler.NewAdminSessionHandler(coord, sessions, h),
		Webhook:       handler.NewWebhookHandler(users, points),
		Hub:           h,
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, handlers)
	router.RegisterAPI(e, handlers, cfg.JWTSecret, cacheMW)
	router.RegisterAdmin(e, handlers, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
