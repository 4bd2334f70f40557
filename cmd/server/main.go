package main

import (
	"context"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	"github.com/OTRONTO-F/Rinsohot/internal/cache"
	"github.com/OTRONTO-F/Rinsohot/internal/config"
	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"github.com/OTRONTO-F/Rinsohot/internal/logger"
	"github.com/OTRONTO-F/Rinsohot/internal/realtime"
	"github.com/OTRONTO-F/Rinsohot/internal/server"
	"github.com/OTRONTO-F/Rinsohot/internal/service/auth"
	"github.com/OTRONTO-F/Rinsohot/internal/service/chat"
	"github.com/OTRONTO-F/Rinsohot/internal/service/match"
	"github.com/OTRONTO-F/Rinsohot/internal/service/profile"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error("failed to close db", "err", err)
		}
	}()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Realtime hub + shared dependencies
	hub := realtime.NewHub(log)
	appCtx := app.New(cfg, database, redisCache, hub, log)

	authSvc := auth.NewService(appCtx)
	authMW := auth.Middleware(authSvc.Tokens())
	matchSvc := match.NewService(appCtx)
	chatSvc := chat.NewService(appCtx)
	profileSvc := profile.NewService(appCtx)

	registrars := []server.Registrar{
		auth.NewRegistrar(authSvc),
		profile.NewRegistrar(profileSvc, authMW),
		match.NewRegistrar(matchSvc, authMW),
		chat.NewRegistrar(chatSvc, authMW),
		realtime.NewHandler(hub, chatSvc, log),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	log.Info("starting http server", "addr", cfg.HTTP.Host+":"+cfg.HTTP.Port)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("http server exited with error", "err", err)
	}
}
