package app

import (
	"log/slog"

	"github.com/OTRONTO-F/Rinsohot/internal/cache"
	"github.com/OTRONTO-F/Rinsohot/internal/config"
	"github.com/OTRONTO-F/Rinsohot/internal/realtime"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Hub, Logger, config).
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Hub        *realtime.Hub
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, hub *realtime.Hub, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Hub:        hub,
		Logger:     logger,
	}
}
