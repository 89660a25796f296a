package cache

import (
	"os"

	"usuarios-service/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache connects the configured backend ("redis" or the in-process
// "memory" store). With cache type "none" every lookup misses.
func InitializeCache(cfg *config.Config) Store {
	if cfg.CacheType == "none" {
		logger.Info("Cache disabled")
		return Nop{}
	}

	c, err := cache.New(cache.Config{
		Type:          cfg.CacheType,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Cache initialized", zap.String("type", cfg.CacheType), zap.String("addr", cfg.RedisAddr))
	return &Backend{c: c}
}
