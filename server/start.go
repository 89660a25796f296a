package server

import (
	"context"
	"os"

	"usuarios-service/auth"
	cachepackage "usuarios-service/cache"
	"usuarios-service/config"
	"usuarios-service/database"
	"usuarios-service/handlers"
	"usuarios-service/models"
	"usuarios-service/repository"
	"usuarios-service/services"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitLogger sets up the process-wide logger.
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

func StartServer(cfg *config.Config) {
	InitLogger()

	logger.Info("Starting Usuarios Service...")

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	tokens := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenValidity)
	userService := services.NewUserService(repository.NewUserRepository(dbConn), cache, tokens, cfg.BcryptCost)

	if err := seedUser(context.Background(), userService, cfg); err != nil {
		logger.Error("Failed to seed user", zap.Error(err))
		os.Exit(1)
	}

	userHandler := handlers.NewUserHandler(userService)
	checker := auth.NewChecker(userService, tokens)

	// Create HTTP server with authentication
	server := httpserver.New(cfg.Port, checker.Check)

	for _, e := range routes(userHandler) {
		server.Register(e.route, e.handler)
	}

	logger.Info("Usuarios Service started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: POST /usuarios/cadastrar, POST /usuarios/logar, PUT /usuarios/atualizar, GET /usuarios/all, GET /usuarios/{id}")

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}

// seedUser registers the configured seed account when it does not exist yet.
func seedUser(ctx context.Context, users *services.UserService, cfg *config.Config) error {
	if cfg.SeedEmail == "" {
		return nil
	}
	created, err := users.EnsureUser(ctx, models.UserRequest{
		Name:     cfg.SeedName,
		Email:    cfg.SeedEmail,
		Password: cfg.SeedPassword,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("Seed user created", zap.String("email", cfg.SeedEmail))
	}
	return nil
}
