package main

import (
	"fmt"
	"os"

	"ledgerengine/internal/config"
	"ledgerengine/internal/database"
	"ledgerengine/internal/logger"
	"ledgerengine/internal/server"
	"ledgerengine/internal/validator"
)

// @title           Ledger Engine API
// @version         1.0
// @description     Income, expense and savings-goal ledger with rollups, alerts and a budget invariant enforced on every spending write.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("Failed to close database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	svc := server.NewServices(dbManager.DB(), appConfig.Location)
	router := server.NewRouter(svc, appConfig.Location)

	log.Infow("Starting ledger engine",
		"port", appConfig.Port,
		"db_driver", dbConfig.Driver,
		"timezone", appConfig.Location.String(),
	)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
