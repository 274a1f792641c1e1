package main

import (
	"log/slog"
	"os"

	"github.com/jalvarez/statline/backend/repository"
	"github.com/jalvarez/statline/backend/services"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// In demo mode the whole store lives in process memory and is re-seeded on
// every start; only the active-profile slot survives a restart.
const memoryDSN = "file::memory:?cache=shared"

func main() {
	// Setup structured logging with JSON format
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load configuration
	config := services.LoadConfig()

	// Initialize database connection
	db, err := openDatabase(config)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	store := repository.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed fixture data. With the in-memory store this runs on every start,
	// which is exactly the persistence boundary we want: everything except
	// the active-profile slot resets.
	if config.Database.Seed {
		seeder := services.NewDatabaseSeeder(store, config.Weights)
		if err := seeder.SeedDatabase(); err != nil {
			slog.Error("Failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Setup and start server
	server := services.NewServer(config)
	server.SetDatabase(store, db)
	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}

func openDatabase(config *services.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(config.Database.LogLevel)),
	}

	if config.Database.URL != "" {
		slog.Info("Connecting to Postgres")
		return gorm.Open(postgres.Open(config.Database.URL), gormConfig)
	}

	slog.Info("No DATABASE_URL configured, using in-memory store")
	return gorm.Open(sqlite.Open(memoryDSN), gormConfig)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
