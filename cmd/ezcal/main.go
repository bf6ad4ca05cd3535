package main

import (
	"log"

	"github.com/ezcal-dev/ezcal/db"
	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/ezcal-dev/ezcal/internal/router"
	"github.com/ezcal-dev/ezcal/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	store, err := storage.New(cfg)

	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	r := router.NewRouter(cfg, db.DB, store)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
