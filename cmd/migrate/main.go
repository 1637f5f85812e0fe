package main

import (
	"context"
	"log"
	"time"

	"checkinbot/internal/config"
	"checkinbot/internal/db"
	"checkinbot/migrations"

	"github.com/joho/godotenv"
)

const migrateTimeout = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	log.Printf("Migrating tables %s and %s", cfg.Database.EventsTable, cfg.Database.AttendeesTable)
	if err := database.Migrate(ctx, migrations.Files, cfg.Database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}
