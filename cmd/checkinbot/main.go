package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"checkinbot/internal/bot"
	"checkinbot/internal/config"
	"checkinbot/internal/db"
	"checkinbot/internal/tag"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting CheckinBot application...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	template := tag.DefaultTemplate()
	if cfg.Tag.TemplatePath != "" {
		template, err = tag.LoadTemplate(cfg.Tag.TemplatePath)
		if err != nil {
			log.Fatalf("Failed to load tag template: %v", err)
		}
		log.Printf("Loaded tag template %q from %s", template.Name, cfg.Tag.TemplatePath)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	discordBot, err := bot.New(cfg, database, template)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		s := <-signals
		log.Printf("Received signal: %v", s)
		cancel()
	}()

	go func() {
		if err := discordBot.Start(ctx); err != nil {
			log.Printf("Error running bot: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	if err := discordBot.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Application shutdown complete")
}
