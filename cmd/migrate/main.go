package main

import (
	"context"
	"log"
	"time"

	"github.com/sahilchouksey/edu-platform-api/config"
	"github.com/sahilchouksey/edu-platform-api/database"
)

func main() {
	log.Println("=== GORM Migration ===")

	if err := config.LoadENV(); err != nil {
		log.Fatal("Failed to load environment variables:", err)
	}
	env, err := config.Get()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.HealthCheck(ctx); err != nil {
		log.Fatal("Database health check failed:", err)
	}

	log.Printf("Migrated %d tables, database connection healthy", len(database.Models()))
}
