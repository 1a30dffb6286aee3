package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/config"
	"github.com/sahilchouksey/edu-platform-api/database"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file not loaded, using system environment variables")
	}
	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Edu Platform - Database Seeding")
	fmt.Println(separator)

	if err := database.NewSeeder(store.GetDB()).SeedAll(env.ADMIN_EMAIL, env.ADMIN_PASSWORD); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println(separator)
	fmt.Println("Admin user is created from ADMIN_EMAIL and ADMIN_PASSWORD when both are set.")
}
