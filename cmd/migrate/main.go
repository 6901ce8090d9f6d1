// Command migrate runs the embedded history migrations via goose.
//
// Usage:
//
//	go run ./cmd/migrate up          # Apply all pending migrations
//	go run ./cmd/migrate down        # Roll back the last migration
//	go run ./cmd/migrate status      # Show migration status
//	go run ./cmd/migrate version     # Show current schema version
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"phishguard/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: migrate <command>")
		fmt.Println("Commands: up, down, status, version, redo, up-to <version>, down-to <version>")
		os.Exit(1)
	}

	_ = godotenv.Load()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("❌ DB_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := store.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer pool.Close()

	command := os.Args[1]
	if err := store.RunMigrations(ctx, pool, command, os.Args[2:]...); err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Printf("✅ migrate %s done\n", command)
}
