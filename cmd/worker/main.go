package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"phishguard/internal/app"
	"phishguard/internal/config"
	"phishguard/internal/logging"
	"phishguard/internal/worker"
)

func main() {
	fmt.Println("🚀 Starting PhishGuard Worker...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	// 1. Scan pipeline (lookups, history backend)
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to build scan pipeline: %v", err)
	}
	defer a.Close()

	// 2. Queue connection
	client, err := a.RedisClient(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	fmt.Printf("✅ Connected to Redis queue at %s\n", cfg.Storage.RedisAddr)

	// 3. Start the Processing Loop
	r := &worker.Runner{Client: client, Scanner: a.Scanner}
	if err := r.Start(ctx); err != nil {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
	fmt.Println("✅ Worker shut down cleanly.")
}
