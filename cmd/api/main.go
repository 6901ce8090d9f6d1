package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"phishguard/internal/app"
	"phishguard/internal/config"
	"phishguard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	// Root context for background goroutines. Cancelling it on shutdown
	// stops cache eviction and anything else tied to it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Scan pipeline: lookups, history backend, collector
	fmt.Printf("🔌 Building scan pipeline (storage: %s, lookups: %s)...\n", cfg.Storage.Backend, cfg.Lookup.Mode)
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to build scan pipeline: %v", err)
	}
	defer a.Close()
	fmt.Println("✅ Scan pipeline ready")

	// 2. Scan queue (optional)
	var queueClient *redis.Client
	if c, err := a.RedisClient(ctx); err != nil {
		fmt.Printf("⚠️  Redis unreachable at %s, /enqueue disabled: %v\n", cfg.Storage.RedisAddr, err)
	} else {
		queueClient = c
		fmt.Println("✅ Connected to Redis Queue")
	}

	if cfg.Server.APIKey == "" {
		fmt.Println("⚠️  API_SECRET_KEY not set. Authenticated endpoints will refuse every request.")
	}

	srv := &server{app: a, queue: queueClient, apiKey: cfg.Server.APIKey, log: logger}

	// 3. Server Configuration
	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 4. Graceful shutdown on SIGTERM / SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		fmt.Printf("🚀 PhishGuard API running on %s\n", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	<-quit
	fmt.Println("⏳ Shutdown signal received, draining in-flight requests...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	fmt.Println("✅ Server shut down cleanly.")
}
