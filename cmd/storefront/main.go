package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/ratelimit"
	"storefront/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if cfg.SeedDemo {
		if err := repos.SeedDemo(ctx, db); err != nil {
			log.Fatalf("seed demo products: %v", err)
		}
	}

	deps := handlers.NewDeps(db, cfg)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := deps.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		log.Printf("[auth] admin account ensured for %s", cfg.AdminEmail)
	}
	if n, err := deps.Auth.PurgeSessions(ctx); err != nil {
		log.Printf("[warn] purge sessions: %v", err)
	} else if n > 0 {
		log.Printf("[auth] purged %d expired sessions", n)
	}
	cancel()

	opts := handlers.Options{AccessLog: true}
	if cfg.RedisURL != "" {
		store, err := ratelimit.FromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("[warn] redis unavailable, rate limits stay in memory: %v", err)
		} else {
			defer store.Close()
			opts.LimiterStorage = store
			log.Printf("[ratelimit] using redis storage")
		}
	}

	app := handlers.NewApp(deps, opts)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("[server] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[warn] shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[server] listen: %v", err)
	}
}
