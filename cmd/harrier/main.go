// Harrier - Fleet rental management that deploys in 60 seconds.
// Copyright (c) 2026 OpenFleet
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/openfleet/harrier/internal/api"
	"github.com/openfleet/harrier/internal/bus"
	"github.com/openfleet/harrier/internal/cache"
	"github.com/openfleet/harrier/internal/discount"
	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/rental"
	"github.com/openfleet/harrier/internal/repo"
	"github.com/openfleet/harrier/internal/report"
	"github.com/openfleet/harrier/internal/seed"
	"github.com/openfleet/harrier/internal/sink"
	"github.com/openfleet/harrier/internal/storage"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("HARRIER_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting harrier",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()
	if os.Getenv("HARRIER_DURABLE") == "true" {
		cfg = domain.DurableConfig()
		slog.Info("running with durable infrastructure")
	}
	applyEnv(cfg)

	slog.Info("configuration loaded",
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize snapshot stores
	stores, err := storage.Open(cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	slog.Info("storage initialized", "driver", cfg.Storage.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize report sink
	reportSink, err := sink.NewFileSink(cfg.Reports.Dir, cfg.Reports.Workers)
	if err != nil {
		slog.Error("failed to initialize report sink", "error", err)
		os.Exit(1)
	}
	slog.Info("report sink initialized", "dir", cfg.Reports.Dir)

	// Collections load their snapshots on construction
	vehicles := rental.NewVehicleCollection(ctx, stores.Vehicles)
	customers := rental.NewCustomerCollection(ctx, stores.Customers)
	rentals := rental.NewRentalCollection(ctx, stores.Rentals)
	ruleConfigs := repo.New(ctx, "discount_rules", stores.DiscountRules,
		func(c domain.DiscountRuleConfig) string { return c.ID },
		repo.Options[domain.DiscountRuleConfig]{})
	slog.Info("collections loaded",
		"vehicles", vehicles.Count(),
		"customers", customers.Count(),
		"rentals", rentals.Count(),
	)

	// Initialize discount engine with persisted rules
	engine, err := discount.NewEngine()
	if err != nil {
		slog.Error("failed to initialize discount engine", "error", err)
		os.Exit(1)
	}
	for cfgRule := range ruleConfigs.All() {
		if !cfgRule.Enabled {
			continue
		}
		rule := cfgRule
		if err := engine.LoadRule(&rule); err != nil {
			slog.Warn("skipping invalid persisted discount rule", "id", rule.ID, "error", err)
		}
	}
	slog.Info("discount engine initialized", "rules_count", engine.RulesCount())

	// The standard tiered rule always applies; operator-defined CEL rules
	// join in only when enabled.
	discountRule := discount.Standard
	if cfg.CustomDiscounts {
		discountRule = discount.Combine(discount.Standard, engine.Rule())
		slog.Info("custom discount rules enabled")
	}

	rentalSvc := rental.NewService(vehicles, customers, rentals, discountRule, busImpl, reportSink)
	reportSvc := report.NewService(rentals, cacheImpl, reportSink, busImpl)

	// Seed fictitious data on request
	if cfg.Seed {
		if err := seed.Run(ctx, rentalSvc); err != nil {
			slog.Error("failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, rentalSvc, reportSvc, cacheImpl, busImpl, engine, ruleConfigs, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("harrier is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Flush queued report artifacts before exit
	reportSink.Stop()

	slog.Info("harrier shutdown complete")
}

// applyEnv overlays HARRIER_* environment variables on the configuration.
func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("HARRIER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HARRIER_STORAGE"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("HARRIER_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("HARRIER_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("HARRIER_PG_HOST"); v != "" {
		cfg.Storage.PostgresHost = v
	}
	if v := os.Getenv("HARRIER_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.PostgresPort = port
		}
	}
	if v := os.Getenv("HARRIER_PG_USER"); v != "" {
		cfg.Storage.PostgresUser = v
	}
	if v := os.Getenv("HARRIER_PG_PASSWORD"); v != "" {
		cfg.Storage.PostgresPassword = v
	}
	if v := os.Getenv("HARRIER_PG_DB"); v != "" {
		cfg.Storage.PostgresDB = v
	}
	if v := os.Getenv("HARRIER_CACHE"); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv("HARRIER_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("HARRIER_BUS"); v != "" {
		cfg.EventBus.Type = v
	}
	if v := os.Getenv("HARRIER_NATS_URL"); v != "" {
		cfg.EventBus.NATSUrl = v
	}
	if v := os.Getenv("HARRIER_REPORTS_DIR"); v != "" {
		cfg.Reports.Dir = v
	}
	if os.Getenv("HARRIER_SEED") == "true" {
		cfg.Seed = true
	}
	if os.Getenv("HARRIER_CUSTOM_DISCOUNTS") == "true" {
		cfg.CustomDiscounts = true
	}
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🦅 HARRIER                  ║")
	fmt.Println("  ║       Fleet Rental Management             ║")
	fmt.Println("  ║      Every vehicle, accounted for.        ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Storage:  %s\n", cfg.Storage.Driver)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /vehicles                 - Register a vehicle")
	fmt.Println("    GET  /vehicles                 - List the fleet")
	fmt.Println("    GET  /vehicles/stats           - Fleet counts by category")
	fmt.Println("    POST /customers                - Register a customer")
	fmt.Println("    GET  /customers                - List customers")
	fmt.Println("    POST /rentals                  - Check out a vehicle")
	fmt.Println("    POST /rentals/{plate}/return   - Return a vehicle")
	fmt.Println("    GET  /rentals                  - Active rentals or history")
	fmt.Println("    GET  /reports/revenue          - Revenue for a period")
	fmt.Println("    GET  /reports/top-vehicles     - Most rented vehicles")
	fmt.Println("    GET  /reports/top-customers    - Most frequent customers")
	fmt.Println("    GET  /discount-rules           - List CEL discount rules")
	fmt.Println("    POST /discount-rules           - Create a CEL discount rule")
	fmt.Println("    GET  /health                   - Health check")
	fmt.Println()
}
