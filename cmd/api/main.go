package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bunah-checkout/internal/cache"
	"bunah-checkout/internal/client"
	"bunah-checkout/internal/config"
	"bunah-checkout/internal/logging"
	"bunah-checkout/internal/pricing"
	"bunah-checkout/internal/repository"
	"bunah-checkout/internal/server"
	"bunah-checkout/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	envErr := godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		logging.New(config.Log{}).Error("parse_config_failed", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	if envErr != nil {
		logger.Info("no .env file found (ok in prod)")
	}

	db, err := client.NewDBClient(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	if err := client.Migrate(db); err != nil {
		logger.Error("database_migrate_failed", "error", err)
		os.Exit(1)
	}

	rules := pricing.DefaultRules()
	if cfg.Pricing.RulesFile != "" {
		rules, err = pricing.LoadRules(cfg.Pricing.RulesFile)
		if err != nil {
			logger.Error("pricing_rules_load_failed", "file", cfg.Pricing.RulesFile, "error", err)
			os.Exit(1)
		}
	}
	engine := pricing.NewEngine(rules)

	drafts, err := cache.NewDraftStore(cfg.Cache, db)
	if err != nil {
		logger.Error("draft_store_init_failed", "error", err)
		os.Exit(1)
	}

	thawaniClient := client.NewThawaniClient(&cfg.Thawani)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)

	inventoryService := service.NewInventoryService(stockRepo, cfg.Inventory.Concurrency, logger)
	checkoutService := service.NewCheckoutService(
		engine,
		drafts,
		thawaniClient,
		cfg.Thawani.SuccessURL,
		cfg.Thawani.CancelURL,
		service.NewULID,
		logger,
	)
	paymentService := service.NewPaymentService(
		db,
		thawaniClient,
		orderRepo,
		drafts,
		engine,
		inventoryService,
		cfg.Thawani.SessionPageSize,
		cfg.Thawani.SessionMaxPages,
		logger,
	)
	orderService := service.NewOrderService(orderRepo, productRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cache.RunSweeper(ctx, drafts, cfg.Cache.SweepInterval, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg.HTTP, checkoutService, paymentService, orderService, logger)

	logger.Info("http_server_starting", "addr", serverAddr, "environment", cfg.Environment.Name, "cache_driver", cfg.Cache.Driver)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
