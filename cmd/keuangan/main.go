package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"keuangan/internal/amqp"
	"keuangan/internal/config"
	apphttp "keuangan/internal/http"
	"keuangan/internal/render"
	"keuangan/internal/services"
	"keuangan/internal/store"
	"keuangan/internal/store/csvfile"
	"keuangan/internal/store/memory"
	"keuangan/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.DataBackend {
	case "csv":
		st, err = csvfile.New(cfg.CSVDataDir)
		if err != nil {
			logger.Error("Failed to initialize CSV store", "error", err, "dir", cfg.CSVDataDir)
			os.Exit(1)
		}
		logger.Info("Initialized CSV backend", "dir", cfg.CSVDataDir)
	case "sqlite":
		st, err = sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		st = memory.New()
		logger.Info("Initialized memory backend")
	}

	// AMQP publishing is optional: no URL means no events.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	receipt := render.ReceiptOptions{
		SchoolName:    cfg.SchoolName,
		SchoolAddress: cfg.SchoolAddress,
		Logo:          cfg.LoadLogo(),
	}
	if receipt.Logo == nil {
		logger.Warn("Logo not loaded, receipts will carry a placeholder", "path", cfg.LogoPath)
	}

	ledger := services.NewLedger(st, events, receipt)
	defer ledger.Close()

	srv := apphttp.NewServer(":"+cfg.Port, ledger)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting keuangan server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
