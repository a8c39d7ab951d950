package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"keuangan/internal/amqp"
	"keuangan/internal/config"
	"keuangan/internal/core"
	"keuangan/internal/render"
	"keuangan/internal/services"
	"keuangan/internal/store"
	"keuangan/internal/store/csvfile"
	"keuangan/internal/store/sqlite"
)

// The worker consumes record-appended events and writes an audit log
// entry for each row, re-reading it from storage to confirm the append.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting keuangan-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.DataBackend {
	case "csv":
		st, err = csvfile.New(cfg.CSVDataDir)
	case "sqlite":
		st, err = sqlite.New(cfg.SQLiteDBPath)
	default:
		logger.Error("Worker needs a durable backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ledger := services.NewLedger(st, nil, render.ReceiptOptions{})
	defer ledger.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err = amqpClient.ConsumeRecordAppended(ctx, func(msg *amqp.RecordAppendedMessage) error {
		kind, err := core.ParseKind(msg.Table)
		if err != nil {
			return err
		}
		rec, err := ledger.RecordAt(ctx, kind, msg.Index)
		if err != nil {
			return err
		}
		logger.Info("Record appended",
			"table", msg.Table,
			"index", msg.Index,
			"record", rec,
			"event_time", msg.Timestamp)
		return nil
	})
	if err != nil && err != context.Canceled {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
