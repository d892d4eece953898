package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"abonos/internal/amqp"
	"abonos/internal/cli"
	"abonos/internal/log"
	"abonos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	events := cli.InitEvents(logger, cfg)
	defer events.Close()

	auditWorker, err := worker.NewAuditWorker(filepath.Join(cfg.DataDir, "audit"))
	if err != nil {
		logger.Error("Failed to initialize audit worker", "error", err)
		os.Exit(1)
	}
	defer auditWorker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return events.ConsumeLedgerEvents(gctx, func(msg *amqp.LedgerEventMessage) error {
			return auditWorker.HandleEvent(gctx, msg)
		})
	})
	g.Go(func() error {
		return auditWorker.ReportPeriodically(gctx, 5*time.Minute)
	})

	logger.Info("Starting audit worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"audit_dir", filepath.Join(cfg.DataDir, "audit"))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Audit worker stopped gracefully")
}
