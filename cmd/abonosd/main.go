package main

import (
	"net/http"
	"os"
	"time"

	"abonos/internal/cli"
	apphttp "abonos/internal/http"
	"abonos/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	events := cli.InitEvents(logger, cfg)
	registry := cli.InitRegistry(cfg, events)

	srv := apphttp.NewServer(":"+cfg.Port, registry)

	// Server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := srv.Close(); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := registry.Close(); err != nil {
			logger.Error("Registry shutdown error", "error", err)
		}
		if events != nil {
			if err := events.Close(); err != nil {
				logger.Error("Event stream shutdown error", "error", err)
			}
		}
	})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"events_enabled", events != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
