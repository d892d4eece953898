package main

import (
	"context"
	"flag"
	"os"

	"abonos/internal/cli"
	"abonos/internal/core"
	"abonos/internal/export"
	"abonos/internal/log"
)

func main() {
	var (
		tenantFlag = flag.String("tenant", "", "tenant identity to export (default: DEFAULT_TENANT)")
		outFlag    = flag.String("out", "", "output file (default: stdout)")
		clientFlag = flag.String("client", "", "filter by client name")
		stageFlag  = flag.String("stage", "", "filter by stage")
		payments   = flag.Bool("payments", false, "export the payment log instead of the summary")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	identity := *tenantFlag
	if identity == "" {
		identity = cfg.DefaultTenant
	}
	if identity == "" {
		logger.Error("No tenant given, pass -tenant or set DEFAULT_TENANT")
		os.Exit(1)
	}

	registry := cli.InitRegistry(cfg, nil)
	defer registry.Close()

	svc, err := registry.Service(identity)
	if err != nil {
		logger.Error("Failed to open tenant ledger", "tenant", identity, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var data []byte
	if *payments {
		rows, err := svc.ListPayments(ctx, 0)
		if err != nil {
			logger.Error("Failed to list payments", "tenant", identity, "error", err)
			os.Exit(1)
		}
		data, err = export.PaymentsCSV(rows)
		if err != nil {
			logger.Error("Failed to render CSV", "error", err)
			os.Exit(1)
		}
	} else {
		summary, err := svc.Summarize(ctx, core.Filter{Client: *clientFlag, Stage: *stageFlag})
		if err != nil {
			logger.Error("Failed to summarize ledger", "tenant", identity, "error", err)
			os.Exit(1)
		}
		data, err = export.SummaryCSV(summary)
		if err != nil {
			logger.Error("Failed to render CSV", "error", err)
			os.Exit(1)
		}
	}

	if *outFlag == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			logger.Error("Failed to write output", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*outFlag, data, 0o644); err != nil {
		logger.Error("Failed to write output file", "path", *outFlag, "error", err)
		os.Exit(1)
	}
	logger.Info("Export written", "tenant", identity, "path", *outFlag, "bytes", len(data))
}
