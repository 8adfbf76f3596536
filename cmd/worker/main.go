package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/clients"
	"github.com/fireflyiii-tools/allegro-sync/internal/application/reconcile"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/config"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/logging"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		dryRun     = flag.Bool("dry-run", true, "Preview matches without writing to the ledger")
		filterText = flag.String("filter", "", "Description filter (defaults to config value)")
		exactMatch = flag.Bool("exact", false, "Require exact description match instead of substring")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg := loadConfig(*configFile)

	loggingCfg := cfg.Observability.Logging
	if *verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "worker")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	cl, err := clients.NewClients(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize clients", "error", err)
		os.Exit(1)
	}

	orchestrator := reconcile.NewOrchestrator(cl.Allegro, cl.Firefly, store, reconcile.Settings{
		Tag:                  cfg.Reconcile.Tag,
		AmountTolerance:      cfg.Reconcile.AmountTolerance,
		SettlementWindowDays: cfg.Reconcile.SettlementWindowDays,
	}, logger)

	filter := *filterText
	if filter == "" {
		filter = cfg.Reconcile.DescriptionFilter
	}

	result, err := orchestrator.Run(context.Background(), reconcile.Options{
		DryRun:     *dryRun,
		FilterText: filter,
		ExactMatch: *exactMatch || cfg.Reconcile.ExactMatch,
		Verbose:    *verbose,
	})
	if err != nil {
		logger.Error("Reconciliation pass failed", "error", err)
		os.Exit(1)
	}

	for _, passErr := range result.Errors {
		logger.Warn("Transaction failed during pass", "error", passErr)
	}

	fmt.Printf("Pass complete: %d seen, %d matched, %d applied, %d no match, %d ambiguous, %d errors\n",
		result.TransactionsSeen,
		result.MatchedCount,
		result.AppliedCount,
		result.NoMatchCount,
		result.AmbiguousCount,
		result.ErrorCount,
	)

	if result.ErrorCount > 0 {
		os.Exit(1)
	}
}

func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			slog.Error("Failed to load config file", "file", configFile, "error", err)
			os.Exit(1)
		}
		return cfg
	}
	return config.LoadOrEnv()
}
