package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/clients"
	"github.com/fireflyiii-tools/allegro-sync/internal/api"
	"github.com/fireflyiii-tools/allegro-sync/internal/application/reconcile"
	"github.com/fireflyiii-tools/allegro-sync/internal/application/service"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/config"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/logging"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path")
	flag.Parse()

	cfg := loadConfig(*configFile)
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	// Pass jobs are optional: without marketplace and ledger credentials
	// the server still serves the audit trail read-only.
	passService := buildPassService(cfg, store, logger)

	server := api.NewServer(api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, store, passService, logger)

	if passService != nil {
		passService.StartBackgroundCleanup(5 * time.Minute)
		defer passService.StopBackgroundCleanup()
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

// buildPassService wires the pass runner factory when the external
// service credentials are configured. Returns nil otherwise.
func buildPassService(cfg *config.Config, store storage.Repository, logger *slog.Logger) *service.PassService {
	if cfg.Allegro.SessionCookie == "" || cfg.Firefly.Token == "" {
		logger.Warn("Pass endpoints disabled: marketplace or ledger credentials missing")
		return nil
	}

	factory := func(verbose bool) (service.PassRunner, error) {
		loggingCfg := cfg.Observability.Logging
		if verbose {
			loggingCfg.Level = "debug"
		}
		passLogger := logging.NewLoggerWithSystem(loggingCfg, "pass")

		cl, err := clients.NewClients(cfg, passLogger)
		if err != nil {
			return nil, err
		}

		return reconcile.NewOrchestrator(cl.Allegro, cl.Firefly, store, reconcile.Settings{
			Tag:                  cfg.Reconcile.Tag,
			AmountTolerance:      cfg.Reconcile.AmountTolerance,
			SettlementWindowDays: cfg.Reconcile.SettlementWindowDays,
		}, passLogger), nil
	}

	return service.NewPassService(factory, logger)
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
