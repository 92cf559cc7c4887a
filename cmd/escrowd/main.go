package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"escrowd/config"
	"escrowd/escrow"
	"escrowd/events"
	"escrowd/observability/logging"
	"escrowd/observability/metrics"
	"escrowd/rpc"
	"escrowd/state"
	"escrowd/storage"
)

func main() {
	configPath := flag.String("config", "escrowd.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", *configPath), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Setup(cfg.ServiceName, cfg.Environment, cfg.LogFile)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "orders"))
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	recorder := events.NewRecorder()
	engine := escrow.NewEngine()
	engine.SetState(state.NewManager(db))
	engine.SetSettlement(state.NewPayoutJournal(db))
	engine.SetEmitter(events.NewLogEmitter(logger, recorder))

	srv := rpc.NewServer(engine, cfg.AuthToken(), metrics.NewEscrow(nil), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.RPCAddress) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.String("error", err.Error()))
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}
