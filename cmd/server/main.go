package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitpay/splitpay/internal/api"
	"github.com/splitpay/splitpay/internal/config"
	"github.com/splitpay/splitpay/internal/middleware"
	"github.com/splitpay/splitpay/internal/service"
	"github.com/splitpay/splitpay/internal/storage"
	"github.com/splitpay/splitpay/internal/storage/memory"
	"github.com/splitpay/splitpay/internal/storage/sqlite"
	"github.com/splitpay/splitpay/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.StoreBackend)

	splits := service.NewSplitService(store)

	sweeper := service.NewSweeper(store, cfg.SweepInterval, cfg.SweepMaxAge)
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	router := api.NewServer(splits, cfg.DevMode).Router()
	router.Use(middleware.Metrics)

	handler := middleware.Logging(middleware.CORS(router))

	// h2c allows HTTP/2 without TLS for clients behind a terminating
	// proxy; plain HTTP/1.1 keeps working.
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	go func() {
		slog.Info("Split server starting", "address", cfg.Addr, "dev_mode", cfg.DevMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StoreBackend == config.BackendSQLite {
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return memory.New(), nil
}
