package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/boardstore/backend/internal/router"
	"github.com/itchan-dev/boardstore/backend/internal/setup"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := setup.SetupDependencies(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Storage.Cleanup(); err != nil {
			logger.Log.Error("failed to close storage", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(deps),
		ReadHeaderTimeout: cfg.Public.ReadTimeout,
		ReadTimeout:       cfg.Public.ReadTimeout,
		WriteTimeout:      cfg.Public.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", server.Addr, "storage", cfg.Public.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Log.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("shutdown error", "error", err)
	}
	logger.Log.Info("server stopped")
}
