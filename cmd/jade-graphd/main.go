package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"jade/internal/adapters/graphserver"
	"jade/internal/adapters/storefactory"
	"jade/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	listenFlag := flag.String("listen", "", "listen address (overrides config)")
	backendFlag := flag.String("backend", "", "embedded backend to serve: sqlite or badger (overrides config)")
	flag.Parse()

	if err := run(*configFlag, *listenFlag, *backendFlag); err != nil {
		fmt.Fprintf(os.Stderr, "jade-graphd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, listen, backend string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if backend != "" {
		cfg.Server.Backend = backend
	}
	if cfg.Server.Backend == config.BackendRemote {
		return errors.New("the graph server needs an embedded backend (sqlite or badger)")
	}

	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storefactory.OpenBackend(ctx, cfg, cfg.Server.Backend, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           graphserver.New(store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("graph server listening", "addr", cfg.Server.Listen, "backend", cfg.Server.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown does not wait for hijacked websocket connections
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
