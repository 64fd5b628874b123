// Package storefactory opens the graph store selected by configuration.
package storefactory

import (
	"context"
	"fmt"
	"log/slog"

	"jade/internal/adapters/badger"
	"jade/internal/adapters/graphdb"
	"jade/internal/adapters/remote"
	"jade/internal/adapters/sqlite"
	"jade/internal/config"
	"jade/internal/ports"
)

// Open opens the store for cfg.Backend
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.GraphStore, error) {
	return OpenBackend(ctx, cfg, cfg.Backend, logger)
}

// OpenBackend opens the named backend using the paths and options in cfg
func OpenBackend(ctx context.Context, cfg *config.Config, backend string, logger *slog.Logger) (ports.GraphStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("backend", backend)

	var (
		store ports.GraphStore
		err   error
	)

	switch backend {
	case config.BackendSQLite:
		store, err = openSQLite(cfg, logger)
	case config.BackendBadger:
		store, err = openBadger(cfg, logger)
	case config.BackendRemote:
		store, err = dialRemote(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("store opened")
	return store, nil
}

func openSQLite(cfg *config.Config, logger *slog.Logger) (ports.GraphStore, error) {
	s, err := sqlite.Open(cfg.SQLite.Path, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openBadger(cfg *config.Config, logger *slog.Logger) (ports.GraphStore, error) {
	bcfg := badger.DefaultConfig(cfg.Badger.Path)
	bcfg.SyncWrites = cfg.Badger.SyncWrites
	bcfg.GCInterval = cfg.Badger.GCInterval
	bcfg.Logger = logger

	s, err := badger.Open(bcfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func dialRemote(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.GraphStore, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Remote.DialTimeout)
	defer cancel()

	c, err := remote.Dial(dialCtx, cfg.Remote.Server, cfg.BrowserID, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OpenDatabase opens the configured store and wraps it in a concept database.
// The caller closes the returned store.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*graphdb.Database, ports.GraphStore, error) {
	store, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	return graphdb.New(store, logger), store, nil
}
