package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"jade/internal/adapters/editor"
	"jade/internal/adapters/storefactory"
	"jade/internal/adapters/tui"
	"jade/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	backendFlag := flag.String("backend", "", "store backend: sqlite, badger or remote (overrides config)")
	flag.Parse()

	if err := run(*configFlag, *backendFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, backend string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Backend = backend
	}

	// The alternate screen owns stdout and stderr, so logs go to a file
	logOut, closeLog := openLogFile(cfg)
	defer closeLog()
	logger := cfg.Logger(logOut)
	slog.SetDefault(logger)

	ctx := context.Background()
	db, store, err := storefactory.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	app := tui.NewApp(db, editor.NewOpener(), logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("failed to unsubscribe", "error", err)
		}
	}()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func openLogFile(cfg *config.Config) (io.Writer, func()) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "jade.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}
