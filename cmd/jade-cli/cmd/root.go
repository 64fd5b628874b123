package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"jade/internal/adapters/storefactory"
	"jade/internal/config"
	"jade/internal/ports"
)

var (
	configPath string
	backend    string
	serverURL  string
	jsonOutput bool

	db    ports.ConceptDatabase
	store ports.GraphStore
)

var rootCmd = &cobra.Command{
	Use:   "jade-cli",
	Short: "CLI for the Jade concept database",
	Long: `jade-cli reads and writes Jade concepts, settings and the data version
stored in a graph object store.

The store is an embedded SQLite or Badger database, or a remote graph
server reached over a websocket (see jade-graphd).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backend != "" {
			cfg.Backend = backend
		}
		if serverURL != "" {
			cfg.Remote.Server = serverURL
		}

		logger := cfg.Logger(os.Stderr)
		slog.SetDefault(logger)

		database, s, err := storefactory.OpenDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		db, store = database, s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store == nil {
			return nil
		}
		return store.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "store backend: sqlite, badger or remote (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "graph server URL for the remote backend (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
}

// GetDB returns the initialized concept database
func GetDB() ports.ConceptDatabase {
	return db
}
