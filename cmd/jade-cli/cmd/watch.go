package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

var watchCmd = &cobra.Command{
	Use:   "watch [concept-id|*]",
	Short: "Print concepts as they change",
	Long: `Print each concept as JSON, one per line, after it is created or updated.
Without an argument every concept is watched. Stop with Ctrl-C.

Examples:
  jade-cli watch
  jade-cli watch c1`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel := ports.WildcardChannel
		if len(args) == 1 {
			channel = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		enc := json.NewEncoder(os.Stdout)
		listener := func(c domain.Concept) {
			if err := enc.Encode(c); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}

		fmt.Fprintf(os.Stderr, "Watching %s\n", channel)
		return commands.NewWatchCommand(GetDB(), channel, listener).Execute(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
