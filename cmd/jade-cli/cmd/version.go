package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jade/internal/application/commands"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Read or write the data version",
}

var versionGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the data version and the last concept update",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewGetVersionCommand(GetDB()).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("version: %d\n", result.Version)
		if result.LastUpdated.IsZero() {
			fmt.Println("last updated: never")
		} else {
			fmt.Printf("last updated: %s\n", result.LastUpdated.Format(time.RFC3339))
		}
		return nil
	},
}

var versionSetCmd = &cobra.Command{
	Use:   "set <version>",
	Short: "Set the data version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}

		msg, err := commands.NewSetVersionCommand(GetDB(), version).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionGetCmd)
	versionCmd.AddCommand(versionSetCmd)
}
