package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jade/internal/application/commands"
)

var initCmd = &cobra.Command{
	Use:   "init [seed.json]",
	Short: "Initialize the database",
	Long: `Register the Jade package and write the initial settings and concepts.

The optional seed file has the form {"settings": {...}, "concepts": [...]}.
An already initialized database is left untouched.

Examples:
  jade-cli init
  jade-cli init seed.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seedPath := ""
		if len(args) == 1 {
			seedPath = args[0]
		}

		result, err := commands.NewInitCommand(GetDB(), seedPath).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
