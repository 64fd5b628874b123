package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jade/internal/application/commands"
	"jade/internal/domain"
)

var mergeSettings bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or write user settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the settings as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := commands.NewGetSettingsCommand(GetDB()).Execute(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(settings)
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save <json|@file|->",
	Short: "Save the settings",
	Long: `Save settings from a JSON object, replacing the stored settings.
With --merge the given keys are applied on top of the current settings.

Examples:
  jade-cli settings save '{"theme": "dark"}' --merge`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readJSONArg(args[0])
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		settings, err := domain.ParseSettings(data)
		if err != nil {
			return fmt.Errorf("invalid settings JSON: %w", err)
		}

		saved, err := commands.NewSaveSettingsCommand(GetDB(), settings, mergeSettings).Execute(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(saved)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSaveCmd)
	settingsSaveCmd.Flags().BoolVarP(&mergeSettings, "merge", "m", false, "merge into the current settings")
}
