package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jade/internal/application/commands"
)

var getCmd = &cobra.Command{
	Use:   "get <concept-id>",
	Short: "Print a concept as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, err := commands.NewGetConceptCommand(GetDB(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(concept)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all concepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		concepts, err := commands.NewListConceptsCommand(GetDB()).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(concepts)
		}
		for _, c := range concepts {
			fmt.Println(conceptLine(c))
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <json|@file|->",
	Short: "Create a concept",
	Long: `Create a concept from a JSON object. The object must have a string "id".
A missing "relations" field defaults to an empty list.

Examples:
  jade-cli create '{"id": "c1", "title": "First"}'
  jade-cli create @concept.json
  cat concept.json | jade-cli create -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, err := readConcept(args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewCreateConceptCommand(GetDB(), concept).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <json|@file|->",
	Short: "Replace an existing concept",
	Long: `Replace the stored concept whose "id" matches the given JSON object.

Examples:
  jade-cli update '{"id": "c1", "title": "Renamed"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, err := readConcept(args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewUpdateConceptCommand(GetDB(), concept).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search concepts",
	Long: `Search concepts by id and text fields.

Results are ranked by relevance using fuzzy matching.

Examples:
  jade-cli search theatre`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := commands.NewSearchCommand(GetDB(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%s\t%s\n", r.Concept.ID(), r.MatchedText)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(searchCmd)
}
