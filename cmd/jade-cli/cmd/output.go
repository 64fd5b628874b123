package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"jade/internal/domain"
)

// conceptTitleFields are shown next to the id in text output, first match wins
var conceptTitleFields = []string{"title", "name", "label", "text"}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func conceptLine(c domain.Concept) string {
	for _, field := range conceptTitleFields {
		if s, ok := c[field].(string); ok && s != "" {
			return fmt.Sprintf("%s %s", c.ID(), s)
		}
	}
	return c.ID()
}

// readJSONArg parses a JSON object given inline, as @file, or as "-" for stdin
func readJSONArg(arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(os.Stdin)
	case len(arg) > 1 && arg[0] == '@':
		return os.ReadFile(arg[1:])
	default:
		return []byte(arg), nil
	}
}

func readConcept(arg string) (domain.Concept, error) {
	data, err := readJSONArg(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read concept: %w", err)
	}
	c, err := domain.ParseConcept(data)
	if err != nil {
		return nil, fmt.Errorf("invalid concept JSON: %w", err)
	}
	return c, nil
}
