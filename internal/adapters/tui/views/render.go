package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"jade/internal/adapters/tui/styles"
	"jade/internal/domain"
)

// RenderKeyHelp formats a key binding as help text (key + description)
func RenderKeyHelp(b key.Binding) string {
	help := b.Help()
	return fmt.Sprintf("%s %s",
		styles.HelpKey.Render(help.Key),
		styles.HelpDesc.Render(help.Desc),
	)
}

// RenderHelpLine renders multiple key bindings as a help line separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, RenderKeyHelp(b))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage renders a message with appropriate styling based on isError
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

// ConceptTitle returns the first human-readable field of a concept, or ""
func ConceptTitle(c domain.Concept) string {
	for _, field := range []string{"title", "name", "label", "text"} {
		if s, ok := c[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ConceptJSON returns the indented JSON of a concept
func ConceptJSON(c domain.Concept) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// RenderConcept renders the top-level fields of a concept, one per line,
// keys sorted with "id" first. Nested values are shown as compact JSON.
func RenderConcept(c domain.Concept, width int) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	keys = append([]string{"id"}, keys...)

	var b strings.Builder
	for _, k := range keys {
		v, ok := c[k]
		if !ok {
			continue
		}
		line := styles.JSONKey.Render(k+":") + " " + renderValue(v)
		if width > 0 {
			line = truncate(line, width)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderValue(v any) string {
	switch v := v.(type) {
	case nil:
		return styles.JSONLiteral.Render("null")
	case string:
		return styles.JSONString.Render(fmt.Sprintf("%q", v))
	case json.Number, float64, int, bool:
		return styles.JSONLiteral.Render(fmt.Sprint(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return styles.MutedText.Render(string(data))
	}
}

// truncate cuts s to width display cells using lipgloss' measurement
func truncate(s string, width int) string {
	return styles.Truncate.MaxWidth(width).Render(s)
}
