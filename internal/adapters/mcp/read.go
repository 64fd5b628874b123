package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

// RegisterReadTools adds all read-only concept tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, db ports.ConceptDatabase) {
	s.AddTool(getConceptTool(), getConceptHandler(db))
	s.AddTool(listConceptsTool(), listConceptsHandler(db))
	s.AddTool(searchConceptsTool(), searchConceptsHandler(db))
	s.AddTool(getSettingsTool(), getSettingsHandler(db))
	s.AddTool(getVersionTool(), getVersionHandler(db))
}

// --- get_concept ---

func getConceptTool() mcp.Tool {
	return mcp.NewTool("get_concept",
		mcp.WithDescription("Get a concept by ID. Returns the concept as JSON."),
		mcp.WithString("id",
			mcp.Description("Concept ID"),
			mcp.Required(),
		),
	)
}

func getConceptHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")

		concept, err := commands.NewGetConceptCommand(db, id).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(concept)
	}
}

// --- list_concepts ---

func listConceptsTool() mcp.Tool {
	return mcp.NewTool("list_concepts",
		mcp.WithDescription("List all concepts. By default one line per concept with its ID and title; set full to get the JSON array."),
		mcp.WithBoolean("full",
			mcp.Description("Return every concept as JSON instead of a summary"),
		),
	)
}

func listConceptsHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		concepts, err := commands.NewListConceptsCommand(db).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if req.GetBool("full", false) {
			return jsonResult(concepts)
		}
		return formatConcepts(concepts)
	}
}

// --- search_concepts ---

func searchConceptsTool() mcp.Tool {
	return mcp.NewTool("search_concepts",
		mcp.WithDescription("Fuzzy search concepts by ID and text fields. Returns matching IDs with the text that matched, best first."),
		mcp.WithString("query",
			mcp.Description("Search query (at least 2 characters)"),
			mcp.Required(),
		),
	)
}

func searchConceptsHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(db, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s\n", r.Concept.ID(), r.MatchedText)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- get_settings ---

func getSettingsTool() mcp.Tool {
	return mcp.NewTool("get_settings",
		mcp.WithDescription("Get the user settings as JSON."),
	)
}

func getSettingsHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		settings, err := commands.NewGetSettingsCommand(db).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(settings)
	}
}

// --- get_version ---

func getVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the data version and the time of the last concept update."),
	)
}

func getVersionHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewGetVersionCommand(db).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		last := "never"
		if !result.LastUpdated.IsZero() {
			last = result.LastUpdated.Format(time.RFC3339)
		}
		return mcp.NewToolResultText(fmt.Sprintf("version: %d\nlast updated: %s", result.Version, last)), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func formatConcepts(concepts []domain.Concept) (*mcp.CallToolResult, error) {
	if len(concepts) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, c := range concepts {
		sb.WriteString(formatConcept(c))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatConcept(c domain.Concept) string {
	for _, field := range []string{"title", "name", "label", "text"} {
		if s, ok := c[field].(string); ok && s != "" {
			return fmt.Sprintf("%s  %s", c.ID(), s)
		}
	}
	return c.ID()
}
