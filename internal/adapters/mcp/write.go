package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

// RegisterWriteTools adds all concept-modifying tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, db ports.ConceptDatabase) {
	s.AddTool(createConceptTool(), createConceptHandler(db))
	s.AddTool(updateConceptTool(), updateConceptHandler(db))
	s.AddTool(saveSettingsTool(), saveSettingsHandler(db))
	s.AddTool(setVersionTool(), setVersionHandler(db))
}

// --- create_concept ---

func createConceptTool() mcp.Tool {
	return mcp.NewTool("create_concept",
		mcp.WithDescription("Create a concept. The concept is a JSON object with a string \"id\"; a missing \"relations\" field defaults to []."),
		mcp.WithString("concept",
			mcp.Description("Concept as a JSON object, e.g. {\"id\": \"c1\", \"title\": \"First\"}"),
			mcp.Required(),
		),
	)
}

func createConceptHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		concept, err := conceptArg(req)
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewCreateConceptCommand(db, concept).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- update_concept ---

func updateConceptTool() mcp.Tool {
	return mcp.NewTool("update_concept",
		mcp.WithDescription("Replace an existing concept. The stored concept with the same \"id\" is overwritten as a whole."),
		mcp.WithString("concept",
			mcp.Description("Full concept as a JSON object"),
			mcp.Required(),
		),
	)
}

func updateConceptHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		concept, err := conceptArg(req)
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewUpdateConceptCommand(db, concept).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- save_settings ---

func saveSettingsTool() mcp.Tool {
	return mcp.NewTool("save_settings",
		mcp.WithDescription("Save the user settings. Replaces them unless merge is set."),
		mcp.WithString("settings",
			mcp.Description("Settings as a JSON object, e.g. {\"theme\": \"dark\"}"),
			mcp.Required(),
		),
		mcp.WithBoolean("merge",
			mcp.Description("Apply the given keys on top of the current settings"),
		),
	)
}

func saveSettingsHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := req.GetString("settings", "")
		if raw == "" {
			return toolError(fmt.Errorf("settings is required"))
		}
		settings, err := domain.ParseSettings([]byte(raw))
		if err != nil {
			return toolError(fmt.Errorf("invalid settings JSON: %w", err))
		}

		saved, err := commands.NewSaveSettingsCommand(db, settings, req.GetBool("merge", false)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(saved)
	}
}

// --- set_version ---

func setVersionTool() mcp.Tool {
	return mcp.NewTool("set_version",
		mcp.WithDescription("Set the data version."),
		mcp.WithNumber("version",
			mcp.Description("Non-negative version number"),
			mcp.Required(),
		),
	)
}

func setVersionHandler(db ports.ConceptDatabase) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		version, err := req.RequireInt("version")
		if err != nil {
			return toolError(err)
		}

		msg, err := commands.NewSetVersionCommand(db, version).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(msg), nil
	}
}

func conceptArg(req mcp.CallToolRequest) (domain.Concept, error) {
	raw := req.GetString("concept", "")
	if raw == "" {
		return nil, fmt.Errorf("concept is required")
	}
	concept, err := domain.ParseConcept([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid concept JSON: %w", err)
	}
	return concept, nil
}
