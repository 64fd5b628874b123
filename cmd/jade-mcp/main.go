package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "jade/internal/adapters/mcp"
	"jade/internal/adapters/storefactory"
	"jade/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	readOnly := flag.Bool("read-only", false, "register only the read tools")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("jade-mcp: %v", err)
	}

	// stdout carries the MCP protocol
	logger := cfg.Logger(os.Stderr)

	db, store, err := storefactory.OpenDatabase(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("jade-mcp: %v", err)
	}
	defer store.Close()

	mcpServer := server.NewMCPServer(
		"jade-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, db)
	if !*readOnly {
		mcpadapter.RegisterWriteTools(mcpServer, db)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server stopped", "error", err)
		store.Close()
		os.Exit(1)
	}
}
