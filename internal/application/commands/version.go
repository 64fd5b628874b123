package commands

import (
	"context"
	"fmt"
	"time"

	"jade/internal/application"
	"jade/internal/ports"
)

// VersionResult reports the data version and the latest concept change
type VersionResult struct {
	Version     int
	LastUpdated time.Time
}

// GetVersionCommand reads the data version
type GetVersionCommand struct {
	db ports.ConceptDatabase
}

// NewGetVersionCommand creates a new GetVersionCommand
func NewGetVersionCommand(db ports.ConceptDatabase) *GetVersionCommand {
	return &GetVersionCommand{db: db}
}

// Execute runs the get version command
func (c *GetVersionCommand) Execute(ctx context.Context) (*VersionResult, error) {
	version, err := c.db.GetVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}

	last, err := c.db.GetLastUpdatedTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last update: %w", err)
	}

	return &VersionResult{Version: version, LastUpdated: last}, nil
}

// SetVersionCommand writes the data version
type SetVersionCommand struct {
	db      ports.ConceptDatabase
	Version int
}

// NewSetVersionCommand creates a new SetVersionCommand
func NewSetVersionCommand(db ports.ConceptDatabase, version int) *SetVersionCommand {
	return &SetVersionCommand{db: db, Version: version}
}

// Validate checks if the version is acceptable
func (c *SetVersionCommand) Validate() error {
	return application.ValidateVersion(c.Version)
}

// Execute runs the set version command
func (c *SetVersionCommand) Execute(ctx context.Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if err := c.db.SetVersion(ctx, c.Version); err != nil {
		return "", fmt.Errorf("failed to set version: %w", err)
	}
	return fmt.Sprintf("Set version to %d", c.Version), nil
}
