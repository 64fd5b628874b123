package commands

import (
	"context"
	"fmt"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/ports"
)

// GetSettingsCommand reads the user settings
type GetSettingsCommand struct {
	db ports.ConceptDatabase
}

// NewGetSettingsCommand creates a new GetSettingsCommand
func NewGetSettingsCommand(db ports.ConceptDatabase) *GetSettingsCommand {
	return &GetSettingsCommand{db: db}
}

// Execute runs the get settings command
func (c *GetSettingsCommand) Execute(ctx context.Context) (domain.Settings, error) {
	settings, err := c.db.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

// SaveSettingsCommand writes the user settings. With Merge set, the given
// keys are applied on top of the current settings instead of replacing them.
type SaveSettingsCommand struct {
	db       ports.ConceptDatabase
	Settings domain.Settings
	Merge    bool
}

// NewSaveSettingsCommand creates a new SaveSettingsCommand
func NewSaveSettingsCommand(db ports.ConceptDatabase, settings domain.Settings, merge bool) *SaveSettingsCommand {
	return &SaveSettingsCommand{db: db, Settings: settings, Merge: merge}
}

// Validate checks if the save operation is valid
func (c *SaveSettingsCommand) Validate() error {
	if c.Settings == nil {
		return &application.ValidationError{
			Field:   "settings",
			Message: "settings are required",
		}
	}
	return nil
}

// Execute runs the save settings command and returns the settings now stored
func (c *SaveSettingsCommand) Execute(ctx context.Context) (domain.Settings, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	settings := c.Settings
	if c.Merge {
		current, err := c.db.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		settings = current.Clone()
		for k, v := range c.Settings {
			settings[k] = v
		}
	}

	if err := c.db.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
