package commands

import (
	"context"
	"fmt"
	"os"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/ports"
)

// Seed is the content written by Init: {"settings": {...}, "concepts": [...]}
type Seed struct {
	Settings domain.Settings  `json:"settings"`
	Concepts []domain.Concept `json:"concepts"`
}

// LoadSeed reads a seed file. Missing settings fall back to the defaults.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}

	var seed Seed
	if err := domain.DecodeJSON(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed %s: %w", path, err)
	}
	if seed.Settings == nil {
		seed.Settings = domain.DefaultSettings()
	}
	return &seed, nil
}

// InitResult contains the result of initializing the database
type InitResult struct {
	Skipped  bool
	Concepts int
	Message  string
}

// InitCommand registers the Jade package and writes the seed content.
// A database that is already valid is left untouched.
type InitCommand struct {
	db       ports.ConceptDatabase
	SeedPath string
}

// NewInitCommand creates a new InitCommand. An empty seedPath initializes
// with default settings and no concepts.
func NewInitCommand(db ports.ConceptDatabase, seedPath string) *InitCommand {
	return &InitCommand{
		db:       db,
		SeedPath: seedPath,
	}
}

// Execute runs the init command
func (c *InitCommand) Execute(ctx context.Context) (*InitResult, error) {
	valid, err := c.db.IsValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check database: %w", err)
	}
	if valid {
		return &InitResult{Skipped: true, Message: "Database already initialized"}, nil
	}

	seed := &Seed{Settings: domain.DefaultSettings()}
	if c.SeedPath != "" {
		seed, err = LoadSeed(c.SeedPath)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]int, len(seed.Concepts))
	for i, concept := range seed.Concepts {
		if err := application.ValidateConcept(concept); err != nil {
			return nil, fmt.Errorf("seed concept %d: %w", i, err)
		}
		if first, ok := seen[concept.ID()]; ok {
			return nil, fmt.Errorf("seed concept %d: id %q already used by concept %d: %w", i, concept.ID(), first, application.ErrAlreadyExists)
		}
		seen[concept.ID()] = i
	}

	if err := c.db.Init(ctx, seed.Settings, seed.Concepts); err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	return &InitResult{
		Concepts: len(seed.Concepts),
		Message:  fmt.Sprintf("Initialized database with %d concepts", len(seed.Concepts)),
	}, nil
}
