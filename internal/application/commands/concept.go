package commands

import (
	"context"
	"fmt"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/ports"
)

// GetConceptCommand fetches one concept by id
type GetConceptCommand struct {
	db ports.ConceptDatabase
	ID string
}

// NewGetConceptCommand creates a new GetConceptCommand
func NewGetConceptCommand(db ports.ConceptDatabase, id string) *GetConceptCommand {
	return &GetConceptCommand{db: db, ID: id}
}

// Validate checks if the get operation is valid
func (c *GetConceptCommand) Validate() error {
	return application.ValidateRequired("conceptID", c.ID)
}

// Execute runs the get concept command
func (c *GetConceptCommand) Execute(ctx context.Context) (domain.Concept, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.db.GetConcept(ctx, c.ID)
}

// ListConceptsCommand returns every concept
type ListConceptsCommand struct {
	db ports.ConceptDatabase
}

// NewListConceptsCommand creates a new ListConceptsCommand
func NewListConceptsCommand(db ports.ConceptDatabase) *ListConceptsCommand {
	return &ListConceptsCommand{db: db}
}

// Execute runs the list concepts command
func (c *ListConceptsCommand) Execute(ctx context.Context) ([]domain.Concept, error) {
	concepts, err := c.db.GetAllConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	return concepts, nil
}

// ConceptResult contains the result of writing a concept
type ConceptResult struct {
	ID      string
	Message string
}

// CreateConceptCommand stores a new concept
type CreateConceptCommand struct {
	db      ports.ConceptDatabase
	Concept domain.Concept
}

// NewCreateConceptCommand creates a new CreateConceptCommand
func NewCreateConceptCommand(db ports.ConceptDatabase, concept domain.Concept) *CreateConceptCommand {
	return &CreateConceptCommand{db: db, Concept: concept}
}

// Validate checks if the create operation is valid
func (c *CreateConceptCommand) Validate() error {
	return application.ValidateConcept(c.Concept)
}

// Execute runs the create concept command
func (c *CreateConceptCommand) Execute(ctx context.Context) (*ConceptResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.CreateConcept(ctx, c.Concept); err != nil {
		return nil, fmt.Errorf("failed to create concept: %w", err)
	}

	return &ConceptResult{
		ID:      c.Concept.ID(),
		Message: fmt.Sprintf("Created concept: %s", c.Concept.ID()),
	}, nil
}

// UpdateConceptCommand replaces an existing concept
type UpdateConceptCommand struct {
	db      ports.ConceptDatabase
	Concept domain.Concept
}

// NewUpdateConceptCommand creates a new UpdateConceptCommand
func NewUpdateConceptCommand(db ports.ConceptDatabase, concept domain.Concept) *UpdateConceptCommand {
	return &UpdateConceptCommand{db: db, Concept: concept}
}

// Validate checks if the update operation is valid
func (c *UpdateConceptCommand) Validate() error {
	return application.ValidateConcept(c.Concept)
}

// Execute runs the update concept command
func (c *UpdateConceptCommand) Execute(ctx context.Context) (*ConceptResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.db.UpdateConcept(ctx, c.Concept); err != nil {
		return nil, fmt.Errorf("failed to update concept: %w", err)
	}

	return &ConceptResult{
		ID:      c.Concept.ID(),
		Message: fmt.Sprintf("Updated concept: %s", c.Concept.ID()),
	}, nil
}
