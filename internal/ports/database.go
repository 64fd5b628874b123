package ports

import (
	"context"
	"time"

	"jade/internal/domain"
)

// WildcardChannel subscribes to changes of every concept
const WildcardChannel = "*"

// ConceptListener receives a concept after it was created or updated
type ConceptListener func(concept domain.Concept)

// ConceptDatabase is the storage interface the Jade platform talks to
type ConceptDatabase interface {
	// Lifecycle
	IsValid(ctx context.Context) (bool, error)
	Init(ctx context.Context, settings domain.Settings, concepts []domain.Concept) error

	// Concepts
	GetConcept(ctx context.Context, id string) (domain.Concept, error)
	GetAllConcepts(ctx context.Context) ([]domain.Concept, error)
	UpdateConcept(ctx context.Context, concept domain.Concept) error
	CreateConcept(ctx context.Context, concept domain.Concept) error

	// Settings
	GetSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error

	// Versioning
	GetVersion(ctx context.Context) (int, error)
	SetVersion(ctx context.Context, version int) error
	GetLastUpdatedTime(ctx context.Context) (time.Time, error)

	// Subscriptions. channel is a concept ID or WildcardChannel.
	SubscribeConcept(ctx context.Context, channel string, listener ConceptListener) (string, error)
	UnsubscribeConcept(ctx context.Context, channel, subscriptionID string) error
}
