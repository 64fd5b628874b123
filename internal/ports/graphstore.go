package ports

import (
	"context"
	"errors"

	"jade/internal/domain"
)

// Errors every GraphStore implementation reports through errors.Is
var (
	ErrUnknownSchema   = errors.New("unknown schema")
	ErrUniqueViolation = errors.New("unique constraint violated")
	ErrObjectNotFound  = errors.New("object not found")
	ErrUnknownField    = errors.New("field not declared by schema")
	ErrStoreClosed     = errors.New("store closed")
)

// EventHandler is called for every object change matching a subscription.
// Handlers run on the writer's goroutine and must not block.
type EventHandler func(event domain.ObjectEvent)

// GraphStore is the external graph object store the concept database is built on
type GraphStore interface {
	// Packages
	GetPackages(ctx context.Context, names []string) (map[string]domain.Package, error)
	AddPackage(ctx context.Context, pkg domain.Package) error

	// Objects
	AddObject(ctx context.Context, schemaID string, fields map[string]string) (string, error)
	AddObjects(ctx context.Context, schemaID string, batch []map[string]string) ([]string, error)
	UpdateObject(ctx context.Context, uid string, fields map[string]string) error
	GetObject(ctx context.Context, uid string) (*domain.Object, error)
	Query(ctx context.Context, q domain.Query) ([]domain.Object, error)

	// Subscriptions
	Subscribe(ctx context.Context, q domain.Query, handler EventHandler) (string, error)
	Unsubscribe(ctx context.Context, subscriptionID string) error

	Close() error
}
