// Package graphdb implements ports.ConceptDatabase on top of a ports.GraphStore.
//
// Concepts are stored as jade_concept objects {id, json}, where json is the
// whole concept serialized to text. Settings live in a single jade_settings
// object and the data version in a jade_meta object.
package graphdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/observability"
	"jade/internal/ports"
)

// Database adapts a graph store to the Jade concept database interface
type Database struct {
	store  ports.GraphStore
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]string // subscription ID -> channel
}

// Ensure Database implements ConceptDatabase
var _ ports.ConceptDatabase = (*Database)(nil)

// New creates a concept database over store. A nil logger falls back to slog.Default().
func New(store ports.GraphStore, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}
	return &Database{
		store:  store,
		logger: logger,
		subs:   make(map[string]string),
	}
}

func (d *Database) observe(op string, err *error) {
	observability.ConceptOperationsTotal.WithLabelValues(op, observability.Outcome(*err)).Inc()
}

// IsValid reports whether the Jade package has been registered
func (d *Database) IsValid(ctx context.Context) (valid bool, err error) {
	defer d.observe("is_valid", &err)

	pkgs, err := d.store.GetPackages(ctx, []string{PackageName})
	if err != nil {
		return false, fmt.Errorf("failed to read packages: %w", err)
	}
	_, ok := pkgs[PackageName]
	return ok, nil
}

// Init registers the package and writes the initial settings and concepts
func (d *Database) Init(ctx context.Context, settings domain.Settings, concepts []domain.Concept) (err error) {
	defer d.observe("init", &err)
	d.logger.Debug("init", "concepts", len(concepts))

	// Everything is checked before the package is registered, so a rejected
	// seed leaves the store uninitialized.
	batch := make([]map[string]string, 0, len(concepts))
	seen := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		if err := application.ValidateConcept(c); err != nil {
			return err
		}
		if seen[c.ID()] {
			return &application.ConceptError{ID: c.ID(), Err: fmt.Errorf("%w: id appears twice in the seed", application.ErrAlreadyExists)}
		}
		seen[c.ID()] = true
		dry, err := domain.Dry(c.WithDefaultRelations())
		if err != nil {
			return &application.ConceptError{ID: c.ID(), Err: err}
		}
		batch = append(batch, dryFields(dry))
	}

	if err := d.store.AddPackage(ctx, Package()); err != nil {
		return fmt.Errorf("failed to add package: %w", err)
	}

	if settings == nil {
		settings = domain.DefaultSettings()
	}
	if err := d.saveSettings(ctx, settings); err != nil {
		return err
	}

	if len(batch) > 0 {
		if _, err := d.store.AddObjects(ctx, ConceptSchemaID, batch); err != nil {
			return fmt.Errorf("failed to add concepts: %w", mapStoreError(err))
		}
	}

	return d.setVersion(ctx, CurrentVersion)
}

// GetConcept returns the concept with the given id
func (d *Database) GetConcept(ctx context.Context, id string) (concept domain.Concept, err error) {
	defer d.observe("get", &err)
	d.logger.Debug("get concept", "id", id)

	if err := application.ValidateRequired("conceptID", id); err != nil {
		return nil, err
	}

	obj, err := d.findConcept(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.hydrate(*obj)
}

// GetAllConcepts returns every stored concept in creation order.
// Concepts whose stored JSON cannot be parsed are logged and skipped.
func (d *Database) GetAllConcepts(ctx context.Context) (concepts []domain.Concept, err error) {
	defer d.observe("get_all", &err)

	objs, err := d.store.Query(ctx, domain.Query{Schema: ConceptSchemaID})
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", mapStoreError(err))
	}

	concepts = make([]domain.Concept, 0, len(objs))
	for _, obj := range objs {
		c, err := d.hydrate(obj)
		if err != nil {
			continue
		}
		concepts = append(concepts, c)
	}
	return concepts, nil
}

// UpdateConcept replaces the stored JSON of an existing concept
func (d *Database) UpdateConcept(ctx context.Context, concept domain.Concept) (err error) {
	defer d.observe("update", &err)

	if err := application.ValidateConcept(concept); err != nil {
		return err
	}
	d.logger.Debug("update concept", "id", concept.ID())

	obj, err := d.findConcept(ctx, concept.ID())
	if err != nil {
		return err
	}

	dry, err := domain.Dry(concept)
	if err != nil {
		return &application.ConceptError{ID: concept.ID(), Err: err}
	}

	if err := d.store.UpdateObject(ctx, obj.UID, map[string]string{fieldJSON: dry.JSON}); err != nil {
		return &application.ConceptError{ID: concept.ID(), Err: mapStoreError(err)}
	}
	return nil
}

// CreateConcept stores a new concept, defaulting its relations to an empty list
func (d *Database) CreateConcept(ctx context.Context, concept domain.Concept) (err error) {
	defer d.observe("create", &err)

	if err := application.ValidateConcept(concept); err != nil {
		return err
	}
	d.logger.Debug("create concept", "id", concept.ID())

	dry, err := domain.Dry(concept.WithDefaultRelations())
	if err != nil {
		return &application.ConceptError{ID: concept.ID(), Err: err}
	}

	if _, err := d.store.AddObject(ctx, ConceptSchemaID, dryFields(dry)); err != nil {
		return &application.ConceptError{ID: concept.ID(), Err: mapStoreError(err)}
	}
	return nil
}

// GetSettings returns the saved settings, or the defaults when none were saved
func (d *Database) GetSettings(ctx context.Context) (settings domain.Settings, err error) {
	defer d.observe("get_settings", &err)

	obj, err := d.findSettings(ctx)
	if errors.Is(err, application.ErrNotInitialized) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return domain.DefaultSettings(), nil
	}

	settings, err = domain.ParseSettings([]byte(obj.Fields[fieldJSON]))
	if err != nil {
		d.logger.Warn("stored settings are unreadable, using defaults", "uid", obj.UID, "error", err)
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings replaces the stored settings
func (d *Database) SaveSettings(ctx context.Context, settings domain.Settings) (err error) {
	defer d.observe("save_settings", &err)

	if settings == nil {
		return &application.ValidationError{Field: "settings", Message: "settings are required"}
	}
	return d.saveSettings(ctx, settings)
}

func (d *Database) saveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fields := map[string]string{fieldJSON: string(data)}

	obj, err := d.findSettings(ctx)
	if err != nil {
		return err
	}
	if obj != nil {
		if err := d.store.UpdateObject(ctx, obj.UID, fields); err != nil {
			return fmt.Errorf("failed to update settings: %w", mapStoreError(err))
		}
		return nil
	}

	if _, err := d.store.AddObject(ctx, SettingsSchemaID, fields); err != nil {
		return fmt.Errorf("failed to add settings: %w", mapStoreError(err))
	}
	return nil
}

// GetVersion returns the stored data version, or CurrentVersion when unset
func (d *Database) GetVersion(ctx context.Context) (version int, err error) {
	defer d.observe("get_version", &err)

	obj, err := d.findMeta(ctx, versionKey)
	if errors.Is(err, application.ErrNotInitialized) {
		return CurrentVersion, nil
	}
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return CurrentVersion, nil
	}

	version, err = strconv.Atoi(obj.Fields[fieldValue])
	if err != nil {
		return 0, fmt.Errorf("stored version %q: %w", obj.Fields[fieldValue], err)
	}
	return version, nil
}

// SetVersion stores the data version
func (d *Database) SetVersion(ctx context.Context, version int) (err error) {
	defer d.observe("set_version", &err)

	if err := application.ValidateVersion(version); err != nil {
		return err
	}
	return d.setVersion(ctx, version)
}

func (d *Database) setVersion(ctx context.Context, version int) error {
	value := strconv.Itoa(version)

	obj, err := d.findMeta(ctx, versionKey)
	if err != nil {
		return err
	}
	if obj != nil {
		if err := d.store.UpdateObject(ctx, obj.UID, map[string]string{fieldValue: value}); err != nil {
			return fmt.Errorf("failed to update version: %w", mapStoreError(err))
		}
		return nil
	}

	_, err = d.store.AddObject(ctx, MetaSchemaID, map[string]string{fieldKey: versionKey, fieldValue: value})
	if err != nil {
		return fmt.Errorf("failed to add version: %w", mapStoreError(err))
	}
	return nil
}

// GetLastUpdatedTime returns the latest change to any concept, or the zero
// time when there are none or the store is not initialized.
func (d *Database) GetLastUpdatedTime(ctx context.Context) (last time.Time, err error) {
	defer d.observe("last_updated", &err)

	objs, err := d.store.Query(ctx, domain.Query{Schema: ConceptSchemaID})
	if errors.Is(err, ports.ErrUnknownSchema) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query concepts: %w", mapStoreError(err))
	}
	for _, obj := range objs {
		if obj.UpdatedAt.After(last) {
			last = obj.UpdatedAt
		}
	}
	return last, nil
}

func (d *Database) findConcept(ctx context.Context, id string) (*domain.Object, error) {
	objs, err := d.store.Query(ctx, domain.Query{Schema: ConceptSchemaID, Field: fieldID, Value: id, Limit: 1})
	if err != nil {
		return nil, &application.ConceptError{ID: id, Err: mapStoreError(err)}
	}
	if len(objs) == 0 {
		return nil, &application.ConceptError{ID: id, Err: application.ErrNotFound}
	}
	return &objs[0], nil
}

// findSettings returns the settings object, or nil when none was saved
func (d *Database) findSettings(ctx context.Context) (*domain.Object, error) {
	objs, err := d.store.Query(ctx, domain.Query{Schema: SettingsSchemaID, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", mapStoreError(err))
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return &objs[0], nil
}

// findMeta returns the metadata object for key, or nil when unset
func (d *Database) findMeta(ctx context.Context, key string) (*domain.Object, error) {
	objs, err := d.store.Query(ctx, domain.Query{Schema: MetaSchemaID, Field: fieldKey, Value: key, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", key, mapStoreError(err))
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return &objs[0], nil
}

func (d *Database) hydrate(obj domain.Object) (domain.Concept, error) {
	dry := domain.DryConcept{ID: obj.Fields[fieldID], JSON: obj.Fields[fieldJSON]}
	c, err := dry.Hydrate()
	if err != nil {
		d.logger.Warn("unreadable concept", "id", dry.ID, "uid", obj.UID, "error", err)
		return nil, &application.ConceptError{ID: dry.ID, Err: fmt.Errorf("%w: %v", application.ErrCorruptConcept, err)}
	}
	return c, nil
}

func dryFields(dry domain.DryConcept) map[string]string {
	return map[string]string{fieldID: dry.ID, fieldJSON: dry.JSON}
}

// mapStoreError translates store sentinels into application sentinels,
// keeping the original error in the chain.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, ports.ErrUnknownSchema):
		return fmt.Errorf("%w: %w", application.ErrNotInitialized, err)
	case errors.Is(err, ports.ErrUniqueViolation):
		return fmt.Errorf("%w: %w", application.ErrAlreadyExists, err)
	case errors.Is(err, ports.ErrObjectNotFound):
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	default:
		return err
	}
}
