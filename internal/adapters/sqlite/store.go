package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jade/internal/adapters/objstore"
	"jade/internal/domain"
	"jade/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements ports.GraphStore on an embedded SQLite database
type Store struct {
	db     *sql.DB
	dbPath string
	hub    *objstore.Hub
	logger *slog.Logger
}

// Ensure Store implements GraphStore
var _ ports.GraphStore = (*Store)(nil)

// Open opens (or creates) the store at dbPath
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS packages (
			name TEXT PRIMARY KEY,
			definition TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS schemas (
			id TEXT PRIMARY KEY,
			package TEXT NOT NULL,
			definition TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS objects (
			uid TEXT PRIMARY KEY,
			schema_id TEXT NOT NULL,
			fields TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS unique_keys (
			schema_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			uid TEXT NOT NULL,
			PRIMARY KEY (schema_id, key, value)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_objects_schema ON objects(schema_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_unique_uid ON unique_keys(uid);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &Store{
		db:     db,
		dbPath: dbPath,
		hub:    objstore.NewHub(logger),
		logger: logger,
	}, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.dbPath
}

// Close drops all subscriptions and closes the database connection
func (s *Store) Close() error {
	s.hub.Clear()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetPackages returns the registered packages among names, keyed by package name
func (s *Store) GetPackages(ctx context.Context, names []string) (map[string]domain.Package, error) {
	out := make(map[string]domain.Package, len(names))
	for _, name := range names {
		var raw string
		err := s.db.QueryRowContext(ctx, `SELECT definition FROM packages WHERE name = ?`, name).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read package %s: %w", name, err)
		}

		var pkg domain.Package
		if err := json.Unmarshal([]byte(raw), &pkg); err != nil {
			return nil, fmt.Errorf("failed to decode package %s: %w", name, err)
		}
		out[name] = pkg
	}
	return out, nil
}

// AddPackage registers (or re-registers) a package and its schemas
func (s *Store) AddPackage(ctx context.Context, pkg domain.Package) error {
	name := pkg.Manifest.PackageName
	if name == "" {
		return errors.New("package name is required")
	}

	def, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("failed to encode package %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO packages (name, definition) VALUES (?, ?)`, name, string(def)); err != nil {
		return fmt.Errorf("failed to store package %s: %w", name, err)
	}

	for key, schema := range pkg.Schemas {
		schemaDef, err := json.Marshal(schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO schemas (id, package, definition) VALUES (?, ?, ?)
		`, domain.SchemaID(key), name, string(schemaDef)); err != nil {
			return fmt.Errorf("failed to store schema %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// AddObject inserts one object and returns its UID
func (s *Store) AddObject(ctx context.Context, schemaID string, fields map[string]string) (string, error) {
	uids, err := s.AddObjects(ctx, schemaID, []map[string]string{fields})
	if err != nil {
		return "", err
	}
	return uids[0], nil
}

// AddObjects inserts a batch atomically; either every object is stored or none
func (s *Store) AddObjects(ctx context.Context, schemaID string, batch []map[string]string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	schema, err := loadSchema(ctx, tx, schemaID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	uids := make([]string, 0, len(batch))
	events := make([]domain.ObjectEvent, 0, len(batch))

	for i, fields := range batch {
		if err := objstore.CheckFields(schemaID, schema, fields); err != nil {
			return nil, err
		}

		created := objstore.BatchTime(now, i)
		obj := domain.Object{
			UID:       objstore.NewUID(),
			Schema:    schemaID,
			Fields:    objstore.Merge(nil, fields),
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := claimUniqueKeys(ctx, tx, schema, obj); err != nil {
			return nil, err
		}
		if err := insertObject(ctx, tx, obj); err != nil {
			return nil, err
		}

		uids = append(uids, obj.UID)
		events = append(events, domain.ObjectEvent{Kind: domain.EventCreated, Object: obj})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit objects: %w", err)
	}

	s.hub.Publish(events...)
	return uids, nil
}

// UpdateObject merges fields into an existing object
func (s *Store) UpdateObject(ctx context.Context, uid string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	obj, err := loadObject(ctx, tx, uid)
	if err != nil {
		return err
	}

	schema, err := loadSchema(ctx, tx, obj.Schema)
	if err != nil {
		return err
	}
	if err := objstore.CheckFields(obj.Schema, schema, fields); err != nil {
		return err
	}

	obj.Fields = objstore.Merge(obj.Fields, fields)
	obj.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unique_keys WHERE uid = ?`, uid); err != nil {
		return err
	}
	if err := claimUniqueKeys(ctx, tx, schema, *obj); err != nil {
		return err
	}

	encoded, err := json.Marshal(obj.Fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE objects SET fields = ?, updated_at = ? WHERE uid = ?
	`, string(encoded), obj.UpdatedAt.UnixNano(), uid); err != nil {
		return fmt.Errorf("failed to update object %s: %w", uid, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}

	s.hub.Publish(domain.ObjectEvent{Kind: domain.EventUpdated, Object: *obj})
	return nil
}

// GetObject retrieves an object by UID
func (s *Store) GetObject(ctx context.Context, uid string) (*domain.Object, error) {
	return loadObject(ctx, s.db, uid)
}

// Query returns objects matching q ordered by creation time
func (s *Store) Query(ctx context.Context, q domain.Query) ([]domain.Object, error) {
	var (
		clauses []string
		args    []any
	)
	if q.Schema != "" {
		if _, err := loadSchema(ctx, s.db, q.Schema); err != nil {
			return nil, err
		}
		clauses = append(clauses, "schema_id = ?")
		args = append(args, q.Schema)
	}
	if q.Field != "" {
		clauses = append(clauses, "json_extract(fields, ?) = ?")
		args = append(args, jsonPath(q.Field), q.Value)
	}

	stmt := `SELECT uid, schema_id, fields, created_at, updated_at FROM objects`
	if len(clauses) > 0 {
		stmt += " WHERE " + strings.Join(clauses, " AND ")
	}
	stmt += " ORDER BY created_at, uid"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objs []domain.Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objs = append(objs, *obj)
	}

	return objs, rows.Err()
}

// Subscribe registers handler for changes to objects matching q
func (s *Store) Subscribe(_ context.Context, q domain.Query, handler ports.EventHandler) (string, error) {
	if handler == nil {
		return "", errors.New("handler is required")
	}
	return s.hub.Add(q, handler), nil
}

// Unsubscribe removes a subscription; unknown IDs are ignored
func (s *Store) Unsubscribe(_ context.Context, subscriptionID string) error {
	if !s.hub.Remove(subscriptionID) {
		s.logger.Debug("unsubscribe for unknown subscription", "id", subscriptionID)
	}
	return nil
}
