package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"jade/internal/adapters/objstore"
	"jade/internal/domain"
	"jade/internal/ports"
)

const sep = "\x00"

func packageKey(name string) []byte { return []byte("pkg" + sep + name) }
func schemaKey(id string) []byte { return []byte("schema" + sep + id) }
func objectKey(uid string) []byte { return []byte("obj" + sep + uid) }
func indexPrefix(schemaID string) []byte { return []byte("idx" + sep + schemaID + sep) }
func indexKey(schemaID, uid string) []byte { return append(indexPrefix(schemaID), uid...) }
func uniqueKey(schemaID, key, value string) []byte {
	return []byte("uniq" + sep + schemaID + sep + key + sep + value)
}

// Store implements ports.GraphStore on BadgerDB
type Store struct {
	db     *badger.DB
	gc     *gcRunner
	hub    *objstore.Hub
	logger *slog.Logger

	// writes are serialized so read-modify-write never hits ErrConflict
	writeMu sync.Mutex
	closed  bool
}

// Ensure Store implements GraphStore
var _ ports.GraphStore = (*Store)(nil)

// Open opens the store and starts value log GC when configured
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:     db,
		hub:    objstore.NewHub(logger),
		logger: logger,
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		runner, err := newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		s.gc = runner
		runner.start()
	}

	return s, nil
}

// Close stops GC, drops subscriptions and closes the database. Safe to call twice.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.gc != nil {
		s.gc.stop()
	}
	s.hub.Clear()
	return s.db.Close()
}

func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ports.ErrStoreClosed
	}
	return s.db.Update(fn)
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.View(fn)
}

// GetPackages returns the registered packages among names, keyed by package name
func (s *Store) GetPackages(ctx context.Context, names []string) (map[string]domain.Package, error) {
	out := make(map[string]domain.Package, len(names))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, name := range names {
			var pkg domain.Package
			found, err := getJSON(txn, packageKey(name), &pkg)
			if err != nil {
				return fmt.Errorf("read package %s: %w", name, err)
			}
			if found {
				out[name] = pkg
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackage registers (or re-registers) a package and its schemas
func (s *Store) AddPackage(ctx context.Context, pkg domain.Package) error {
	name := pkg.Manifest.PackageName
	if name == "" {
		return errors.New("package name is required")
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, packageKey(name), pkg); err != nil {
			return err
		}
		for key, schema := range pkg.Schemas {
			if err := setJSON(txn, schemaKey(domain.SchemaID(key)), schema); err != nil {
				return err
			}
		}
		return nil
	})
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
	var (
		uids   []string
		events []domain.ObjectEvent
	)

	err := s.update(ctx, func(txn *badger.Txn) error {
		schema, err := loadSchema(txn, schemaID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for i, fields := range batch {
			if err := objstore.CheckFields(schemaID, schema, fields); err != nil {
				return err
			}

			created := objstore.BatchTime(now, i)
			obj := domain.Object{
				UID:       objstore.NewUID(),
				Schema:    schemaID,
				Fields:    objstore.Merge(nil, fields),
				CreatedAt: created,
				UpdatedAt: created,
			}
			if err := claimUniqueKeys(txn, schema, obj, nil); err != nil {
				return err
			}
			if err := setJSON(txn, objectKey(obj.UID), obj); err != nil {
				return err
			}
			if err := txn.Set(indexKey(schemaID, obj.UID), []byte{}); err != nil {
				return err
			}

			uids = append(uids, obj.UID)
			events = append(events, domain.ObjectEvent{Kind: domain.EventCreated, Object: obj})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(events...)
	return uids, nil
}

// UpdateObject merges fields into an existing object
func (s *Store) UpdateObject(ctx context.Context, uid string, fields map[string]string) error {
	var updated domain.Object

	err := s.update(ctx, func(txn *badger.Txn) error {
		var obj domain.Object
		found, err := getJSON(txn, objectKey(uid), &obj)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: %w", uid, ports.ErrObjectNotFound)
		}

		schema, err := loadSchema(txn, obj.Schema)
		if err != nil {
			return err
		}
		if err := objstore.CheckFields(obj.Schema, schema, fields); err != nil {
			return err
		}

		previous := obj.Fields
		obj.Fields = objstore.Merge(obj.Fields, fields)
		obj.UpdatedAt = time.Now().UTC()

		if err := claimUniqueKeys(txn, schema, obj, previous); err != nil {
			return err
		}
		if err := setJSON(txn, objectKey(uid), obj); err != nil {
			return err
		}

		updated = obj
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(domain.ObjectEvent{Kind: domain.EventUpdated, Object: updated})
	return nil
}

// GetObject retrieves an object by UID
func (s *Store) GetObject(ctx context.Context, uid string) (*domain.Object, error) {
	var obj domain.Object
	err := s.view(ctx, func(txn *badger.Txn) error {
		found, err := getJSON(txn, objectKey(uid), &obj)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: %w", uid, ports.ErrObjectNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// Query returns objects matching q ordered by creation time
func (s *Store) Query(ctx context.Context, q domain.Query) ([]domain.Object, error) {
	var objs []domain.Object

	err := s.view(ctx, func(txn *badger.Txn) error {
		if q.Schema == "" {
			return scanObjects(txn, q, &objs)
		}

		if _, err := loadSchema(txn, q.Schema); err != nil {
			return err
		}

		prefix := indexPrefix(q.Schema)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			uid := string(it.Item().Key()[len(prefix):])

			var obj domain.Object
			found, err := getJSON(txn, objectKey(uid), &obj)
			if err != nil {
				return err
			}
			if found && q.Matches(obj) {
				objs = append(objs, obj)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	objstore.SortObjects(objs)
	return objstore.Limit(objs, q.Limit), nil
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

func scanObjects(txn *badger.Txn, q domain.Query, objs *[]domain.Object) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = objectKey("")

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var obj domain.Object
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &obj)
		})
		if err != nil {
			return err
		}
		if q.Matches(obj) {
			*objs = append(*objs, obj)
		}
	}
	return nil
}

func loadSchema(txn *badger.Txn, schemaID string) (domain.Schema, error) {
	var schema domain.Schema
	found, err := getJSON(txn, schemaKey(schemaID), &schema)
	if err != nil {
		return domain.Schema{}, err
	}
	if !found {
		return domain.Schema{}, fmt.Errorf("%s: %w", schemaID, ports.ErrUnknownSchema)
	}
	return schema, nil
}

// claimUniqueKeys records obj as the owner of its unique values and releases
// values it held under previous.
func claimUniqueKeys(txn *badger.Txn, schema domain.Schema, obj domain.Object, previous map[string]string) error {
	for _, key := range schema.UniqueKeys() {
		value, ok := obj.Fields[key]
		if old, had := previous[key]; had && (!ok || old != value) {
			if err := txn.Delete(uniqueKey(obj.Schema, key, old)); err != nil {
				return err
			}
		}
		if !ok {
			continue
		}

		k := uniqueKey(obj.Schema, key, value)
		item, err := txn.Get(k)
		switch {
		case err == nil:
			owner, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if string(owner) != obj.UID {
				return objstore.UniqueViolation(obj.Schema, key, value)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.Set(k, []byte(obj.UID)); err != nil {
			return err
		}
	}
	return nil
}

func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}
