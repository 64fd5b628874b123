package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jade/internal/adapters/objstore"
	"jade/internal/domain"
	"jade/internal/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func loadSchema(ctx context.Context, q querier, schemaID string) (domain.Schema, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT definition FROM schemas WHERE id = ?`, schemaID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Schema{}, fmt.Errorf("%s: %w", schemaID, ports.ErrUnknownSchema)
	}
	if err != nil {
		return domain.Schema{}, fmt.Errorf("failed to read schema %s: %w", schemaID, err)
	}

	var schema domain.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return domain.Schema{}, fmt.Errorf("failed to decode schema %s: %w", schemaID, err)
	}
	return schema, nil
}

func loadObject(ctx context.Context, q querier, uid string) (*domain.Object, error) {
	row := q.QueryRowContext(ctx, `
		SELECT uid, schema_id, fields, created_at, updated_at
		FROM objects WHERE uid = ?
	`, uid)

	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", uid, ports.ErrObjectNotFound)
	}
	return obj, err
}

func scanObject(row scanner) (*domain.Object, error) {
	var (
		obj                  domain.Object
		fields               string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&obj.UID, &obj.Schema, &fields, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &obj.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode object %s: %w", obj.UID, err)
	}
	obj.CreatedAt = time.Unix(0, createdAt).UTC()
	obj.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &obj, nil
}

func insertObject(ctx context.Context, q querier, obj domain.Object) error {
	encoded, err := json.Marshal(obj.Fields)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO objects (uid, schema_id, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, obj.UID, obj.Schema, string(encoded), obj.CreatedAt.UnixNano(), obj.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert object: %w", err)
	}
	return nil
}

// claimUniqueKeys records obj as the owner of each of its unique values
func claimUniqueKeys(ctx context.Context, q querier, schema domain.Schema, obj domain.Object) error {
	for _, key := range schema.UniqueKeys() {
		value, ok := obj.Fields[key]
		if !ok {
			continue
		}

		var owner string
		err := q.QueryRowContext(ctx, `
			SELECT uid FROM unique_keys WHERE schema_id = ? AND key = ? AND value = ?
		`, obj.Schema, key, value).Scan(&owner)
		if err == nil && owner != obj.UID {
			return objstore.UniqueViolation(obj.Schema, key, value)
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO unique_keys (schema_id, key, value, uid) VALUES (?, ?, ?, ?)
		`, obj.Schema, key, value, obj.UID); err != nil {
			return err
		}
	}
	return nil
}

// jsonPath quotes a field name for json_extract
func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}
