package objstore

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"

	"jade/internal/domain"
	"jade/internal/ports"
)

// NewUID returns a fresh object identifier
func NewUID() string {
	return "0x" + uuid.NewString()
}

// CheckFields rejects fields the schema does not declare
func CheckFields(schemaID string, schema domain.Schema, fields map[string]string) error {
	for key := range fields {
		if !schema.HasProperty(key) {
			return fmt.Errorf("%s.%s: %w", schemaID, key, ports.ErrUnknownField)
		}
	}
	return nil
}

// Merge returns base overlaid with patch, leaving both untouched
func Merge(base, patch map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(patch))
	maps.Copy(out, base)
	maps.Copy(out, patch)
	return out
}

// SortObjects orders objects by creation time, then UID
func SortObjects(objs []domain.Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		if !objs[i].CreatedAt.Equal(objs[j].CreatedAt) {
			return objs[i].CreatedAt.Before(objs[j].CreatedAt)
		}
		return objs[i].UID < objs[j].UID
	})
}

// Limit truncates objs to the query limit, if any
func Limit(objs []domain.Object, limit int) []domain.Object {
	if limit > 0 && len(objs) > limit {
		return objs[:limit]
	}
	return objs
}

// UniqueViolation builds the error reported when a unique value is taken
func UniqueViolation(schemaID, key, value string) error {
	return fmt.Errorf("%s.%s=%q: %w", schemaID, key, value, ports.ErrUniqueViolation)
}

// BatchTime spaces the i-th object of a batch one nanosecond apart so
// creation order survives sorting.
func BatchTime(now time.Time, i int) time.Time {
	return now.Add(time.Duration(i))
}
