package domain

import (
	"strings"
	"time"
)

// SchemaPrefix is prepended to a package schema key to form its schema ID
const SchemaPrefix = "$/schema/"

// TypeString is the only primitive property type; every field value is a string
const TypeString = "$/primitive/string"

// Property describes one field of a schema
type Property struct {
	Key    string `json:"key"`
	Type   string `json:"type"`
	Unique bool   `json:"unique,omitempty"`
}

// Schema describes an object type registered by a package
type Schema struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// UniqueKeys returns the keys of properties marked unique
func (s Schema) UniqueKeys() []string {
	var keys []string
	for _, p := range s.Properties {
		if p.Unique {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// HasProperty reports whether the schema declares key
func (s Schema) HasProperty(key string) bool {
	for _, p := range s.Properties {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Manifest identifies a package
type Manifest struct {
	Name        string `json:"name"`
	PackageName string `json:"package_name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Package bundles schemas under a manifest; schemas are keyed by short name
// (e.g., "jade_concept") and registered as "$/schema/jade_concept".
type Package struct {
	Manifest Manifest          `json:"manifest"`
	Schemas  map[string]Schema `json:"schemas"`
}

// SchemaID returns the full schema ID for a short schema key
func SchemaID(key string) string {
	return SchemaPrefix + key
}

// IsSchemaID reports whether id has the "$/schema/<key>" form
func IsSchemaID(id string) bool {
	return strings.HasPrefix(id, SchemaPrefix) && len(id) > len(SchemaPrefix)
}

// Object is a stored instance of a schema. All field values are strings.
type Object struct {
	UID       string            `json:"uid"`
	Schema    string            `json:"schema"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Query selects objects of one schema, optionally filtered by one field
type Query struct {
	Schema string `json:"schema"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Matches reports whether obj satisfies the query filter (Limit is ignored)
func (q Query) Matches(obj Object) bool {
	if q.Schema != "" && obj.Schema != q.Schema {
		return false
	}
	if q.Field == "" {
		return true
	}
	v, ok := obj.Fields[q.Field]
	return ok && v == q.Value
}

// EventKind distinguishes object notifications
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"

	// EventResync means events may have been lost. Object is empty; the
	// subscriber should re-read what it watches.
	EventResync EventKind = "resync"
)

// ObjectEvent is delivered to subscribers when a matching object changes
type ObjectEvent struct {
	Kind   EventKind `json:"kind"`
	Object Object    `json:"object"`
}
