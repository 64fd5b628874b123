package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RelationsField is the only concept field the store layer touches
const RelationsField = "relations"

// ErrMissingConceptID is returned when a concept has no usable "id" field
var ErrMissingConceptID = errors.New("concept has no id")

// Concept is an opaque, caller-defined JSON object identified by its "id" field.
// Fields other than "id" and "relations" are never interpreted.
type Concept map[string]any

// ID returns the concept identifier, or "" when absent or not a string
func (c Concept) ID() string {
	id, _ := c["id"].(string)
	return id
}

// Validate checks that the concept carries a non-blank string id
func (c Concept) Validate() error {
	if strings.TrimSpace(c.ID()) == "" {
		return ErrMissingConceptID
	}
	return nil
}

// WithDefaultRelations returns a shallow copy with an empty relations list
// when the concept has none. The receiver is never modified.
func (c Concept) WithDefaultRelations() Concept {
	out := make(Concept, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	if _, ok := out[RelationsField]; !ok || out[RelationsField] == nil {
		out[RelationsField] = []any{}
	}
	return out
}

// DryConcept is the storage envelope for a concept: its id plus the concept
// serialized to JSON text.
type DryConcept struct {
	ID   string `json:"id"`
	JSON string `json:"json"`
}

// Dry serializes a concept into its storage envelope
func Dry(c Concept) (DryConcept, error) {
	if err := c.Validate(); err != nil {
		return DryConcept{}, err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return DryConcept{}, fmt.Errorf("encode concept %s: %w", c.ID(), err)
	}
	return DryConcept{ID: c.ID(), JSON: string(data)}, nil
}

// Hydrate parses the envelope back into a concept.
// Numbers are kept as json.Number so values round-trip unchanged.
func (d DryConcept) Hydrate() (Concept, error) {
	c, err := ParseConcept([]byte(d.JSON))
	if err != nil {
		return nil, fmt.Errorf("decode concept %s: %w", d.ID, err)
	}
	if c.ID() == "" {
		c["id"] = d.ID
	}
	return c, nil
}

// ParseConcept decodes a single JSON object into a Concept
func ParseConcept(data []byte) (Concept, error) {
	var c Concept
	if err := DecodeJSON(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("concept is null")
	}
	return c, nil
}
