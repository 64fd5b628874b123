package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"jade/internal/domain"
)

// ConceptFile is a concept written to a temporary JSON file for editing
type ConceptFile struct {
	Path     string
	ID       string
	original []byte
}

// WriteConceptFile writes c as indented JSON to a new temporary file
func WriteConceptFile(c domain.Concept) (*ConceptFile, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode concept %s: %w", c.ID(), err)
	}

	f, err := os.CreateTemp("", "jade-concept-*.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	return &ConceptFile{Path: f.Name(), ID: c.ID(), original: buf.Bytes()}, nil
}

// Read parses the edited file. changed is false when the file is byte-for-byte
// unchanged. The id may not be edited.
func (f *ConceptFile) Read() (c domain.Concept, changed bool, err error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, false, err
	}
	if bytes.Equal(data, f.original) {
		return nil, false, nil
	}

	c, err = domain.ParseConcept(data)
	if err != nil {
		return nil, false, fmt.Errorf("edited concept is not valid JSON: %w", err)
	}
	if c.ID() != f.ID {
		return nil, false, fmt.Errorf("concept id changed from %q to %q", f.ID, c.ID())
	}
	return c, true, nil
}

// Remove deletes the temporary file
func (f *ConceptFile) Remove() error {
	return os.Remove(f.Path)
}
