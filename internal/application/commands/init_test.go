package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jade/internal/application"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `{"concepts": [{"id": "root", "size": 12345678901234567890}]}`)

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seed.Settings["theme"] != "light" {
		t.Errorf("expected default settings, got %v", seed.Settings)
	}
	if len(seed.Concepts) != 1 {
		t.Fatalf("expected 1 concept, got %d", len(seed.Concepts))
	}
	if got := seed.Concepts[0]["size"]; got != json.Number("12345678901234567890") {
		t.Errorf("expected number to be kept verbatim, got %v", got)
	}
}

func TestLoadSeed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), errMsg: "failed to read seed"},
		{name: "bad json", path: writeSeed(t, `{"concepts": [`), errMsg: "failed to parse seed"},
		{name: "trailing data", path: writeSeed(t, `{"concepts": []} {"concepts": [{"id": "x"}]}`), errMsg: "unexpected data after JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(tt.path)
			wantError(t, err, tt.errMsg)
		})
	}
}

func TestInitCommand_Execute(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	path := writeSeed(t, `{"settings": {"theme": "dark"}, "concepts": [{"id": "a"}, {"id": "b"}]}`)

	result, err := NewInitCommand(db, path).Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped || result.Concepts != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if db.settings["theme"] != "dark" {
		t.Errorf("expected seed settings, got %v", db.settings)
	}

	result, err = NewInitCommand(db, path).Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Skipped {
		t.Error("expected second init to be skipped")
	}
}

func TestInitCommand_WithoutSeed(t *testing.T) {
	db := newFakeDB()

	result, err := NewInitCommand(db, "").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Concepts != 0 || db.settings["language"] != "en" {
		t.Errorf("expected defaults, got %+v and %v", result, db.settings)
	}
}

func TestInitCommand_InvalidSeedConcept(t *testing.T) {
	db := newFakeDB()
	path := writeSeed(t, `{"concepts": [{"id": "a"}, {"title": "no id"}]}`)

	_, err := NewInitCommand(db, path).Execute(context.Background())
	wantError(t, err, "seed concept 1")
	if db.initialized {
		t.Error("database should not be initialized")
	}
}

func TestInitCommand_DuplicateSeedID(t *testing.T) {
	db := newFakeDB()
	path := writeSeed(t, `{"concepts": [{"id": "a"}, {"id": "b"}, {"id": "a"}]}`)

	_, err := NewInitCommand(db, path).Execute(context.Background())
	wantError(t, err, `seed concept 2: id "a" already used by concept 0`)
	if !errors.Is(err, application.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if db.initialized {
		t.Error("database should not be initialized")
	}
}
