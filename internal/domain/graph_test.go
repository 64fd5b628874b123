package domain

import (
	"reflect"
	"testing"
)

func TestSchemaID(t *testing.T) {
	id := SchemaID("jade_concept")
	if id != "$/schema/jade_concept" {
		t.Errorf("SchemaID() = %q", id)
	}
	if !IsSchemaID(id) {
		t.Error("expected schema ID")
	}
	for _, bad := range []string{"", "$/schema/", "jade_concept", "$/entity/x"} {
		if IsSchemaID(bad) {
			t.Errorf("IsSchemaID(%q) = true", bad)
		}
	}
}

func TestSchema_UniqueKeys(t *testing.T) {
	s := Schema{Properties: []Property{
		{Key: "id", Unique: true},
		{Key: "json"},
		{Key: "slug", Unique: true},
	}}

	if got := s.UniqueKeys(); !reflect.DeepEqual(got, []string{"id", "slug"}) {
		t.Errorf("UniqueKeys() = %v", got)
	}
	if !s.HasProperty("json") || s.HasProperty("body") {
		t.Error("HasProperty() mismatch")
	}
}

func TestQuery_Matches(t *testing.T) {
	obj := Object{Schema: "$/schema/a", Fields: map[string]string{"id": "x", "empty": ""}}

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"schema only", Query{Schema: "$/schema/a"}, true},
		{"other schema", Query{Schema: "$/schema/b"}, false},
		{"any schema", Query{}, true},
		{"field match", Query{Schema: "$/schema/a", Field: "id", Value: "x"}, true},
		{"field mismatch", Query{Schema: "$/schema/a", Field: "id", Value: "y"}, false},
		{"empty value", Query{Field: "empty", Value: ""}, true},
		{"missing field", Query{Field: "nope", Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(obj); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	d := DefaultSettings()
	c := d.Clone()
	c["theme"] = "dark"
	if d["theme"] != "light" {
		t.Error("Clone shares the map")
	}

	s, err := ParseSettings([]byte(`{"fontSize": 14}`))
	if err != nil {
		t.Fatalf("ParseSettings() error: %v", err)
	}
	if s["fontSize"].(interface{ String() string }).String() != "14" {
		t.Errorf("fontSize = %v", s["fontSize"])
	}
	if _, err := ParseSettings([]byte(`null`)); err == nil {
		t.Error("expected error for null settings")
	}
}
