package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		trailing bool
	}{
		{"object", `{"id": "a"}`, false, false},
		{"surrounding whitespace", "\n  {\"id\": \"a\"}  \n\t", false, false},
		{"second object", `{"id":"a"} {"id":"b"}`, true, true},
		{"garbage after object", `{"id":"a"} garbage`, true, true},
		{"second object and garbage", `{"id":"a"} {"id":"b"} garbage`, true, true},
		{"trailing bracket", `{"id":"a"}]`, true, true},
		{"truncated", `{"id":`, true, false},
		{"empty", ``, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]any
			err := DecodeJSON([]byte(tt.input), &v)
			if tt.wantErr != (err != nil) {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrTrailingData) != tt.trailing {
				t.Errorf("ErrTrailingData = %v, want %v (err: %v)", errors.Is(err, ErrTrailingData), tt.trailing, err)
			}
		})
	}
}

func TestDecodeJSON_KeepsNumbers(t *testing.T) {
	var v map[string]any
	if err := DecodeJSON([]byte(`{"n": 12345678901234567890}`), &v); err != nil {
		t.Fatal(err)
	}
	if v["n"] != json.Number("12345678901234567890") {
		t.Errorf("n = %#v", v["n"])
	}
}

func TestParse_RejectsTrailingData(t *testing.T) {
	input := []byte(`{"id":"a"} {"id":"b"} garbage`)

	if c, err := ParseConcept(input); !errors.Is(err, ErrTrailingData) {
		t.Errorf("ParseConcept() = %v, %v; want ErrTrailingData", c, err)
	}
	if s, err := ParseSettings(input); !errors.Is(err, ErrTrailingData) {
		t.Errorf("ParseSettings() = %v, %v; want ErrTrailingData", s, err)
	}
}
