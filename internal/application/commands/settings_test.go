package commands

import (
	"context"
	"testing"

	"jade/internal/domain"
)

func TestSaveSettingsCommand(t *testing.T) {
	tests := []struct {
		name  string
		save  domain.Settings
		merge bool
		want  map[string]any
	}{
		{
			name: "replace",
			save: domain.Settings{"theme": "dark"},
			want: map[string]any{"theme": "dark"},
		},
		{
			name:  "merge over defaults",
			save:  domain.Settings{"theme": "dark"},
			merge: true,
			want:  map[string]any{"theme": "dark", "language": "en", "mainSidebarOpen": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newFakeDB()

			if _, err := NewSaveSettingsCommand(db, tt.save, tt.merge).Execute(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := NewGetSettingsCommand(db).Execute(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: expected %v, got %v", k, v, got[k])
				}
			}
			if !tt.merge && len(got) != len(tt.want) {
				t.Errorf("expected settings to be replaced, got %v", got)
			}
		})
	}
}

func TestSaveSettingsCommand_Validate(t *testing.T) {
	wantError(t, (&SaveSettingsCommand{}).Validate(), "settings are required")
	wantError(t, (&SaveSettingsCommand{Settings: domain.Settings{}}).Validate(), "")
}
