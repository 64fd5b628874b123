package commands

import (
	"context"
	"testing"

	"jade/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "Theatre",
			query:     "Theatre",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "Theatre Season",
			query:     "Theatre",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "substring match",
			target:    "My Theatre",
			query:     "Theatre",
			wantScore: 100, // contains only
		},
		{
			name:    "fuzzy match all chars at start",
			target:  "Theatre",
			query:   "the",
			wantMin: 100, // should be high due to prefix
		},
		{
			name:      "no match",
			target:    "Theatre",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "Theatre",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "THEATRE",
			query:   "theatre",
			wantMin: 100,
		},
		{
			name:    "ID match",
			target:  "concept-2024-11-15",
			query:   "11-15",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else {
				if score != 0 {
					t.Errorf("expected score 0, got %d", score)
				}
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	// Test that better matches score higher
	query := "theatre"

	exactScore := FuzzyScore("theatre", query)         // exact + prefix = 150
	prefixScore := FuzzyScore("theatre season", query) // contains + prefix = 150
	containsScore := FuzzyScore("my theatre", query)   // contains only = 100
	fuzzyScore := FuzzyScore("t_h_e_a_t_r_e", query)   // fuzzy match only

	if exactScore < prefixScore {
		t.Errorf("exact match should score >= prefix: %d < %d", exactScore, prefixScore)
	}
	if prefixScore < containsScore {
		t.Errorf("prefix match should score >= contains: %d < %d", prefixScore, containsScore)
	}
	if containsScore <= fuzzyScore {
		t.Errorf("contains match should score higher than fuzzy: %d <= %d", containsScore, fuzzyScore)
	}
}

func TestFuzzySort(t *testing.T) {
	concepts := []domain.Concept{
		{"id": "c4", "title": "Random Name", "body": "nothing"},
		{"id": "c1", "title": "Theatre Season", "body": "theatre"},
		{"id": "c2", "title": "Cooking", "body": "recipes", "year": 2024},
		{"id": "c3", "title": "My Theatre", "body": "old theatre"},
	}

	sorted := FuzzySort(concepts, "theatre")

	if len(sorted) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(sorted))
	}

	// Theatre Season should come first (prefix match in title)
	if sorted[0].Concept.ID() != "c1" {
		t.Errorf("expected c1 first, got %s", sorted[0].Concept.ID())
	}
	if sorted[0].MatchedText != "theatre" && sorted[0].MatchedText != "Theatre Season" {
		t.Errorf("unexpected matched text %q", sorted[0].MatchedText)
	}

	for _, r := range sorted {
		if r.Concept.ID() == "c2" {
			t.Error("cooking should not match")
		}
	}

	// Verify results are sorted by score descending
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Score > sorted[i-1].Score {
			t.Errorf("results not sorted by score: %d > %d at index %d",
				sorted[i].Score, sorted[i-1].Score, i)
		}
	}
}

func TestSearchCommand_Execute(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	_ = db.Init(ctx, nil, []domain.Concept{{"id": "alpha"}, {"id": "beta", "title": "Alphabet"}})

	results, err := NewSearchCommand(db, "a").Execute(ctx)
	if err != nil || results != nil {
		t.Errorf("short query should return nothing, got %v, %v", results, err)
	}

	results, err = NewSearchCommand(db, "alpha").Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Concept.ID() != "alpha" {
		t.Errorf("unexpected results: %+v", results)
	}
}
