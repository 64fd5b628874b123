package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"jade/internal/domain"
	"jade/internal/ports"
)

// SearchResult is a concept with a relevance score and the text that matched
type SearchResult struct {
	Concept     domain.Concept
	MatchedText string
	Score       int
}

// SearchCommand searches concepts with fuzzy matching
type SearchCommand struct {
	db    ports.ConceptDatabase
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(db ports.ConceptDatabase, query string) *SearchCommand {
	return &SearchCommand{
		db:    db,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	concepts, err := c.db.GetAllConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search concepts: %w", err)
	}

	return FuzzySort(concepts, c.Query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '_' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort scores each concept by its best matching top-level string field
// (the id included) and returns the matches sorted by relevance.
func FuzzySort(concepts []domain.Concept, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(concepts))

	for _, c := range concepts {
		best := SearchResult{Concept: c}
		for _, text := range searchableText(c) {
			if s := FuzzyScore(text, query); s > best.Score {
				best.Score = s
				best.MatchedText = text
			}
		}

		if best.Score > 0 {
			scored = append(scored, best)
		}
	}

	// Sort by score descending, ties by id
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Concept.ID() < scored[j].Concept.ID()
	})

	return scored
}

// searchableText returns the id first, then the other string fields in key order
func searchableText(c domain.Concept) []string {
	texts := []string{c.ID()}

	keys := make([]string, 0, len(c))
	for k := range c {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s, ok := c[k].(string); ok && s != "" {
			texts = append(texts, s)
		}
	}
	return texts
}
