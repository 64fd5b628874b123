package application

import (
	"fmt"
	"strings"

	"jade/internal/domain"
	"jade/internal/ports"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "conceptID" -> "concept ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"conceptID":      "concept ID",
		"subscriptionID": "subscription ID",
		"seedPath":       "seed path",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateConcept checks that a concept carries a usable id
func ValidateConcept(c domain.Concept) error {
	if c == nil {
		return &ValidationError{Field: "concept", Message: "concept is required"}
	}
	if err := c.Validate(); err != nil {
		return &ValidationError{Field: "id", Message: "concept id is required"}
	}
	if strings.TrimSpace(c.ID()) != c.ID() {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("concept id has surrounding whitespace: %q", c.ID())}
	}
	if strings.Contains(c.ID(), ports.WildcardChannel) {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("concept id must not contain %q: %s", ports.WildcardChannel, c.ID())}
	}
	return nil
}

// ValidateChannel checks a subscription channel: a concept ID or "*"
func ValidateChannel(channel string) error {
	if err := ValidateRequired("channel", channel); err != nil {
		return err
	}
	if channel != ports.WildcardChannel && strings.Contains(channel, ports.WildcardChannel) {
		return &ValidationError{
			Field:   "channel",
			Message: fmt.Sprintf("expected concept ID or %q, got: %s", ports.WildcardChannel, channel),
		}
	}
	return nil
}

// ValidateVersion checks a data version number
func ValidateVersion(version int) error {
	if version < 0 {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("version must not be negative, got: %d", version),
		}
	}
	return nil
}
