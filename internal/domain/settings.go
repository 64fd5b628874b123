package domain

import (
	"errors"
	"maps"
)

// Settings is an opaque JSON object of user preferences
type Settings map[string]any

// DefaultSettings returns the settings used before anything has been saved
func DefaultSettings() Settings {
	return Settings{
		"theme":            "light",
		"language":         "en",
		"mainSidebarOpen":  true,
		"rightSidebarOpen": false,
		"isDebugMode":      false,
	}
}

// Clone returns a shallow copy of the settings
func (s Settings) Clone() Settings {
	return maps.Clone(s)
}

// ParseSettings decodes a JSON object into Settings
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := DecodeJSON(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("settings are null")
	}
	return s, nil
}
