package graphdb

import "jade/internal/domain"

// PackageName identifies Jade's package in the graph store
const PackageName = "jade.notes"

// CurrentVersion is the data version reported before one has been stored
const CurrentVersion = 5

const versionKey = "version"

// Field names used by the Jade schemas
const (
	fieldID    = "id"
	fieldJSON  = "json"
	fieldKey   = "key"
	fieldValue = "value"
)

// Schema IDs registered by Package
var (
	ConceptSchemaID  = domain.SchemaID("jade_concept")
	SettingsSchemaID = domain.SchemaID("jade_settings")
	MetaSchemaID     = domain.SchemaID("jade_meta")
)

// Package returns the package Jade registers on Init
func Package() domain.Package {
	return domain.Package{
		Manifest: domain.Manifest{
			Name:        "Jade",
			PackageName: PackageName,
			Version:     "0.1.0",
			Description: "Jade concepts and settings",
		},
		Schemas: map[string]domain.Schema{
			"jade_concept": {
				Name: "Jade Concept",
				Properties: []domain.Property{
					{Key: fieldJSON, Type: domain.TypeString},
					{Key: fieldID, Type: domain.TypeString, Unique: true},
				},
			},
			"jade_settings": {
				Name: "Jade Settings",
				Properties: []domain.Property{
					{Key: fieldJSON, Type: domain.TypeString},
				},
			},
			"jade_meta": {
				Name: "Jade Metadata",
				Properties: []domain.Property{
					{Key: fieldKey, Type: domain.TypeString, Unique: true},
					{Key: fieldValue, Type: domain.TypeString},
				},
			},
		},
	}
}
