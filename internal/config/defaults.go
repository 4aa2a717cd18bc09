package config

import "github.com/hyperjump/portalsearch/internal/models"

// Collection names searched by default in a global search.
const (
	CollectionRecordings = "recordings"
	CollectionNotes      = "notes"
	CollectionExercises  = "exercises"
)

// DefaultCollections returns the built-in field profiles for the portal collections.
func DefaultCollections() map[string]CollectionConfig {
	return map[string]CollectionConfig{
		CollectionRecordings: {
			SearchConfig: models.SearchConfig{
				Fields: []string{"title", "description", "teacher", "subject", "tags"},
				Boost:  map[string]float64{"title": 3, "teacher": 2, "tags": 1.5},
			},
			Facets: []string{"subject", "teacher"},
		},
		CollectionNotes: {
			SearchConfig: models.SearchConfig{
				Fields: []string{"title", "content", "subject", "tags"},
				Boost:  map[string]float64{"title": 3, "tags": 2},
			},
			Facets: []string{"subject", "tags"},
		},
		CollectionExercises: {
			SearchConfig: models.SearchConfig{
				Fields: []string{"title", "description", "subject", "difficulty"},
				Boost:  map[string]float64{"title": 3},
			},
			Facets: []string{"subject", "difficulty"},
		},
	}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/portalsearch/data/portal.db"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.GlobalConcurrency == 0 {
		cfg.Search.GlobalConcurrency = 3
	}
	if cfg.Search.Collections == nil {
		cfg.Search.Collections = DefaultCollections()
	}
	if cfg.Search.GlobalCollections == nil {
		cfg.Search.GlobalCollections = []string{CollectionRecordings, CollectionNotes, CollectionExercises}
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 20
	}
	if cfg.History.PopularLimit == 0 {
		cfg.History.PopularLimit = 10
	}
	if cfg.History.MinTermLength == 0 {
		cfg.History.MinTermLength = 3
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".json", ".yaml", ".yml", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
