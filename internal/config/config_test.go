package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if len(cfg.Search.Collections) != 3 {
		t.Errorf("expected built-in collection profiles, got %d", len(cfg.Search.Collections))
	}
	if !cfg.History.RecordSearchesOrDefault() {
		t.Error("record_searches should default to true")
	}
}

func TestLoad_collectionProfile(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: ":memory:"
search:
  default_limit: 5
  max_limit: 50
  global_collections: ["notes"]
  collections:
    notes:
      fields: ["title", "content"]
      boost:
        title: 2.5
      fuzzy: true
      facets: ["subject"]
history:
  record_searches: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.DatabasePath != ":memory:" {
		t.Errorf("DatabasePath = %q, want :memory:", cfg.Storage.DatabasePath)
	}
	notes, ok := cfg.Search.Collections["notes"]
	if !ok {
		t.Fatal("notes profile missing")
	}
	if len(notes.Fields) != 2 || notes.Fields[0] != "title" {
		t.Errorf("Fields = %v", notes.Fields)
	}
	if notes.BoostFor("title") != 2.5 || notes.BoostFor("content") != 1 {
		t.Errorf("unexpected boosts: %v", notes.Boost)
	}
	if !notes.Fuzzy {
		t.Error("fuzzy should be true")
	}
	if len(notes.Facets) != 1 || notes.Facets[0] != "subject" {
		t.Errorf("Facets = %v", notes.Facets)
	}
	if len(cfg.Search.GlobalCollections) != 1 {
		t.Errorf("GlobalCollections = %v", cfg.Search.GlobalCollections)
	}
	if cfg.History.RecordSearchesOrDefault() {
		t.Error("record_searches should be false when set")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/portal.db"
watch:
  directories: ["./imports"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "portal.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "imports"); cfg.Watch.Directories[0] != want {
		t.Errorf("Directories[0] = %q, want %q", cfg.Watch.Directories[0], want)
	}
	if !cfg.Watch.RecursiveOrDefault() {
		t.Error("recursive should default to true")
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "default limit above max",
			content: `
search:
  default_limit: 200
  max_limit: 10
`,
			wantErr: "default_limit",
		},
		{
			name: "collection without fields",
			content: `
search:
  collections:
    notes:
      boost:
        title: 2
`,
			wantErr: "fields must not be empty",
		},
		{
			name: "negative boost",
			content: `
search:
  collections:
    notes:
      fields: ["title"]
      boost:
        title: -1
`,
			wantErr: "must be positive",
		},
		{
			name:    "malformed yaml",
			content: "search: [",
			wantErr: "failed to parse config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 8080 || cfg.Server.Host != "localhost" {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 {
		t.Errorf("search limits: %d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Search.GlobalConcurrency != 3 {
		t.Errorf("GlobalConcurrency = %d", cfg.Search.GlobalConcurrency)
	}
	want := []string{CollectionRecordings, CollectionNotes, CollectionExercises}
	for i, name := range want {
		if cfg.Search.GlobalCollections[i] != name {
			t.Errorf("GlobalCollections[%d] = %q, want %q", i, cfg.Search.GlobalCollections[i], name)
		}
	}
	if cfg.History.MaxEntries != 20 || cfg.History.PopularLimit != 10 || cfg.History.MinTermLength != 3 {
		t.Errorf("history defaults: %+v", cfg.History)
	}
	if len(cfg.Watch.Extensions) != 4 {
		t.Errorf("Extensions = %v", cfg.Watch.Extensions)
	}
	if err := Validate(&cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Storage.DatabasePath = "/tmp/portal.db"
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(path, &cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Storage.DatabasePath != "/tmp/portal.db" {
		t.Errorf("DatabasePath = %q", loaded.Storage.DatabasePath)
	}
	if got := loaded.Search.Collections[CollectionRecordings].BoostFor("title"); got != 3 {
		t.Errorf("recordings title boost = %v, want 3", got)
	}
}
