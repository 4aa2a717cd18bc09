package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/search"
	"github.com/hyperjump/portalsearch/internal/storage"
	"github.com/hyperjump/portalsearch/internal/watcher"
)

const exercisesJSON = `[
  {"id": "e1", "title": "Tajweed Rules", "description": "Makharij practice", "subject": "quran", "difficulty": "easy"},
  {"id": "e2", "title": "Reading Drill", "description": "Apply tajweed while reading", "subject": "quran", "difficulty": "hard"},
  {"id": "e3", "title": "Verb Forms", "description": "Arabic morphology", "subject": "arabic", "difficulty": "easy"}
]`

func TestIntegration_ImportAndSearchSQLite(t *testing.T) {
	dir := t.TempDir()
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "portal.db")

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	file := filepath.Join(dir, config.CollectionExercises+".json")
	if err := os.WriteFile(file, []byte(exercisesJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	name, n, err := watcher.NewImporter(store, zap.NewNop()).Import(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if name != config.CollectionExercises || n != 3 {
		t.Fatalf("Import = %q, %d; want exercises, 3", name, n)
	}
	// A restart re-syncs existing files; the collection must not grow.
	if _, _, err := watcher.NewImporter(store, zap.NewNop()).Import(context.Background(), file); err != nil {
		t.Fatal(err)
	}
	if count, _ := store.CountRecords(context.Background(), config.CollectionExercises); count != 3 {
		t.Fatalf("after re-import %d records stored, want 3", count)
	}

	hist := history.NewService(store, cfg.History)
	srv := NewServer(search.NewEngine(&cfg.Search), store, hist, &cfg, zap.NewNop())
	ts := &testServer{handler: srv.Router(), history: hist}

	w := ts.do(t, http.MethodPost, "/api/v1/search/exercises", map[string]interface{}{"query": "tajweed"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	res := decode[models.SearchResult](t, w)
	if got := idsOf(res.Items); len(got) != 2 || got[0] != "e1" || got[1] != "e2" {
		t.Errorf("items = %v, want [e1 e2] (title match outranks description)", got)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/search/exercises", map[string]interface{}{
		"query":   "tajweed",
		"filters": map[string]interface{}{"difficulty": "easy"},
	})
	res = decode[models.SearchResult](t, w)
	if got := idsOf(res.Items); len(got) != 1 || got[0] != "e1" {
		t.Errorf("filtered items = %v, want [e1]", got)
	}
	var difficulty *models.Facet
	for i := range res.Facets {
		if res.Facets[i].Field == "difficulty" {
			difficulty = &res.Facets[i]
		}
	}
	if difficulty == nil || len(difficulty.Values) != 1 || difficulty.Values[0] != (models.FacetValue{Value: "easy", Count: 1}) {
		t.Errorf("difficulty facet = %+v", difficulty)
	}

	terms, err := hist.PopularSearchTerms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 1 || terms[0] != (history.TermCount{Term: "tajweed", Count: 2}) {
		t.Errorf("popular terms = %+v", terms)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/status", nil)
	status := decode[map[string]interface{}](t, w)
	if status["records"] != float64(3) {
		t.Errorf("status records = %v", status["records"])
	}
	if usage, ok := status["disk_usage_bytes"].(float64); !ok || usage <= 0 {
		t.Errorf("disk_usage_bytes = %v", status["disk_usage_bytes"])
	}
}

func idsOf(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}
