package keyword

import (
	"reflect"
	"testing"

	"github.com/hyperjump/portalsearch/internal/models"
)

func TestSuggest(t *testing.T) {
	records := []models.Record{
		{"title": "Grammar Basics", "tags": []any{"grammar", "grade-1"}},
		{"title": "Great Companions", "tags": []any{"gr"}},
		{"title": "Quran Tafsir", "description": "gratitude and patience"},
		{"title": "Grammar drills", "description": "graded exercises, grammatical terms"},
	}
	tests := []struct {
		name   string
		query  string
		fields []string
		want   []string
	}{
		{"first term only", "gra tafsir", []string{"title", "tags"}, []string{"grammar", "grade-1"}},
		{"caps at five", "gr", []string{"title", "tags", "description"},
			[]string{"grammar", "grade-1", "great", "gratitude", "graded"}},
		{"short words skipped", "gr", []string{"tags"}, []string{"grammar", "grade-1"}},
		{"case-insensitive", "QURAN", []string{"title"}, []string{"quran"}},
		{"no match", "xyz", []string{"title"}, []string{}},
		{"blank query", "  ", []string{"title"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.query, records, tt.fields)
			if len(got) > MaxSuggestions {
				t.Fatalf("got %d suggestions, cap is %d", len(got), MaxSuggestions)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
