package keyword

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
)

// MaxSuggestions caps the number of suggestions returned by Suggest.
const MaxSuggestions = 5

// minSuggestionLength is the shortest word (in runes) worth suggesting.
const minSuggestionLength = 3

// Suggest returns up to MaxSuggestions distinct lowercase words from the given
// fields that start with the query's first term, in the order they are found.
func Suggest(query string, records []models.Record, fields []string) []string {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return []string{}
	}
	prefix := terms[0]
	seen := make(map[string]struct{})
	out := make([]string, 0, MaxSuggestions)
	for _, rec := range records {
		for _, field := range fields {
			for _, word := range Words(strings.ToLower(record.FieldText(rec, field))) {
				if utf8.RuneCountInString(word) < minSuggestionLength || !strings.HasPrefix(word, prefix) {
					continue
				}
				if _, ok := seen[word]; ok {
					continue
				}
				seen[word] = struct{}{}
				out = append(out, word)
				if len(out) == MaxSuggestions {
					return out
				}
			}
		}
	}
	return out
}
