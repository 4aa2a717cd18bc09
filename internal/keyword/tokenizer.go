// Package keyword provides query tokenization, additive relevance scoring,
// fuzzy matching and prefix suggestions over in-memory records.
package keyword

import "strings"

// Tokenize splits query on whitespace into lowercase terms. Empty terms are dropped;
// there is no stemming and no stop-word list.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Words splits field text on whitespace without changing case.
func Words(text string) []string {
	return strings.Fields(text)
}

// uniqueTerms returns terms in first-seen order with duplicates removed.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
