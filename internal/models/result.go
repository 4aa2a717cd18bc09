package models

// FacetValue is one bucket of a facet histogram.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facet is a field's distinct-value histogram over a result set.
type Facet struct {
	Field  string       `json:"field"`
	Values []FacetValue `json:"values"`
}

// SearchResult is the envelope returned for one collection search.
// TotalCount is the filtered set size before pagination.
type SearchResult struct {
	Items        []Record `json:"items"`
	TotalCount   int      `json:"total_count"`
	SearchTimeMs float64  `json:"search_time_ms"`
	Suggestions  []string `json:"suggestions"`
	Facets       []Facet  `json:"facets"`
	// Error is set when the search failed; the rest of the envelope is then empty.
	Error string `json:"error,omitempty"`
}

// EmptyResult returns a well-shaped envelope with no items.
func EmptyResult() *SearchResult {
	return &SearchResult{
		Items:       []Record{},
		Suggestions: []string{},
		Facets:      []Facet{},
	}
}

// Failed reports whether the search behind r failed.
func (r *SearchResult) Failed() bool {
	return r.Error != ""
}

// GlobalSearchResult holds independent per-collection results.
// TotalResults sums TotalCount over collections; failed collections count as zero.
type GlobalSearchResult struct {
	Query        string                   `json:"query"`
	Results      map[string]*SearchResult `json:"results"`
	Collections  []string                 `json:"collections"`
	TotalResults int                      `json:"total_results"`
	SearchTimeMs float64                  `json:"search_time_ms"`
}
