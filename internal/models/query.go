package models

import "fmt"

// Order directions accepted by SearchOptions.OrderDirection.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SearchConfig controls how the scorer reads records.
type SearchConfig struct {
	// Fields are scanned in order. Dot paths reach into nested records.
	Fields        []string           `json:"fields,omitempty" yaml:"fields"`
	CaseSensitive bool               `json:"case_sensitive,omitempty" yaml:"case_sensitive"`
	Fuzzy         bool               `json:"fuzzy,omitempty" yaml:"fuzzy"`
	// Boost weights a field's contribution. Missing or non-positive weights count as 1.
	Boost map[string]float64 `json:"boost,omitempty" yaml:"boost"`
}

// BoostFor returns the weight for field.
func (c *SearchConfig) BoostFor(field string) float64 {
	if b, ok := c.Boost[field]; ok && b > 0 {
		return b
	}
	return 1
}

// SearchOptions are the per-call knobs of a collection search.
type SearchOptions struct {
	SearchConfig
	// Filters maps a field to a literal, a list (membership) or {"operator", "value"}.
	Filters          map[string]any `json:"filters,omitempty"`
	Facets           []string       `json:"facets,omitempty"`
	SuggestionFields []string       `json:"suggestion_fields,omitempty"`
	OrderBy          string         `json:"order_by,omitempty"`
	OrderDirection   string         `json:"order_direction,omitempty"`
	Offset           int            `json:"offset,omitempty"`
	// Limit of 0 means no limit, not an empty page. The HTTP API and CLI
	// substitute search.default_limit for 0 before searching.
	Limit int `json:"limit,omitempty"`
}

// Validate checks pagination and ordering values.
func (o *SearchOptions) Validate() error {
	if o.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", o.Offset)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", o.Limit)
	}
	switch o.OrderDirection {
	case "", OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("order_direction must be %q or %q, got %q", OrderAsc, OrderDesc, o.OrderDirection)
	}
	return nil
}

// SearchRequest is the HTTP/CLI form of a search.
type SearchRequest struct {
	Query string `json:"query"`
	SearchOptions
	// Collections restricts a global search; empty means the configured set.
	Collections []string `json:"collections,omitempty"`
}
