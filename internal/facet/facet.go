// Package facet builds distinct-value histograms over result sets.
package facet

import (
	"sort"

	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
)

// MaxValues is the number of buckets kept per facet.
const MaxValues = 10

// Aggregate returns one facet per field, in field order. List values count
// once per element; missing and nil values are not counted. Buckets are sorted
// by count descending, ties in first-seen order.
func Aggregate(records []models.Record, fields []string) []models.Facet {
	facets := make([]models.Facet, 0, len(fields))
	for _, field := range fields {
		facets = append(facets, aggregateField(records, field))
	}
	return facets
}

func aggregateField(records []models.Record, field string) models.Facet {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		raw, ok := record.Lookup(rec, field)
		if !ok {
			continue
		}
		for _, v := range record.Values(raw) {
			key := record.Text(v)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}
	values := make([]models.FacetValue, len(order))
	for i, key := range order {
		values[i] = models.FacetValue{Value: key, Count: counts[key]}
	}
	sort.SliceStable(values, func(i, j int) bool { return values[i].Count > values[j].Count })
	if len(values) > MaxValues {
		values = values[:MaxValues]
	}
	return models.Facet{Field: field, Values: values}
}
