package search

import (
	"sort"

	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
)

// SortRecords returns a copy of records stably ordered by the textual value of
// orderBy. Direction "desc" reverses the order; equal keys keep input order.
// An empty orderBy keeps the input order.
func SortRecords(records []models.Record, orderBy, direction string) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)
	if orderBy == "" {
		return out
	}
	keys := make([]string, len(out))
	idx := make([]int, len(out))
	for i, rec := range out {
		idx[i] = i
		keys[i] = record.FieldText(rec, orderBy)
	}
	desc := direction == models.OrderDesc
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if desc {
			return ka > kb
		}
		return ka < kb
	})
	sorted := make([]models.Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// Paginate returns the window [offset, offset+limit) of records. The result is
// never nil.
//
// A limit of 0 is treated as "not provided" and returns everything from offset
// on, matching SearchOptions.Limit, rather than an empty page. The HTTP
// API and CLI replace 0 with search.default_limit before calling the engine,
// so library callers wanting that behaviour must apply it themselves.
func Paginate(records []models.Record, offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []models.Record{}
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}
