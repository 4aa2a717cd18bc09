// Package models defines core data structures for records, search requests, and search results.
package models

import "fmt"

// Record is a single portal entry (recording, note, exercise). Values are
// strings, numbers, bools, slices of those, or nested records.
type Record map[string]any

// ID returns the record's "id" field as a string, or "" when absent.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// CollectionInfo describes a stored collection.
type CollectionInfo struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
