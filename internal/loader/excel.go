package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/portalsearch/internal/models"
)

// listSuffix marks a header whose cells hold ";"-separated lists.
const listSuffix = "[]"

// loadExcel reads the first sheet. The first row names the fields; a dotted
// header such as "meta.room" builds a nested record. Empty cells are omitted
// and blank rows are skipped.
func loadExcel(content []byte) ([]models.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []models.Record{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.Record{}, nil
	}

	header := rows[0]
	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.Record{}
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			name := strings.TrimSpace(header[i])
			cell = strings.TrimSpace(cell)
			if name == "" || cell == "" {
				continue
			}
			var value any = cell
			if strings.HasSuffix(name, listSuffix) {
				name = strings.TrimSuffix(name, listSuffix)
				value = splitList(cell)
			}
			setPath(rec, name, value)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

func splitList(cell string) []any {
	parts := strings.Split(cell, ";")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setPath(rec map[string]any, path string, value any) {
	keys := strings.Split(path, ".")
	m := rec
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}
