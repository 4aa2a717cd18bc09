// Package cli renders search results and history for the portalsearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
	"github.com/hyperjump/portalsearch/pkg/utils"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per record.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// titleFields are tried in order to label a record in text output.
var titleFields = []string{"title", "name", "subject"}

const maxFieldWidth = 120

// WriteSearchResult writes one collection's result to w.
func WriteSearchResult(w io.Writer, collection string, res *models.SearchResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, res)
	case OutputCompact:
		if res.Failed() {
			fmt.Fprintf(w, "%s\terror\t%s\n", collection, res.Error)
			return nil
		}
		for _, rec := range res.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", collection, rec.ID(), recordTitle(rec))
		}
		return nil
	default:
		writeSearchResultText(w, collection, res)
		return nil
	}
}

// WriteGlobalResult writes every collection of a global search to w in collection order.
func WriteGlobalResult(w io.Writer, res *models.GlobalSearchResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if format == OutputText {
		fmt.Fprintf(w, "\n%d results for %q across %d collections in %.2fms\n",
			res.TotalResults, res.Query, len(res.Collections), res.SearchTimeMs)
	}
	for _, name := range res.Collections {
		r, ok := res.Results[name]
		if !ok {
			continue
		}
		if err := WriteSearchResult(w, name, r, format); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistory writes past queries, most recent first.
func WriteHistory(w io.Writer, entries []string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"history": entries})
	}
	if len(entries) == 0 && format == OutputText {
		fmt.Fprintln(w, "No search history.")
		return nil
	}
	for i, e := range entries {
		if format == OutputCompact {
			fmt.Fprintln(w, e)
			continue
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, e)
	}
	return nil
}

// WritePopular writes popular search terms with their counts.
func WritePopular(w io.Writer, terms []history.TermCount, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"terms": terms})
	}
	if len(terms) == 0 && format == OutputText {
		fmt.Fprintln(w, "No popular terms yet.")
		return nil
	}
	for _, t := range terms {
		if format == OutputCompact {
			fmt.Fprintf(w, "%s\t%d\n", t.Term, t.Count)
			continue
		}
		fmt.Fprintf(w, "%-24s %d\n", t.Term, t.Count)
	}
	return nil
}

func writeSearchResultText(w io.Writer, collection string, res *models.SearchResult) {
	if res.Failed() {
		fmt.Fprintf(w, "\n[%s] search failed: %s\n", collection, res.Error)
		return
	}
	fmt.Fprintf(w, "\n[%s] %d results (showing %d) in %.2fms\n", collection, res.TotalCount, len(res.Items), res.SearchTimeMs)
	for _, rec := range res.Items {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "ID: %s\n", rec.ID())
		if title := recordTitle(rec); title != "" {
			fmt.Fprintf(w, "Title: %s\n", title)
		}
		for _, key := range sortedKeys(rec) {
			if key == "id" || key == "title" {
				continue
			}
			text := record.Text(rec[key])
			if text == "" {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", key, utils.Truncate(utils.OneLine(text), maxFieldWidth))
		}
	}
	for _, f := range res.Facets {
		if len(f.Values) == 0 {
			continue
		}
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = fmt.Sprintf("%s (%d)", v.Value, v.Count)
		}
		fmt.Fprintf(w, "Facet %s: %s\n", f.Field, strings.Join(parts, ", "))
	}
	if len(res.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(res.Suggestions, ", "))
	}
}

func recordTitle(rec models.Record) string {
	for _, f := range titleFields {
		if t := record.FieldText(rec, f); t != "" {
			return utils.Truncate(utils.OneLine(t), maxFieldWidth)
		}
	}
	return ""
}

func sortedKeys(rec models.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
