package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/models"
)

func sampleResult() *models.SearchResult {
	res := models.EmptyResult()
	res.Items = []models.Record{
		{"id": "n1", "title": "Arabic Grammar Basics", "subject": "arabic", "tags": []any{"grammar", "nahw"}},
		{"id": "n3", "title": "Grammar Exercises", "content": "line one\nline two"},
	}
	res.TotalCount = 2
	res.SearchTimeMs = 1.5
	res.Suggestions = []string{"grammar"}
	res.Facets = []models.Facet{{Field: "subject", Values: []models.FacetValue{{Value: "arabic", Count: 1}}}}
	return res
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" compact ", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteSearchResult_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResult(&buf, "notes", sampleResult(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"[notes] 2 results (showing 2)",
		"ID: n1",
		"Title: Arabic Grammar Basics",
		"tags: grammar nahw",
		"content: line one line two",
		"Facet subject: arabic (1)",
		"Did you mean: grammar",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResult_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResult(&buf, "notes", sampleResult(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "notes\tn1\tArabic Grammar Basics" {
		t.Errorf("compact output = %q", buf.String())
	}
}

func TestWriteSearchResult_failed(t *testing.T) {
	res := models.EmptyResult()
	res.Error = "invalid search options: offset must be non-negative, got -1"
	for _, format := range []OutputFormat{OutputText, OutputCompact} {
		var buf bytes.Buffer
		if err := WriteSearchResult(&buf, "notes", res, format); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "offset must be non-negative") {
			t.Errorf("%s output missing error: %q", format, buf.String())
		}
	}
}

func TestWriteSearchResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResult(&buf, "notes", sampleResult(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.SearchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.TotalCount != 2 || len(decoded.Items) != 2 || decoded.Items[0].ID() != "n1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteGlobalResult(t *testing.T) {
	failed := models.EmptyResult()
	failed.Error = "unavailable"
	res := &models.GlobalSearchResult{
		Query:        "grammar",
		Collections:  []string{"notes", "recordings"},
		Results:      map[string]*models.SearchResult{"notes": sampleResult(), "recordings": failed},
		TotalResults: 2,
	}
	var buf bytes.Buffer
	if err := WriteGlobalResult(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `2 results for "grammar" across 2 collections`) {
		t.Errorf("missing header:\n%s", out)
	}
	if strings.Index(out, "[notes]") > strings.Index(out, "[recordings]") {
		t.Errorf("collections out of order:\n%s", out)
	}

	buf.Reset()
	if err := WriteGlobalResult(&buf, res, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.GlobalSearchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Results["recordings"].Error != "unavailable" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteHistoryAndPopular(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteHistory(&buf, nil, OutputText)
	if !strings.Contains(buf.String(), "No search history") {
		t.Errorf("empty history: %q", buf.String())
	}
	buf.Reset()
	_ = WriteHistory(&buf, []string{"quran", "tajweed"}, OutputText)
	if !strings.Contains(buf.String(), " 1. quran") || !strings.Contains(buf.String(), " 2. tajweed") {
		t.Errorf("history text: %q", buf.String())
	}
	buf.Reset()
	_ = WriteHistory(&buf, []string{"quran"}, OutputCompact)
	if buf.String() != "quran\n" {
		t.Errorf("history compact: %q", buf.String())
	}

	buf.Reset()
	_ = WritePopular(&buf, []history.TermCount{{Term: "quran", Count: 3}}, OutputCompact)
	if buf.String() != "quran\t3\n" {
		t.Errorf("popular compact: %q", buf.String())
	}
	buf.Reset()
	_ = WritePopular(&buf, []history.TermCount{{Term: "quran", Count: 3}}, OutputJSON)
	var decoded struct {
		Terms []history.TermCount `json:"terms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded.Terms) != 1 {
		t.Errorf("popular json: %q %v", buf.String(), err)
	}
}
