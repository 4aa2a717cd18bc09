package search

import (
	"strings"
	"testing"

	"github.com/hyperjump/portalsearch/internal/models"
)

func TestSortRecords(t *testing.T) {
	records := []models.Record{
		{"id": "a", "teacher": "Ustadh Bilal"},
		{"id": "b", "teacher": "Ustadha Maryam"},
		{"id": "c"},
		{"id": "d", "teacher": "Ustadh Bilal"},
	}
	tests := []struct {
		name      string
		orderBy   string
		direction string
		want      string
	}{
		{"no order keeps input", "", "", "a,b,c,d"},
		{"ascending default", "teacher", "", "c,a,d,b"},
		{"ascending explicit", "teacher", models.OrderAsc, "c,a,d,b"},
		{"descending keeps ties in input order", "teacher", models.OrderDesc, "b,a,d,c"},
		{"missing field sorts as empty text", "room", models.OrderDesc, "a,b,c,d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortRecords(records, tt.orderBy, tt.direction)
			if s := strings.Join(ids(got), ","); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
	if s := strings.Join(ids(records), ","); s != "a,b,c,d" {
		t.Errorf("input was reordered: %s", s)
	}
}

func TestPaginate(t *testing.T) {
	records := []models.Record{{"id": "1"}, {"id": "2"}, {"id": "3"}, {"id": "4"}}
	tests := []struct {
		name          string
		offset, limit int
		want          string
	}{
		{"everything", 0, 0, "1,2,3,4"},
		{"zero limit is unbounded after offset", 1, 0, "2,3,4"},
		{"first page", 0, 2, "1,2"},
		{"second page", 2, 2, "3,4"},
		{"partial last page", 3, 2, "4"},
		{"offset at end", 4, 2, ""},
		{"offset past end", 9, 0, ""},
		{"limit larger than set", 1, 50, "2,3,4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(records, tt.offset, tt.limit)
			if got == nil {
				t.Fatal("Paginate must not return nil")
			}
			if s := strings.Join(ids(got), ","); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}
