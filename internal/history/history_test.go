package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(storage.NewMemoryStorage(), config.HistoryConfig{})
}

func TestAddToHistory(t *testing.T) {
	tests := []struct {
		name    string
		queries []string
		want    string
	}{
		{"most recent first", []string{"quran", "tajweed", "nahw"}, "nahw,tajweed,quran"},
		{"duplicate moves to front", []string{"quran", "tajweed", "quran"}, "quran,tajweed"},
		{"same query twice", []string{"quran", "quran"}, "quran"},
		{"trimmed", []string{"  seerah  "}, "seerah"},
		{"blank ignored", []string{"quran", "   ", ""}, "quran"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t)
			ctx := context.Background()
			for _, q := range tt.queries {
				if err := s.AddToHistory(ctx, q); err != nil {
					t.Fatal(err)
				}
			}
			got, err := s.History(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("History = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestAddToHistory_cap(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		if err := s.AddToHistory(ctx, fmt.Sprintf("query %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.History(ctx)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	if got[0] != "query 24" || got[19] != "query 5" {
		t.Errorf("got first %q last %q", got[0], got[19])
	}
}

func TestHistory_emptyIsNotNil(t *testing.T) {
	got, err := newService(t).History(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("History = %#v, want empty slice", got)
	}
}

func TestClearHistory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_ = s.AddToHistory(ctx, "quran")
	_ = s.TrackSearchTerm(ctx, "quran")
	if err := s.ClearHistory(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ := s.History(ctx)
	if len(got) != 0 {
		t.Errorf("History after clear = %v", got)
	}
	popular, _ := s.PopularSearchTerms(ctx)
	if len(popular) != 1 {
		t.Errorf("popular terms should survive clear, got %v", popular)
	}
}

func TestPopularSearchTerms(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for _, q := range []string{"Quran tafsir", "quran", "of tajweed", "nahw sarf", "TAFSIR quran", "ab"} {
		if err := s.TrackSearchTerm(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.PopularSearchTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []TermCount{
		{Term: "quran", Count: 3},
		{Term: "tafsir", Count: 2},
		{Term: "nahw", Count: 1},
		{Term: "sarf", Count: 1},
		{Term: "tajweed", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPopularSearchTerms_limit(t *testing.T) {
	s := NewService(storage.NewMemoryStorage(), config.HistoryConfig{PopularLimit: 2})
	ctx := context.Background()
	_ = s.TrackSearchTerm(ctx, "aaa bbb ccc bbb")
	got, _ := s.PopularSearchTerms(ctx)
	if len(got) != 2 || got[0].Term != "bbb" || got[1].Term != "aaa" {
		t.Errorf("got %v", got)
	}
}

func TestService_corruptValueTreatedAsEmpty(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()
	_ = store.Set(ctx, HistoryKey, []byte("not json"))
	s := NewService(store, config.HistoryConfig{})
	if err := s.AddToHistory(ctx, "fiqh"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.History(ctx)
	if strings.Join(got, ",") != "fiqh" {
		t.Errorf("History = %v", got)
	}
}

func TestService_persistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	s := NewService(store, config.HistoryConfig{})
	s.Record(ctx, "tajweed rules")
	s.Record(ctx, "tajweed")
	_ = store.Close()

	store, err = storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	s = NewService(store, config.HistoryConfig{})
	hist, _ := s.History(ctx)
	if strings.Join(hist, ",") != "tajweed,tajweed rules" {
		t.Errorf("History = %v", hist)
	}
	popular, _ := s.PopularSearchTerms(ctx)
	if len(popular) == 0 || popular[0] != (TermCount{Term: "tajweed", Count: 2}) {
		t.Errorf("PopularSearchTerms = %v", popular)
	}
}

func TestService_concurrentRecord(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record(ctx, "hadith")
		}()
	}
	wg.Wait()
	popular, _ := s.PopularSearchTerms(ctx)
	if len(popular) != 1 || popular[0].Count != 50 {
		t.Errorf("PopularSearchTerms = %v, want hadith x50", popular)
	}
}
