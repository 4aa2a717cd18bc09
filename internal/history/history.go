// Package history keeps the recent-search list and popular-term counters.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/keyword"
	"github.com/hyperjump/portalsearch/internal/storage"
)

// Keys under which the service persists its state.
const (
	HistoryKey = "search_history"
	PopularKey = "popular_search_terms"
)

// TermCount is a search term with the number of times it was searched.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Service records searches in a KeyValueStore. Methods are safe for concurrent use.
type Service struct {
	store  storage.KeyValueStore
	cfg    config.HistoryConfig
	logger *zap.Logger
	mu     sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. If nil, a no-op logger is used.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a history service backed by store. Zero limits in cfg take their defaults.
func NewService(store storage.KeyValueStore, cfg config.HistoryConfig, opts ...Option) *Service {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 20
	}
	if cfg.PopularLimit <= 0 {
		cfg.PopularLimit = 10
	}
	if cfg.MinTermLength <= 0 {
		cfg.MinTermLength = 3
	}
	s := &Service{store: store, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// History returns past queries, most recent first.
func (s *Service) History(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx)
}

// AddToHistory puts the trimmed query at the front of the history, removing
// any earlier occurrence and dropping the oldest entries past the cap.
// Blank queries are ignored.
func (s *Service) AddToHistory(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(entries)+1)
	next = append(next, query)
	for _, e := range entries {
		if e != query {
			next = append(next, e)
		}
	}
	if len(next) > s.cfg.MaxEntries {
		next = next[:s.cfg.MaxEntries]
	}
	return s.save(ctx, HistoryKey, next)
}

// ClearHistory removes all history entries. Popular-term counters are kept.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// TrackSearchTerm increments the counter of every lowercase term in query
// that is at least MinTermLength runes long.
func (s *Service) TrackSearchTerm(ctx context.Context, query string) error {
	var terms []string
	for _, t := range keyword.Tokenize(query) {
		if utf8.RuneCountInString(t) >= s.cfg.MinTermLength {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.loadCounts(ctx)
	if err != nil {
		return err
	}
	for _, t := range terms {
		counts[t]++
	}
	return s.save(ctx, PopularKey, counts)
}

// PopularSearchTerms returns the most searched terms, highest count first,
// ties broken alphabetically.
func (s *Service) PopularSearchTerms(ctx context.Context) ([]TermCount, error) {
	s.mu.Lock()
	counts, err := s.loadCounts(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]TermCount, 0, len(counts))
	for term, n := range counts {
		out = append(out, TermCount{Term: term, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.cfg.PopularLimit {
		out = out[:s.cfg.PopularLimit]
	}
	return out, nil
}

// Record adds query to the history and tracks its terms. Failures are logged, not returned.
func (s *Service) Record(ctx context.Context, query string) {
	if err := s.AddToHistory(ctx, query); err != nil {
		s.logger.Warn("failed to add search to history", zap.Error(err))
	}
	if err := s.TrackSearchTerm(ctx, query); err != nil {
		s.logger.Warn("failed to track search terms", zap.Error(err))
	}
}

func (s *Service) loadHistory(ctx context.Context) ([]string, error) {
	entries := []string{}
	if err := s.load(ctx, HistoryKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) loadCounts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if err := s.load(ctx, PopularKey, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// load decodes the value under key into v. A missing key leaves v untouched.
// A corrupt value is logged and treated as missing.
func (s *Service) load(ctx context.Context, key string, v any) error {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding unreadable value", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
