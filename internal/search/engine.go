// Package search runs field-boosted keyword searches over record collections.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/facet"
	"github.com/hyperjump/portalsearch/internal/filter"
	"github.com/hyperjump/portalsearch/internal/keyword"
	"github.com/hyperjump/portalsearch/internal/models"
)

// ErrInvalidOptions is returned when pagination or ordering options are out of range.
var ErrInvalidOptions = errors.New("invalid search options")

// CollectionSource loads the records of a named collection.
type CollectionSource interface {
	ListRecords(ctx context.Context, collection string) ([]models.Record, error)
}

// Engine scores, filters, facets and paginates record collections.
// It keeps no per-query state and is safe for concurrent use.
type Engine struct {
	config *config.SearchConfig
	logger *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for search diagnostics. If nil, a no-op logger is used.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine. cfg supplies collection profiles and global
// search settings; it may be nil.
func NewEngine(cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	e := &Engine{config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Search runs query over records. On failure it returns a well-shaped empty
// envelope carrying the error message, together with the error.
func (e *Engine) Search(records []models.Record, query string, opts models.SearchOptions) (res *models.SearchResult, err error) {
	start := time.Now()
	defer e.recoverSearch(start, &res, &err)

	res, err = e.search(records, query, opts)
	if err != nil {
		return e.fail(start, err)
	}
	res.SearchTimeMs = elapsedMs(start)
	e.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("total", res.TotalCount),
		zap.Int("returned", len(res.Items)),
		zap.Float64("ms", res.SearchTimeMs),
	)
	return res, nil
}

// SearchCollection loads a collection from src and searches it with opts
// merged over the collection's configured profile.
func (e *Engine) SearchCollection(ctx context.Context, src CollectionSource, collection, query string, opts models.SearchOptions) (res *models.SearchResult, err error) {
	start := time.Now()
	defer e.recoverSearch(start, &res, &err)

	records, err := src.ListRecords(ctx, collection)
	if err != nil {
		return e.fail(start, fmt.Errorf("failed to load collection %s: %w", collection, err))
	}
	res, err = e.search(records, query, e.ResolveOptions(collection, opts))
	if err != nil {
		return e.fail(start, fmt.Errorf("collection %s: %w", collection, err))
	}
	res.SearchTimeMs = elapsedMs(start)
	return res, nil
}

// ResolveOptions fills options the caller left unset from the collection's profile.
// Fuzzy and CaseSensitive are enabled when either side enables them.
func (e *Engine) ResolveOptions(collection string, opts models.SearchOptions) models.SearchOptions {
	profile, ok := e.config.Collections[collection]
	if !ok {
		return opts
	}
	if len(opts.Fields) == 0 {
		opts.Fields = profile.Fields
	}
	if opts.Boost == nil {
		opts.Boost = profile.Boost
	}
	if opts.Facets == nil {
		opts.Facets = profile.Facets
	}
	if opts.SuggestionFields == nil {
		opts.SuggestionFields = profile.SuggestionFields
	}
	opts.Fuzzy = opts.Fuzzy || profile.Fuzzy
	opts.CaseSensitive = opts.CaseSensitive || profile.CaseSensitive
	return opts
}

func (e *Engine) search(records []models.Record, query string, opts models.SearchOptions) (*models.SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record at index %d is nil", i)
		}
	}

	candidates := records
	blank := strings.TrimSpace(query) == ""
	if !blank {
		ranked := keyword.NewScorer(query, opts.SearchConfig).Rank(records)
		candidates = make([]models.Record, len(ranked))
		for i, c := range ranked {
			candidates[i] = c.Record
			if ce := e.logger.Check(zap.DebugLevel, "scored record"); ce != nil {
				ce.Write(zap.String("id", c.Record.ID()), zap.Float64("score", c.Score), zap.Strings("fields", c.MatchedFields))
			}
		}
	}

	conds := filter.Parse(opts.Filters)
	for _, c := range conds {
		if c.Unknown != "" {
			e.logger.Warn("unknown filter operator, using equality", zap.String("field", c.Field), zap.String("operator", c.Unknown))
		}
	}
	filtered := filter.Apply(candidates, conds)

	res := models.EmptyResult()
	res.Facets = facet.Aggregate(filtered, opts.Facets)
	sorted := SortRecords(filtered, opts.OrderBy, opts.OrderDirection)
	res.TotalCount = len(sorted)
	res.Items = Paginate(sorted, opts.Offset, opts.Limit)

	if !blank {
		fields := opts.SuggestionFields
		if len(fields) == 0 {
			fields = opts.Fields
		}
		res.Suggestions = keyword.Suggest(query, records, fields)
	}
	return res, nil
}

func (e *Engine) fail(start time.Time, err error) (*models.SearchResult, error) {
	res := models.EmptyResult()
	res.Error = err.Error()
	res.SearchTimeMs = elapsedMs(start)
	e.logger.Warn("search failed", zap.Error(err))
	return res, err
}

func (e *Engine) recoverSearch(start time.Time, res **models.SearchResult, err *error) {
	if r := recover(); r != nil {
		*res, *err = e.fail(start, fmt.Errorf("search panicked: %v", r))
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
