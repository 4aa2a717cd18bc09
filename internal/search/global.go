package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/models"
)

// DefaultGlobalCollections are searched when neither the caller nor the config names any.
var DefaultGlobalCollections = []string{config.CollectionRecordings, config.CollectionNotes, config.CollectionExercises}

// GlobalSearch runs the same query over several collections and reports each
// result separately. With no collections given, the configured set is used.
// A failing collection keeps its failure envelope and counts as zero toward TotalResults.
func (e *Engine) GlobalSearch(ctx context.Context, src CollectionSource, query string, opts models.SearchOptions, collections ...string) *models.GlobalSearchResult {
	start := time.Now()
	names := e.globalCollections(collections)
	results := make([]*models.SearchResult, len(names))

	g := new(errgroup.Group)
	if e.config.GlobalConcurrency > 0 {
		g.SetLimit(e.config.GlobalConcurrency)
	}
	for i, name := range names {
		g.Go(func() error {
			// Failures are carried in the envelope, never returned.
			results[i], _ = e.SearchCollection(ctx, src, name, query, opts)
			return nil
		})
	}
	_ = g.Wait()

	out := &models.GlobalSearchResult{
		Query:       query,
		Results:     make(map[string]*models.SearchResult, len(names)),
		Collections: names,
	}
	for i, name := range names {
		out.Results[name] = results[i]
		if !results[i].Failed() {
			out.TotalResults += results[i].TotalCount
		}
	}
	out.SearchTimeMs = elapsedMs(start)
	return out
}

func (e *Engine) globalCollections(requested []string) []string {
	if len(requested) == 0 {
		requested = e.config.GlobalCollections
	}
	if len(requested) == 0 {
		requested = DefaultGlobalCollections
	}
	names := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, ok := seen[name]; ok || name == "" {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
