package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/loader"
	"github.com/hyperjump/portalsearch/internal/metrics"
	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/search"
	"github.com/hyperjump/portalsearch/internal/storage"
)

// applyLimits fills a missing limit with the configured default and caps it at the maximum.
func (s *Server) applyLimits(opts *models.SearchOptions) {
	if opts.Limit == 0 {
		opts.Limit = s.config.Search.DefaultLimit
	}
	if maxLimit := s.config.Search.MaxLimit; maxLimit > 0 && opts.Limit > maxLimit {
		opts.Limit = maxLimit
	}
}

func (s *Server) recordSearch(r *http.Request, query string) {
	if s.history == nil || !s.config.History.RecordSearchesOrDefault() || strings.TrimSpace(query) == "" {
		return
	}
	s.history.Record(r.Context(), query)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.applyLimits(&req.SearchOptions)
	s.logger.Debug("search request", zap.String("collection", collection), zap.String("query", req.Query), zap.Int("limit", req.Limit))

	result, err := s.engine.SearchCollection(r.Context(), s.store, collection, req.Query, req.SearchOptions)
	metrics.ObserveSearch(collection, result.TotalCount, result.SearchTimeMs, err != nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrInvalidOptions) {
			status = http.StatusBadRequest
		}
		s.respondJSON(w, status, result)
		return
	}
	s.recordSearch(r, req.Query)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGlobalSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyLimits(&req.SearchOptions)
	s.logger.Debug("global search request", zap.String("query", req.Query), zap.Strings("collections", req.Collections))

	result := s.engine.GlobalSearch(r.Context(), s.store, req.Query, req.SearchOptions, req.Collections...)
	for name, res := range result.Results {
		metrics.ObserveSearch(name, res.TotalCount, res.SearchTimeMs, res.Failed())
	}
	s.recordSearch(r, req.Query)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.store.ListCollections(r.Context())
	if err != nil {
		s.logger.Error("list collections failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"collections": cols})
}

func (s *Server) handleUpsertRecords(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var records []models.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: expected an array of records")
		return
	}
	for _, rec := range records {
		if rec == nil {
			s.respondError(w, http.StatusBadRequest, "records must be objects")
			return
		}
	}
	loader.AssignIDs(records)
	if err := s.store.UpsertRecords(r.Context(), collection, records); err != nil {
		s.logger.Error("upsert records failed", zap.String("collection", collection), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID()
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"collection": collection, "ids": ids, "status": "stored"})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteRecord(r.Context(), collection, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.Error("delete record failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if err := s.store.DeleteCollection(r.Context(), collection); err != nil {
		s.logger.Error("delete collection failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.History(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.history.AddToHistory(r.Context(), body.Query); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.handleHistory(w, r)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.ClearHistory(r.Context()); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	terms, err := s.history.PopularSearchTerms(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"terms": terms})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := s.store.CountRecords(ctx, "")
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		s.logger.Error("status: list collections failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"records":     total,
		"collections": cols,
		"config": map[string]interface{}{
			"database_path":      s.config.Storage.DatabasePath,
			"default_limit":      s.config.Search.DefaultLimit,
			"max_limit":          s.config.Search.MaxLimit,
			"global_collections": s.config.Search.GlobalCollections,
			"record_searches":    s.config.History.RecordSearchesOrDefault(),
			"watch_directories":  s.config.Watch.Directories,
		},
	}
	if diskBytes, err := storage.DiskUsageBytes(storage.DatabaseFiles(s.config.Storage.DatabasePath)...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
