package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/archive"
	"github.com/hyperjump/miru/internal/itemid"
	"github.com/hyperjump/miru/internal/metrics"
	"github.com/hyperjump/miru/internal/models"
)

// imageCacheControl lets clients and proxies cache served images; the corpus
// is effectively immutable between reindexes.
const imageCacheControl = "public, max-age=3600"

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))

	metrics.SearchesTotal.Inc()
	start := time.Now()
	response, err := s.engine.Search(r.Context(), query)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

// parseSearchQuery reads a SearchQuery from URL query parameters.
func parseSearchQuery(r *http.Request) (*models.SearchQuery, error) {
	q := r.URL.Query()
	query := &models.SearchQuery{
		Query:    q.Get("query"),
		Location: q.Get("location"),
		Weather:  q.Get("weather"),
	}
	if query.Query == "" {
		return nil, errors.New("query parameter is required")
	}

	var err error
	if query.Limit, err = intParam(q.Get("limit"), 0); err != nil {
		return nil, errors.New("limit must be an integer")
	}
	if query.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		return nil, errors.New("offset must be an integer")
	}
	if v := q.Get("min_size"); v != "" {
		if query.MinSize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, errors.New("min_size must be an integer")
		}
	}
	if v := q.Get("max_size"); v != "" {
		if query.MaxSize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, errors.New("max_size must be an integer")
		}
	}
	if v := q.Get("min_relevance"); v != "" {
		if query.MinRelevance, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, errors.New("min_relevance must be a number")
		}
	}
	return query, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	counts := s.store.Current().Locations()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"locations": counts,
		"total":     len(counts),
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	entry := chi.URLParam(r, "*")
	id := itemid.Make(location, entry)

	path, _, cleanup, err := s.retriever.FetchToFile(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "image not found")
		case errors.Is(err, archive.ErrStorage):
			s.logger.Error("image fetch failed", zap.String("id", id), zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, "storage error")
		default:
			s.logger.Error("image fetch failed", zap.String("id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer cleanup()

	w.Header().Set("Cache-Control", imageCacheControl)
	http.ServeFile(w, r, path)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("reindex requested")
	c, err := s.rebuilder.Rebuild(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.CatalogItems.Set(float64(c.Len()))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reindexed",
		"items":  c.Len(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.store.Current()
	resp := map[string]interface{}{
		"items":     c.Len(),
		"locations": len(c.Locations()),
		"config": map[string]interface{}{
			"corpus_root":   s.config.Corpus.Root,
			"vlm_enabled":   s.config.VLM.Enabled,
			"vlm_model":     s.config.VLM.Model,
			"candidate_cap": s.config.Search.CandidateCap,
		},
	}
	if last := s.rebuilder.LastBuilt(); !last.IsZero() {
		resp["last_indexed"] = last.UTC().Format(time.RFC3339)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
