// Package handler is the HTTP front end of the searcher: a JSON search API,
// an HTML search page and the documents the results link to.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/middleware"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
}

type Handler struct {
	executor     SearchExecutor
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	staticDir    string
	logger       *slog.Logger
}

// New creates a handler. queryCache and m may be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, m *metrics.Metrics, cfg config.SearchConfig) *Handler {
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		metrics:      m,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		staticDir:    cfg.StaticDir,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /query", h.Query)
	mux.HandleFunc("GET /static/", h.Static)
	mux.HandleFunc("GET /{$}", h.Home)
}

// Search answers GET /api/v1/search?q=...&limit=N.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, h.maxResults)
	}

	result, err := h.run(r.Context(), parser.Parse(query), limit)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		message := "search failed"
		if status == http.StatusBadRequest {
			message = err.Error()
		}
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// run executes plan through the cache when one is configured.
func (h *Handler) run(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	var (
		result   *executor.SearchResult
		err      error
		cacheHit bool
	)
	cacheStatus := "none"
	if h.cache != nil && !plan.Empty() {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			log.Debug("rejected query", "query", plan.RawQuery, "error", err)
		} else {
			log.Error("search execution failed", "query", plan.RawQuery, "error", err)
		}
		return nil, err
	}

	latency := time.Since(start)
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", plan.RawQuery,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
		"request_id", middleware.GetRequestID(ctx),
	)
	return result, nil
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
