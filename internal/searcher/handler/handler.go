// Package handler serves the command library over HTTP: prefix search,
// command lookup with fuzzy suggestions, category listings, and the admin
// endpoints for authoring commands and reloading the index.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/admin"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/render"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/resolver"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/metrics"
)

// AdminTokenHeader carries the admin token; "Authorization: Bearer" is
// accepted as well.
const AdminTokenHeader = "X-Admin-Token"

const (
	maxDraftBytes  = 1 << 20
	numSuggestions = 5
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
}

// Engine publishes index states and rebuilds them on demand.
type Engine interface {
	Current() *indexer.State
	Reload(ctx context.Context) (*indexer.State, error)
}

// Config wires a Handler. Cache, Collector and Metrics are optional.
// An empty AdminToken disables the admin endpoints; an empty CommandsDir
// disables command authoring.
type Config struct {
	Engine       Engine
	Executor     SearchExecutor
	Cache        *cache.QueryCache
	Collector    *analytics.Collector
	Metrics      *metrics.Metrics
	AdminToken   string
	CommandsDir  string
	DefaultLimit int
	MaxResults   int
}

type Handler struct {
	engine       Engine
	executor     SearchExecutor
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	adminToken   string
	commandsDir  string
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(cfg Config) *Handler {
	exec := cfg.Executor
	if exec == nil {
		exec = executor.New(cfg.Engine)
	}
	return &Handler{
		engine:       cfg.Engine,
		executor:     exec,
		cache:        cfg.Cache,
		collector:    cfg.Collector,
		metrics:      cfg.Metrics,
		adminToken:   strings.TrimSpace(cfg.AdminToken),
		commandsDir:  cfg.CommandsDir,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/commands", h.ListCommands)
	mux.HandleFunc("GET /api/v1/commands/{name}", h.GetCommand)
	mux.HandleFunc("GET /api/v1/commands/{name}/markdown", h.GetCommandMarkdown)
	mux.HandleFunc("GET /api/v1/categories", h.Categories)
	mux.HandleFunc("GET /api/v1/template", h.Template)
	mux.HandleFunc("GET /api/v1/index", h.IndexInfo)
	mux.HandleFunc("POST /api/v1/admin/commands", h.requireAdmin(h.CreateCommand))
	mux.HandleFunc("POST /api/v1/reload", h.requireAdmin(h.Reload))
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.requireAdmin(h.CacheInvalidate))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit <= 0 || limit > h.maxResults {
		limit = h.maxResults
	}
	var seq uint64
	if seqStr := r.URL.Query().Get("seq"); seqStr != "" {
		parsed, err := strconv.ParseUint(seqStr, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "seq must be a non-negative integer")
			return
		}
		seq = parsed
	}

	plan := parser.Parse(query)
	if category := r.URL.Query().Get("category"); category != "" {
		plan = plan.InCategory(category)
	}
	if plan.Empty() {
		h.writeJSON(w, http.StatusOK, &executor.SearchResult{
			Query:   query,
			Seq:     seq,
			Results: []ranker.Hit{},
		})
		return
	}

	st := h.engine.Current()
	if st == nil {
		h.writeError(w, http.StatusServiceUnavailable, "index is not ready")
		return
	}

	var result *executor.SearchResult
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, st.Generation, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	// Cached and singleflight results are shared between requests.
	out := *result
	out.Query = query
	out.Seq = seq

	latency := time.Since(start)
	log.Info("search completed",
		"query", query,
		"total_hits", out.TotalHits,
		"returned", len(out.Results),
		"cache_hit", cacheHit,
		"generation", out.Generation,
		"latency_ms", latency.Milliseconds(),
	)
	h.observeSearch(&out, cacheHit, latency)
	if h.collector != nil {
		eventType := analytics.EventSearch
		if out.TotalHits == 0 {
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SearchEvent{
			Type:       eventType,
			Query:      query,
			Terms:      plan.Terms,
			Category:   plan.Category,
			TotalHits:  out.TotalHits,
			Returned:   len(out.Results),
			LatencyMs:  float64(latency.Microseconds()) / 1000,
			CacheHit:   cacheHit,
			Generation: out.Generation,
			Timestamp:  time.Now().UTC(),
			RequestID:  logger.RequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, &out)
}

func (h *Handler) observeSearch(result *executor.SearchResult, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	resultType := "hit"
	if result.TotalHits == 0 {
		resultType = "zero"
	}
	cacheStatus := "none"
	if h.cache != nil {
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
}

type commandList struct {
	Generation uint64                  `json:"generation"`
	Count      int                     `json:"count"`
	Commands   []catalog.CommandRecord `json:"commands"`
}

func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	st, ok := h.current(w)
	if !ok {
		return
	}
	var records []catalog.CommandRecord
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		records = st.Store.ByCategory(category)
	} else {
		records = st.Store.All()
	}
	if records == nil {
		records = []catalog.CommandRecord{}
	}
	h.writeJSON(w, http.StatusOK, commandList{
		Generation: st.Generation,
		Count:      len(records),
		Commands:   records,
	})
}

type notFoundResponse struct {
	Error       string   `json:"error"`
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) GetCommand(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) GetCommandMarkdown(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, render.Markdown(rec)); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// resolve looks up the {name} path value and writes the 404 itself on a
// miss.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (catalog.CommandRecord, bool) {
	st, ok := h.current(w)
	if !ok {
		return catalog.CommandRecord{}, false
	}
	name := r.PathValue("name")
	rec, err := resolver.Resolve(st.Store, name)
	found := err == nil
	if h.metrics != nil {
		outcome := "found"
		if !found {
			outcome = "missing"
		}
		h.metrics.ResolveTotal.WithLabelValues(outcome).Inc()
	}
	if h.collector != nil {
		eventType := analytics.EventResolve
		if !found {
			eventType = analytics.EventResolveMiss
		}
		h.collector.Track(analytics.ResolveEvent{
			Type:      eventType,
			Name:      name,
			Found:     found,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(r.Context()),
		})
	}
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
			return catalog.CommandRecord{}, false
		}
		suggestions := resolver.SuggestNames(st.Store, name, numSuggestions)
		if suggestions == nil {
			suggestions = []string{}
		}
		h.writeJSON(w, http.StatusNotFound, notFoundResponse{
			Error:       err.Error(),
			Name:        name,
			Suggestions: suggestions,
		})
		return catalog.CommandRecord{}, false
	}
	return rec, true
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	st, ok := h.current(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"categories": st.Store.Categories(),
		"allowed":    catalog.AllowedCategories,
	})
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, admin.Template()); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) IndexInfo(w http.ResponseWriter, r *http.Request) {
	st, ok := h.current(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"generation":  st.Generation,
		"records":     st.Store.Len(),
		"terms":       st.Snapshot.TermCount(),
		"fingerprint": fmt.Sprintf("%016x", st.Fingerprint),
		"loaded_at":   st.LoadedAt.UTC().Format(time.RFC3339),
		"from_cache":  st.FromCache,
	})
}

// CreateCommand saves a YAML (or JSON) command draft into the commands
// directory and reloads the index so it becomes searchable.
func (h *Handler) CreateCommand(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if h.commandsDir == "" {
		h.writeError(w, http.StatusServiceUnavailable, "command authoring is disabled")
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDraftBytes+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(data) > maxDraftBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, "draft is too large")
		return
	}
	rec, err := admin.ParseDraft(data)
	if err == nil {
		if st := h.engine.Current(); st != nil && st.Store.Has(rec.Name) {
			err = apperrors.Newf(apperrors.ErrInvalidInput, http.StatusConflict, "command %q already exists", rec.Name)
		}
	}
	var path string
	if err == nil {
		path, err = admin.SaveNew(h.commandsDir, rec)
	}
	if err != nil {
		var issues *admin.IssuesError
		if errors.As(err, &issues) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "command draft has problems",
				"issues": issues.Issues,
			})
			return
		}
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("saving command failed", "error", err)
		}
		h.writeError(w, status, err.Error())
		return
	}
	log.Info("command created", "name", rec.Name, "path", path)

	resp := map[string]any{"name": rec.Name, "path": path}
	if st, err := h.reload(r.Context()); err != nil {
		resp["reload_error"] = err.Error()
	} else {
		resp["generation"] = st.Generation
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	st, err := h.reload(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrParse) || errors.Is(err, apperrors.ErrConfig) {
			status = http.StatusUnprocessableEntity
		}
		h.writeError(w, status, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"generation": st.Generation,
		"records":    st.Store.Len(),
		"from_cache": st.FromCache,
	})
}

func (h *Handler) reload(ctx context.Context) (*indexer.State, error) {
	start := time.Now()
	st, err := h.engine.Reload(ctx)
	elapsed := time.Since(start)

	status := "ok"
	event := analytics.ReloadEvent{
		Type:      analytics.EventReload,
		LatencyMs: float64(elapsed.Microseconds()) / 1000,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		status = "error"
		event.Error = err.Error()
		logger.FromContext(ctx).Error("index reload failed", "error", err)
	} else {
		event.Generation = st.Generation
		event.Records = st.Store.Len()
		event.FromCache = st.FromCache
	}
	if h.metrics != nil {
		h.metrics.IndexReloadsTotal.WithLabelValues(status).Inc()
		if err == nil {
			h.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
		}
	}
	if h.collector != nil {
		h.collector.Track(event)
	}
	return st, err
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	stats := h.cache.Stats()
	total := stats.Hits + stats.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"errors":   stats.Errors,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  stats.Breaker,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			h.writeError(w, http.StatusForbidden, "admin access is not configured")
			return
		}
		if !admin.TokenMatches(h.adminToken, adminToken(r)) {
			logger.FromContext(r.Context()).Warn("admin request rejected", "path", r.URL.Path)
			h.writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error())
			return
		}
		next(w, r)
	}
}

func adminToken(r *http.Request) string {
	if tok := r.Header.Get(AdminTokenHeader); tok != "" {
		return tok
	}
	auth := r.Header.Get("Authorization")
	if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return rest
	}
	return ""
}

func (h *Handler) current(w http.ResponseWriter) (*indexer.State, bool) {
	st := h.engine.Current()
	if st == nil {
		h.writeError(w, http.StatusServiceUnavailable, "index is not ready")
		return nil, false
	}
	return st, true
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
