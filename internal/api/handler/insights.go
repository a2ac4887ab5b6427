package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brandpulse/brandpulse/internal/aggregate"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/cache"
	"github.com/brandpulse/brandpulse/internal/store"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
	insightsCacheTTL  = 5 * time.Minute
)

// InsightHandlers serves the read-side aggregate views. Responses are cached
// briefly in Redis keyed by brand and window; aggregates are recomputed from
// immutable rows so a stale read is at worst slightly behind a running
// collection.
type InsightHandlers struct {
	store  store.Store
	cache  cache.Cache
	brands *BrandHandlers
}

func NewInsightHandlers(st store.Store, ca cache.Cache) *InsightHandlers {
	return &InsightHandlers{store: st, cache: ca, brands: NewBrandHandlers(st)}
}

// Overview returns mention rates, sentiment breakdown, and the per-day trend
// for one brand over an optional trailing window.
func (h *InsightHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	days := windowDays(r)

	key := cache.OverviewKey(brand.ID, days)
	if cached, found, err := h.cache.Get(r.Context(), key); err == nil && found {
		writeCachedJSON(w, cached)
		return
	}

	results, err := h.store.ListResultsByBrand(r.Context(), brand.ID, windowFilter(days))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load results", nil)
		return
	}

	overview := aggregate.ComputeOverview(results)
	h.cacheAndRespond(w, r, key, overview)
}

// Comparison returns brand-versus-competitor aggregates and per-query winners.
func (h *InsightHandlers) Comparison(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	days := windowDays(r)

	key := cache.ComparisonKey(brand.ID, days)
	if cached, found, err := h.cache.Get(r.Context(), key); err == nil && found {
		writeCachedJSON(w, cached)
		return
	}

	results, err := h.store.ListResultsByBrand(r.Context(), brand.ID, windowFilter(days))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load results", nil)
		return
	}
	competitors, err := h.store.ListCompetitors(r.Context(), brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load competitors", nil)
		return
	}

	comparison := aggregate.ComputeComparison(results, brand, competitors)
	h.cacheAndRespond(w, r, key, comparison)
}

func (h *InsightHandlers) cacheAndRespond(w http.ResponseWriter, r *http.Request, key string, data any) {
	envelope := map[string]any{"data": data}
	body, err := json.Marshal(envelope)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode response", nil)
		return
	}
	if err := h.cache.Set(r.Context(), key, body, insightsCacheTTL); err != nil {
		slog.Warn("caching aggregate failed", "key", key, "error", err)
	}
	writeCachedJSON(w, body)
}

func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// windowDays parses ?days= with a default and an upper bound.
func windowDays(r *http.Request) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultWindowDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return defaultWindowDays
	}
	if days > maxWindowDays {
		return maxWindowDays
	}
	return days
}

func windowFilter(days int) store.ResultFilter {
	return store.ResultFilter{
		Since: time.Now().UTC().AddDate(0, 0, -days),
	}
}
