package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/plan"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// QueryHandlers serves monitored query CRUD under a brand.
type QueryHandlers struct {
	store  store.Store
	brands *BrandHandlers
}

func NewQueryHandlers(st store.Store) *QueryHandlers {
	return &QueryHandlers{store: st, brands: NewBrandHandlers(st)}
}

type queryRequest struct {
	QueryText string  `json:"query_text"`
	Category  *string `json:"category"`
	IsActive  *bool   `json:"is_active"`
}

func (h *QueryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	tier, _ := mw.GetPlanTier(r)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	req.QueryText = strings.TrimSpace(req.QueryText)
	if req.QueryText == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "query_text is required", nil)
		return
	}

	count, err := h.store.CountQueries(r.Context(), brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check plan limits", nil)
		return
	}
	if limits := plan.LimitsFor(tier); count >= limits.QueriesPerBrand {
		response.Error(w, http.StatusForbidden, "PLAN_LIMIT_EXCEEDED",
			"Query limit reached for your plan", map[string]int{"limit": limits.QueriesPerBrand})
		return
	}

	now := time.Now().UTC()
	query := &models.MonitoredQuery{
		ID:        uuid.New(),
		BrandID:   brand.ID,
		QueryText: req.QueryText,
		Category:  req.Category,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.IsActive != nil {
		query.IsActive = *req.IsActive
	}

	if err := h.store.CreateQuery(r.Context(), query); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create query", nil)
		return
	}
	response.Created(w, query)
}

func (h *QueryHandlers) List(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}

	queries, err := h.store.ListQueries(r.Context(), brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list queries", nil)
		return
	}
	if queries == nil {
		queries = []*models.MonitoredQuery{}
	}
	response.JSON(w, queries)
}

func (h *QueryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query ID", nil)
		return
	}

	query, err := h.store.GetQuery(r.Context(), queryID)
	if err != nil || query.BrandID != brand.ID {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	if text := strings.TrimSpace(req.QueryText); text != "" {
		query.QueryText = text
	}
	if req.Category != nil {
		query.Category = req.Category
	}
	if req.IsActive != nil {
		query.IsActive = *req.IsActive
	}
	query.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateQuery(r.Context(), query); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update query", nil)
		return
	}
	response.JSON(w, query)
}

func (h *QueryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query ID", nil)
		return
	}

	if err := h.store.DeleteQuery(r.Context(), queryID, brand.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete query", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
