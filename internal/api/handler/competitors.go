package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/plan"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// CompetitorHandlers serves competitor tracking under a brand.
type CompetitorHandlers struct {
	store  store.Store
	brands *BrandHandlers
}

func NewCompetitorHandlers(st store.Store) *CompetitorHandlers {
	return &CompetitorHandlers{store: st, brands: NewBrandHandlers(st)}
}

func (h *CompetitorHandlers) Create(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	tier, _ := mw.GetPlanTier(r)

	var req brandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
		return
	}

	count, err := h.store.CountCompetitors(r.Context(), brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check plan limits", nil)
		return
	}
	if limits := plan.LimitsFor(tier); count >= limits.Competitors {
		response.Error(w, http.StatusForbidden, "PLAN_LIMIT_EXCEEDED",
			"Competitor limit reached for your plan", map[string]int{"limit": limits.Competitors})
		return
	}

	comp := &models.Competitor{
		ID:        uuid.New(),
		BrandID:   brand.ID,
		Name:      req.Name,
		Aliases:   req.Aliases,
		CreatedAt: time.Now().UTC(),
	}
	if comp.Aliases == nil {
		comp.Aliases = []string{}
	}

	if err := h.store.CreateCompetitor(r.Context(), comp); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create competitor", nil)
		return
	}
	response.Created(w, comp)
}

func (h *CompetitorHandlers) List(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}

	comps, err := h.store.ListCompetitors(r.Context(), brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list competitors", nil)
		return
	}
	if comps == nil {
		comps = []*models.Competitor{}
	}
	response.JSON(w, comps)
}

func (h *CompetitorHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	compID, err := uuid.Parse(chi.URLParam(r, "competitorID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid competitor ID", nil)
		return
	}

	if err := h.store.DeleteCompetitor(r.Context(), compID, brand.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Competitor not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete competitor", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
