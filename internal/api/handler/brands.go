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

// BrandHandlers serves brand CRUD under /api/v1/brands.
type BrandHandlers struct {
	store store.Store
}

func NewBrandHandlers(st store.Store) *BrandHandlers {
	return &BrandHandlers{store: st}
}

type brandRequest struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

func (req *brandRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	seen := map[string]bool{}
	for i, a := range req.Aliases {
		req.Aliases[i] = strings.TrimSpace(a)
		lower := strings.ToLower(req.Aliases[i])
		if req.Aliases[i] == "" || seen[lower] {
			return "aliases must be non-empty and unique"
		}
		seen[lower] = true
	}
	return ""
}

func (h *BrandHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
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

	count, err := h.store.CountBrands(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check plan limits", nil)
		return
	}
	if limits := plan.LimitsFor(tier); count >= limits.Brands {
		response.Error(w, http.StatusForbidden, "PLAN_LIMIT_EXCEEDED",
			"Brand limit reached for your plan", map[string]int{"limit": limits.Brands})
		return
	}

	now := time.Now().UTC()
	brand := &models.Brand{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Aliases:   req.Aliases,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if brand.Aliases == nil {
		brand.Aliases = []string{}
	}

	if err := h.store.CreateBrand(r.Context(), brand); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create brand", nil)
		return
	}

	response.Created(w, brand)
}

func (h *BrandHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	brands, err := h.store.ListBrands(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list brands", nil)
		return
	}
	if brands == nil {
		brands = []*models.Brand{}
	}
	response.JSON(w, brands)
}

func (h *BrandHandlers) Get(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.loadBrand(w, r)
	if !ok {
		return
	}
	response.JSON(w, brand)
}

func (h *BrandHandlers) Update(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.loadBrand(w, r)
	if !ok {
		return
	}

	var req brandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
		return
	}

	brand.Name = req.Name
	brand.Aliases = req.Aliases
	if brand.Aliases == nil {
		brand.Aliases = []string{}
	}
	brand.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateBrand(r.Context(), brand); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Brand not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update brand", nil)
		return
	}
	response.JSON(w, brand)
}

func (h *BrandHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}
	brandID, err := uuid.Parse(chi.URLParam(r, "brandID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid brand ID", nil)
		return
	}

	if err := h.store.DeleteBrand(r.Context(), brandID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Brand not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete brand", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadBrand resolves {brandID} scoped to the authenticated user, writing the
// error response itself when the lookup fails.
func (h *BrandHandlers) loadBrand(w http.ResponseWriter, r *http.Request) (*models.Brand, bool) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, false
	}
	brandID, err := uuid.Parse(chi.URLParam(r, "brandID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid brand ID", nil)
		return nil, false
	}

	brand, err := h.store.GetBrand(r.Context(), brandID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Brand not found", nil)
			return nil, false
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load brand", nil)
		return nil, false
	}
	return brand, true
}
