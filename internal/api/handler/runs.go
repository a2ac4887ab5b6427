package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/cache"
	"github.com/brandpulse/brandpulse/internal/orchestrator"
	"github.com/brandpulse/brandpulse/internal/store"
)

// RunHandlers serves manual run triggering and run status polling.
type RunHandlers struct {
	orch   *orchestrator.Orchestrator
	cache  cache.Cache
	brands *BrandHandlers
}

func NewRunHandlers(orch *orchestrator.Orchestrator, ca cache.Cache, st store.Store) *RunHandlers {
	return &RunHandlers{orch: orch, cache: ca, brands: NewBrandHandlers(st)}
}

// Trigger starts a collection run for one brand and returns 202 immediately;
// the run proceeds in the background.
func (h *RunHandlers) Trigger(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brands.loadBrand(w, r)
	if !ok {
		return
	}
	tier, _ := mw.GetPlanTier(r)

	summary, err := h.orch.TriggerRun(r.Context(), brand, tier)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoEnabledEngines) {
			response.Error(w, http.StatusUnprocessableEntity, "NO_ENABLED_ENGINES",
				"No engines are enabled for this brand's plan", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start run", nil)
		return
	}

	response.Accepted(w, summary)
}

// Status returns the cached summary for a run, pending or terminal.
func (h *RunHandlers) Status(w http.ResponseWriter, r *http.Request) {
	if _, ok := mw.GetUserID(r); !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid run ID", nil)
		return
	}

	summary, found, err := h.cache.GetRunSummary(r.Context(), runID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read run status", nil)
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Run not found or expired", nil)
		return
	}

	response.JSON(w, summary)
}
