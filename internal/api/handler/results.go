package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// ResultHandlers serves the per-query result history for dashboard drill-down.
type ResultHandlers struct {
	store store.Store
}

func NewResultHandlers(st store.Store) *ResultHandlers {
	return &ResultHandlers{store: st}
}

// History returns every result for one query across engines and time,
// newest first.
func (h *ResultHandlers) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query ID", nil)
		return
	}

	// Ownership check walks query -> brand -> user.
	if _, err := h.store.GetQueryForUser(r.Context(), queryID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load query", nil)
		return
	}

	results, err := h.store.ListResultsByQuery(r.Context(), queryID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load results", nil)
		return
	}
	if results == nil {
		results = []*models.QueryResult{}
	}
	response.JSON(w, results)
}
