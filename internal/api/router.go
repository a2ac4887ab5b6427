package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateBrand http.HandlerFunc
	ListBrands  http.HandlerFunc
	GetBrand    http.HandlerFunc
	UpdateBrand http.HandlerFunc
	DeleteBrand http.HandlerFunc

	CreateCompetitor http.HandlerFunc
	ListCompetitors  http.HandlerFunc
	DeleteCompetitor http.HandlerFunc

	CreateQuery http.HandlerFunc
	ListQueries http.HandlerFunc
	UpdateQuery http.HandlerFunc
	DeleteQuery http.HandlerFunc

	TriggerRun http.HandlerFunc
	RunStatus  http.HandlerFunc

	Overview      http.HandlerFunc
	Comparison    http.HandlerFunc
	ResultHistory http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/brands", orNotImplemented(deps.CreateBrand))
		r.Get("/api/v1/brands", orNotImplemented(deps.ListBrands))
		r.Get("/api/v1/brands/{brandID}", orNotImplemented(deps.GetBrand))
		r.Put("/api/v1/brands/{brandID}", orNotImplemented(deps.UpdateBrand))
		r.Delete("/api/v1/brands/{brandID}", orNotImplemented(deps.DeleteBrand))

		r.Post("/api/v1/brands/{brandID}/competitors", orNotImplemented(deps.CreateCompetitor))
		r.Get("/api/v1/brands/{brandID}/competitors", orNotImplemented(deps.ListCompetitors))
		r.Delete("/api/v1/brands/{brandID}/competitors/{competitorID}", orNotImplemented(deps.DeleteCompetitor))

		r.Post("/api/v1/brands/{brandID}/queries", orNotImplemented(deps.CreateQuery))
		r.Get("/api/v1/brands/{brandID}/queries", orNotImplemented(deps.ListQueries))
		r.Put("/api/v1/brands/{brandID}/queries/{queryID}", orNotImplemented(deps.UpdateQuery))
		r.Delete("/api/v1/brands/{brandID}/queries/{queryID}", orNotImplemented(deps.DeleteQuery))

		r.Post("/api/v1/brands/{brandID}/runs", orNotImplemented(deps.TriggerRun))
		r.Get("/api/v1/runs/{runID}", orNotImplemented(deps.RunStatus))

		r.Get("/api/v1/brands/{brandID}/overview", orNotImplemented(deps.Overview))
		r.Get("/api/v1/brands/{brandID}/comparison", orNotImplemented(deps.Comparison))
		r.Get("/api/v1/queries/{queryID}/results", orNotImplemented(deps.ResultHistory))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
