package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brandpulse/brandpulse/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
// QueryResult writes are append-only: rows are inserted once and never updated.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error

	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrand(ctx context.Context, id, userID uuid.UUID) (*models.Brand, error)
	ListBrands(ctx context.Context, userID uuid.UUID) ([]*models.Brand, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id, userID uuid.UUID) error
	CountBrands(ctx context.Context, userID uuid.UUID) (int, error)
	// ListBrandsForRun returns every brand that has at least one active
	// query, with the owner's plan tier attached, for the scheduled path.
	ListBrandsForRun(ctx context.Context) ([]*BrandForRun, error)

	CreateCompetitor(ctx context.Context, comp *models.Competitor) error
	ListCompetitors(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error)
	DeleteCompetitor(ctx context.Context, id, brandID uuid.UUID) error
	CountCompetitors(ctx context.Context, brandID uuid.UUID) (int, error)

	CreateQuery(ctx context.Context, query *models.MonitoredQuery) error
	GetQuery(ctx context.Context, id uuid.UUID) (*models.MonitoredQuery, error)
	GetQueryForUser(ctx context.Context, id, userID uuid.UUID) (*models.MonitoredQuery, error)
	ListQueries(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error)
	ListActiveQueries(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error)
	UpdateQuery(ctx context.Context, query *models.MonitoredQuery) error
	DeleteQuery(ctx context.Context, id, brandID uuid.UUID) error
	CountQueries(ctx context.Context, brandID uuid.UUID) (int, error)

	CreateQueryResult(ctx context.Context, result *models.QueryResult) error
	// HasResult reports whether a result already exists for the
	// (query, engine, run date) triple; runs skip duplicates.
	HasResult(ctx context.Context, queryID uuid.UUID, engine models.Engine, runDate time.Time) (bool, error)
	// ListResultsByBrand returns all results for a brand's queries, oldest
	// first, optionally restricted to a trailing window.
	ListResultsByBrand(ctx context.Context, brandID uuid.UUID, filter ResultFilter) ([]*models.QueryResult, error)
	// ListResultsByQuery returns every result for one query across engines
	// and time, newest first.
	ListResultsByQuery(ctx context.Context, queryID uuid.UUID) ([]*models.QueryResult, error)
}

// BrandForRun pairs a brand with its owner's plan tier for run selection.
type BrandForRun struct {
	Brand    models.Brand
	PlanTier models.PlanTier
}

// ResultFilter restricts a brand's result set.
type ResultFilter struct {
	// Since excludes results with run_date before it. Zero means no window.
	Since time.Time
	// Engine restricts to one engine when non-empty.
	Engine models.Engine
}
