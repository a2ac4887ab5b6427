// Package orchestrator drives collection runs: it walks the active query ×
// enabled engine matrix for a brand, asks each engine, analyzes the answer,
// and persists one result per call. It is the only writer of result rows.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brandpulse/brandpulse/internal/analyzer"
	"github.com/brandpulse/brandpulse/internal/cache"
	"github.com/brandpulse/brandpulse/internal/plan"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// ErrNoEnabledEngines means the brand's plan tier enables no engine that is
// actually configured. Fatal to that brand's run only.
var ErrNoEnabledEngines = errors.New("no enabled engines for brand")

const runStatusTTL = 24 * time.Hour

// Orchestrator executes collection runs with its collaborators injected.
type Orchestrator struct {
	gateways map[models.Engine]models.EngineGateway
	analyzer *analyzer.Analyzer
	store    store.Store
	cache    cache.Cache
	pacing   time.Duration

	// Overridable in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates an Orchestrator. Pacing is the delay inserted between
// successive engine calls to stay inside provider rate limits.
func New(gateways map[models.Engine]models.EngineGateway, an *analyzer.Analyzer, st store.Store, ca cache.Cache, pacing time.Duration) *Orchestrator {
	return &Orchestrator{
		gateways: gateways,
		analyzer: an,
		store:    st,
		cache:    ca,
		pacing:   pacing,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// TriggerRun starts a run for one brand in the background and returns the
// run's summary in its pending state immediately. Callers poll the cached
// summary for progress.
func (o *Orchestrator) TriggerRun(ctx context.Context, brand *models.Brand, tier models.PlanTier) (*models.RunSummary, error) {
	if len(plan.EnginesFor(tier, o.gateways)) == 0 {
		return nil, ErrNoEnabledEngines
	}

	summary := &models.RunSummary{
		RunID:     uuid.New(),
		BrandID:   brand.ID,
		Status:    models.RunStatusPending,
		StartedAt: o.now().UTC(),
	}
	_ = o.cache.SetRunSummary(ctx, summary, runStatusTTL)

	go o.runInBackground(brand, tier, summary)

	return summary, nil
}

// runInBackground performs the run in a goroutine. It recovers from panics
// and always leaves a terminal summary in the cache.
func (o *Orchestrator) runInBackground(brand *models.Brand, tier models.PlanTier, summary *models.RunSummary) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in collection run", "error", r, "run_id", summary.RunID, "brand_id", brand.ID)
			summary.Status = models.RunStatusCompletedWithErrors
			summary.Errors = append(summary.Errors, models.RunError{Message: fmt.Sprintf("panic: %v", r)})
			now := o.now().UTC()
			summary.FinishedAt = &now
			_ = o.cache.SetRunSummary(ctx, summary, runStatusTTL)
		}
	}()

	if err := o.RunBrand(ctx, brand, tier, summary); err != nil {
		slog.Error("collection run failed", "error", err, "run_id", summary.RunID, "brand_id", brand.ID)
	}
}

// RunBrand executes the full query × engine matrix for one brand,
// synchronously, updating the given summary as it goes. A failed engine or
// analyzer call is recorded and iteration continues with the next pair; only
// a brand-level setup failure aborts the run.
func (o *Orchestrator) RunBrand(ctx context.Context, brand *models.Brand, tier models.PlanTier, summary *models.RunSummary) error {
	engines := plan.EnginesFor(tier, o.gateways)
	if len(engines) == 0 {
		return ErrNoEnabledEngines
	}

	summary.Status = models.RunStatusRunning
	_ = o.cache.SetRunSummary(ctx, summary, runStatusTTL)

	queries, err := o.store.ListActiveQueries(ctx, brand.ID)
	if err != nil {
		return o.finish(ctx, summary, fmt.Errorf("list active queries: %w", err))
	}
	comps, err := o.store.ListCompetitors(ctx, brand.ID)
	if err != nil {
		return o.finish(ctx, summary, fmt.Errorf("list competitors: %w", err))
	}
	competitors := make([]models.Competitor, len(comps))
	for i, c := range comps {
		competitors[i] = *c
	}

	runDate := dateOnly(o.now().UTC())

	for _, query := range queries {
		for _, engine := range engines {
			if err := o.collectOne(ctx, brand, competitors, query, engine, runDate, summary); err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, models.RunError{
					QueryID: query.ID,
					Engine:  engine,
					Message: err.Error(),
				})
				slog.Warn("engine call failed, continuing run",
					"run_id", summary.RunID, "query_id", query.ID, "engine", engine, "error", err)
			}
			_ = o.cache.SetRunSummary(ctx, summary, runStatusTTL)
		}
	}

	return o.finish(ctx, summary, nil)
}

// collectOne handles a single (query, engine) pair: dedup check, engine
// call, analysis, persistence. It updates the attempted/succeeded/skipped
// counters itself and returns an error only for the failed counter.
func (o *Orchestrator) collectOne(ctx context.Context, brand *models.Brand, competitors []models.Competitor, query *models.MonitoredQuery, engine models.Engine, runDate time.Time, summary *models.RunSummary) error {
	exists, err := o.store.HasResult(ctx, query.ID, engine, runDate)
	if err != nil {
		summary.Attempted++
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		summary.Skipped++
		return nil
	}

	summary.Attempted++

	gateway := o.gateways[engine]
	resp, err := gateway.Run(ctx, query.QueryText)
	o.sleep(o.pacing)
	if err != nil {
		return fmt.Errorf("engine %s: %w", engine, err)
	}

	result, err := o.analyzer.Analyze(ctx, resp, brand, competitors)
	if err != nil {
		return fmt.Errorf("analyze response: %w", err)
	}

	result.ID = uuid.New()
	result.QueryID = query.ID
	result.Engine = engine
	result.RunDate = runDate
	result.CreatedAt = o.now().UTC()

	if err := o.store.CreateQueryResult(ctx, result); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// A concurrent run got there first. Count it as a skip.
			summary.Attempted--
			summary.Skipped++
			return nil
		}
		return fmt.Errorf("persist result: %w", err)
	}

	summary.Succeeded++
	return nil
}

// finish moves the summary to its terminal status and writes it through.
func (o *Orchestrator) finish(ctx context.Context, summary *models.RunSummary, runErr error) error {
	if runErr != nil || summary.Failed > 0 {
		summary.Status = models.RunStatusCompletedWithErrors
	} else {
		summary.Status = models.RunStatusCompleted
	}
	if runErr != nil {
		summary.Errors = append(summary.Errors, models.RunError{Message: runErr.Error()})
	}
	now := o.now().UTC()
	summary.FinishedAt = &now
	_ = o.cache.SetRunSummary(ctx, summary, runStatusTTL)

	slog.Info("collection run finished",
		"run_id", summary.RunID, "brand_id", summary.BrandID, "status", summary.Status,
		"attempted", summary.Attempted, "succeeded", summary.Succeeded,
		"failed", summary.Failed, "skipped", summary.Skipped)

	return runErr
}

// RunAll executes the scheduled path: every brand with at least one active
// query whose plan tier is due today. Brand failures are isolated from each
// other.
func (o *Orchestrator) RunAll(ctx context.Context) {
	brands, err := o.store.ListBrandsForRun(ctx)
	if err != nil {
		slog.Error("scheduled run: listing brands failed", "error", err)
		return
	}

	today := o.now().UTC()
	ran := 0
	for _, br := range brands {
		if !plan.RunsToday(br.PlanTier, today) {
			continue
		}
		ran++
		summary := &models.RunSummary{
			RunID:     uuid.New(),
			BrandID:   br.Brand.ID,
			Status:    models.RunStatusPending,
			StartedAt: o.now().UTC(),
		}
		if err := o.RunBrand(ctx, &br.Brand, br.PlanTier, summary); err != nil {
			slog.Error("scheduled run: brand failed", "brand_id", br.Brand.ID, "error", err)
		}
	}

	slog.Info("scheduled run complete", "brands_total", len(brands), "brands_run", ran)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
