package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state machine of a collection run:
// pending -> running -> completed | completed_with_errors.
const (
	RunStatusPending             = "pending"
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed_with_errors"
)

// RunSummary reports the outcome of one collection run for one brand. It is
// the unit of observability for operators: per-call failures are isolated
// and counted here, never surfaced to the dashboard as errors.
type RunSummary struct {
	RunID      uuid.UUID  `json:"run_id"`
	BrandID    uuid.UUID  `json:"brand_id"`
	Status     string     `json:"status"`
	Attempted  int        `json:"attempted"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Errors     []RunError `json:"errors,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunError records one failed (query, engine) call within a run.
type RunError struct {
	QueryID uuid.UUID `json:"query_id"`
	Engine  Engine    `json:"engine"`
	Message string    `json:"message"`
}
