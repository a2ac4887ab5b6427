package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the daily collection run at a fixed UTC time.
type Scheduler struct {
	cron *cron.Cron
	orch *Orchestrator
}

// NewScheduler wires the orchestrator's scheduled path onto a cron entry at
// the given UTC hour and minute.
func NewScheduler(orch *Orchestrator, hour, minute int) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	_, err := c.AddFunc(spec, func() {
		slog.Info("scheduled collection run starting", "spec", spec)
		orch.RunAll(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("schedule daily run: %w", err)
	}

	return &Scheduler{cron: c, orch: orch}, nil
}

// Start begins firing scheduled runs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out with a run still in flight")
	}
}
