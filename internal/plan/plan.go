// Package plan holds the plan-tier policy: which engines a brand is run
// against, how often, and how many entities a user may track.
package plan

import (
	"time"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// Frequency is how often a plan's brands are collected.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Limits describes everything a plan tier entitles a user to.
type Limits struct {
	Brands          int
	QueriesPerBrand int
	Competitors     int
	Engines         []models.Engine
	Frequency       Frequency
}

var tierLimits = map[models.PlanTier]Limits{
	models.PlanFree: {
		Brands:          1,
		QueriesPerBrand: 10,
		Competitors:     2,
		Engines:         []models.Engine{models.EngineOpenAI, models.EngineAnthropic},
		Frequency:       FrequencyWeekly,
	},
	models.PlanPro: {
		Brands:          3,
		QueriesPerBrand: 100,
		Competitors:     10,
		Engines:         models.KnownEngines,
		Frequency:       FrequencyDaily,
	},
	models.PlanAgency: {
		Brands:          1000,
		QueriesPerBrand: 500,
		Competitors:     1000,
		Engines:         models.KnownEngines,
		Frequency:       FrequencyDaily,
	},
}

// LimitsFor returns the limit configuration for a tier, falling back to the
// free tier when the tier is not recognized.
func LimitsFor(tier models.PlanTier) Limits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[models.PlanFree]
}

// EnginesFor returns the engines enabled for a tier, filtered to the
// gateways actually configured. The orchestrator must honor this list
// exactly: a disabled engine is never called.
func EnginesFor(tier models.PlanTier, configured map[models.Engine]models.EngineGateway) []models.Engine {
	var enabled []models.Engine
	for _, e := range LimitsFor(tier).Engines {
		if _, ok := configured[e]; ok {
			enabled = append(enabled, e)
		}
	}
	return enabled
}

// RunsToday reports whether a tier's brands are collected on the given day.
// Weekly plans run only on Mondays.
func RunsToday(tier models.PlanTier, day time.Time) bool {
	if LimitsFor(tier).Frequency == FrequencyDaily {
		return true
	}
	return day.UTC().Weekday() == time.Monday
}
