package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryResult is the structured output of one (query, engine, run) invocation.
// Rows are append-only: a result is never edited, only superseded by newer
// runs on the same query.
//
// Invariant: BrandMentioned=false implies Sentiment=nil,
// IsTopRecommendation=false and MentionPosition=not_mentioned. The analyzer
// is the only producer of these records and guarantees this.
type QueryResult struct {
	ID                  uuid.UUID           `db:"id"                    json:"id"`
	QueryID             uuid.UUID           `db:"query_id"              json:"query_id"`
	Engine              Engine              `db:"engine"                json:"engine"`
	ModelVersion        string              `db:"model_version"         json:"model_version"`
	RawResponse         string              `db:"raw_response"          json:"raw_response"`
	BrandMentioned      bool                `db:"brand_mentioned"       json:"brand_mentioned"`
	MentionPosition     Position            `db:"mention_position"      json:"mention_position"`
	IsTopRecommendation bool                `db:"is_top_recommendation" json:"is_top_recommendation"`
	Sentiment           *Sentiment          `db:"sentiment"             json:"sentiment"`
	CompetitorMentions  []CompetitorMention `db:"competitor_mentions"   json:"competitor_mentions"`
	Citations           []string            `db:"citations"             json:"citations,omitempty"`
	RunDate             time.Time           `db:"run_date"              json:"run_date"`
	CreatedAt           time.Time           `db:"created_at"            json:"created_at"`
}

// CompetitorMention is one competitor's entry in a result record. Kept as an
// ordered list rather than a map so the not-mentioned invariants stay
// mechanically checkable.
type CompetitorMention struct {
	Name                string     `json:"name"`
	Mentioned           bool       `json:"mentioned"`
	Position            Position   `json:"position"`
	Sentiment           *Sentiment `json:"sentiment"`
	IsTopRecommendation bool       `json:"is_top_recommendation"`
}

// RunDay formats the run date for trend bucketing.
func (r *QueryResult) RunDay() string {
	return r.RunDate.UTC().Format("2006-01-02")
}
