// Package aggregate computes the read-side views over a brand's stored
// results. Everything here is a pure function over immutable rows; nothing
// writes back to storage.
package aggregate

import (
	"sort"

	"github.com/google/uuid"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// SentimentBreakdown counts classified sentiments. Only records with a
// mention are counted; a non-mention never lands in the neutral bucket.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
	Mixed    int `json:"mixed"`
}

func (b *SentimentBreakdown) add(s *models.Sentiment) {
	if s == nil {
		return
	}
	switch *s {
	case models.SentimentPositive:
		b.Positive++
	case models.SentimentNeutral:
		b.Neutral++
	case models.SentimentNegative:
		b.Negative++
	case models.SentimentMixed:
		b.Mixed++
	}
}

// EngineStats is the per-engine slice of the overview.
type EngineStats struct {
	Engine      models.Engine `json:"engine"`
	Total       int           `json:"total"`
	Mentioned   int           `json:"mentioned"`
	MentionRate float64       `json:"mention_rate"`
}

// TrendPoint is one calendar day's mention rate. Days without results are
// omitted entirely; callers must not interpolate the gaps.
type TrendPoint struct {
	Date        string  `json:"date"`
	Total       int     `json:"total"`
	Mentioned   int     `json:"mentioned"`
	MentionRate float64 `json:"mention_rate"`
}

// Overview is the aggregate bundle for one brand over an optional window.
// HasData is false when the window holds no results at all; every rate is
// zero in that case rather than a division error.
type Overview struct {
	HasData               bool               `json:"has_data"`
	TotalResponses        int                `json:"total_responses"`
	MentionCount          int                `json:"mention_count"`
	MentionRate           float64            `json:"mention_rate"`
	TopRecommendationRate float64            `json:"top_recommendation_rate"`
	ByEngine              []EngineStats      `json:"by_engine"`
	Sentiment             SentimentBreakdown `json:"sentiment"`
	Trend                 []TrendPoint       `json:"trend"`
}

// ComputeOverview derives the overview from a brand's results. The caller
// applies any time window before calling; order of the input does not matter.
func ComputeOverview(results []*models.QueryResult) Overview {
	overview := Overview{
		ByEngine: []EngineStats{},
		Trend:    []TrendPoint{},
	}
	if len(results) == 0 {
		return overview
	}

	overview.HasData = true
	overview.TotalResponses = len(results)

	topRecs := 0
	byEngine := map[models.Engine]*EngineStats{}
	byDay := map[string]*TrendPoint{}

	for _, r := range results {
		es, ok := byEngine[r.Engine]
		if !ok {
			es = &EngineStats{Engine: r.Engine}
			byEngine[r.Engine] = es
		}
		tp, ok := byDay[r.RunDay()]
		if !ok {
			tp = &TrendPoint{Date: r.RunDay()}
			byDay[r.RunDay()] = tp
		}

		es.Total++
		tp.Total++
		if r.BrandMentioned {
			overview.MentionCount++
			es.Mentioned++
			tp.Mentioned++
			overview.Sentiment.add(r.Sentiment)
		}
		if r.IsTopRecommendation {
			topRecs++
		}
	}

	overview.MentionRate = rate(overview.MentionCount, overview.TotalResponses)
	overview.TopRecommendationRate = rate(topRecs, overview.TotalResponses)

	for _, es := range byEngine {
		es.MentionRate = rate(es.Mentioned, es.Total)
		overview.ByEngine = append(overview.ByEngine, *es)
	}
	sort.Slice(overview.ByEngine, func(i, j int) bool {
		return overview.ByEngine[i].Engine < overview.ByEngine[j].Engine
	})

	for _, tp := range byDay {
		tp.MentionRate = rate(tp.Mentioned, tp.Total)
		overview.Trend = append(overview.Trend, *tp)
	}
	sort.Slice(overview.Trend, func(i, j int) bool {
		return overview.Trend[i].Date < overview.Trend[j].Date
	})

	return overview
}

// EntityStats is one row of the comparison view, for the brand itself or one
// tracked competitor.
type EntityStats struct {
	Name               string             `json:"name"`
	IsBrand            bool               `json:"is_brand"`
	Total              int                `json:"total"`
	Mentioned          int                `json:"mentioned"`
	MentionRate        float64            `json:"mention_rate"`
	TopRecommendations int                `json:"top_recommendations"`
	Sentiment          SentimentBreakdown `json:"sentiment"`
}

// QueryWinner names the entity holding the top recommendation in the most
// recent result for one (query, engine) pair. Winner is nil when the latest
// record awards it to nobody.
type QueryWinner struct {
	QueryID uuid.UUID     `json:"query_id"`
	Engine  models.Engine `json:"engine"`
	Winner  *string       `json:"winner"`
}

// Comparison is the brand-versus-competitors view.
type Comparison struct {
	HasData  bool          `json:"has_data"`
	Entities []EntityStats `json:"entities"`
	Winners  []QueryWinner `json:"winners"`
}

// ComputeComparison derives per-entity stats and per-query winners. The brand
// entry always comes first, followed by competitors in their tracked order.
func ComputeComparison(results []*models.QueryResult, brand *models.Brand, competitors []*models.Competitor) Comparison {
	comparison := Comparison{
		Entities: []EntityStats{},
		Winners:  []QueryWinner{},
	}
	if len(results) == 0 {
		return comparison
	}
	comparison.HasData = true

	brandStats := EntityStats{Name: brand.Name, IsBrand: true}
	compStats := make([]EntityStats, len(competitors))
	compIndex := map[string]int{}
	for i, c := range competitors {
		compStats[i] = EntityStats{Name: c.Name}
		compIndex[c.Name] = i
	}

	for _, r := range results {
		brandStats.Total++
		if r.BrandMentioned {
			brandStats.Mentioned++
			brandStats.Sentiment.add(r.Sentiment)
		}
		if r.IsTopRecommendation {
			brandStats.TopRecommendations++
		}

		for _, m := range r.CompetitorMentions {
			i, ok := compIndex[m.Name]
			if !ok {
				// Competitor was removed after this result was recorded.
				continue
			}
			compStats[i].Total++
			if m.Mentioned {
				compStats[i].Mentioned++
				compStats[i].Sentiment.add(m.Sentiment)
			}
			if m.IsTopRecommendation {
				compStats[i].TopRecommendations++
			}
		}
	}

	brandStats.MentionRate = rate(brandStats.Mentioned, brandStats.Total)
	comparison.Entities = append(comparison.Entities, brandStats)
	for i := range compStats {
		compStats[i].MentionRate = rate(compStats[i].Mentioned, compStats[i].Total)
		comparison.Entities = append(comparison.Entities, compStats[i])
	}

	comparison.Winners = computeWinners(results, brand.Name)
	return comparison
}

type pairKey struct {
	queryID uuid.UUID
	engine  models.Engine
}

// LatestPerEngine selects the most recent result for every (query, engine)
// pair. Recency is decided by creation timestamp, never run date alone, so
// same-day reruns resolve deterministically.
func LatestPerEngine(results []*models.QueryResult) map[uuid.UUID]map[models.Engine]*models.QueryResult {
	latest := map[pairKey]*models.QueryResult{}
	for _, r := range results {
		key := pairKey{queryID: r.QueryID, engine: r.Engine}
		if prev, ok := latest[key]; !ok || r.CreatedAt.After(prev.CreatedAt) {
			latest[key] = r
		}
	}

	out := map[uuid.UUID]map[models.Engine]*models.QueryResult{}
	for key, r := range latest {
		if out[key.queryID] == nil {
			out[key.queryID] = map[models.Engine]*models.QueryResult{}
		}
		out[key.queryID][key.engine] = r
	}
	return out
}

func computeWinners(results []*models.QueryResult, brandName string) []QueryWinner {
	var winners []QueryWinner
	for queryID, byEngine := range LatestPerEngine(results) {
		for engine, r := range byEngine {
			winners = append(winners, QueryWinner{
				QueryID: queryID,
				Engine:  engine,
				Winner:  winnerOf(r, brandName),
			})
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].QueryID != winners[j].QueryID {
			return winners[i].QueryID.String() < winners[j].QueryID.String()
		}
		return winners[i].Engine < winners[j].Engine
	})
	return winners
}

// winnerOf returns the entity holding the top recommendation in one record,
// or nil when nobody does.
func winnerOf(r *models.QueryResult, brandName string) *string {
	if r.IsTopRecommendation {
		name := brandName
		return &name
	}
	for _, m := range r.CompetitorMentions {
		if m.IsTopRecommendation {
			name := m.Name
			return &name
		}
	}
	return nil
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
