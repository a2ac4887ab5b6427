package analyzer

import (
	"context"
	"log/slog"

	"github.com/brandpulse/brandpulse/internal/classify"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// Analyzer composes mention detection and classification into one structured
// result payload per (query, engine) invocation. It is deterministic given
// identical inputs and classifier responses, and issues no side effects
// beyond the classification calls themselves.
type Analyzer struct {
	classifier classify.Classifier
}

// New creates an Analyzer with the given classifier injected.
func New(classifier classify.Classifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// Analyze produces an unsaved result payload for one raw engine answer.
// Classification runs only for entities the detector found: at most one
// brand call and at most one batched competitor call per response. A
// classification failure is retried once and then degrades the affected
// entity's fields to null; the record is never dropped.
//
// The caller fills in identity, engine, and timestamp fields.
func (a *Analyzer) Analyze(ctx context.Context, resp *models.EngineResponse, brand *models.Brand, competitors []models.Competitor) (*models.QueryResult, error) {
	result := &models.QueryResult{
		RawResponse:     resp.Text,
		ModelVersion:    resp.ModelVersion,
		Citations:       resp.Citations,
		MentionPosition: models.PositionNotMentioned,
	}

	mentioned, _, end := DetectMention(resp.Text, brand.AllNames())
	if mentioned {
		result.BrandMentioned = true
		result.MentionPosition = BucketPosition(end, len(resp.Text))

		cls, err := a.classifyBrand(ctx, resp.Text, brand.Name)
		if err != nil {
			slog.Warn("brand classification degraded",
				"brand", brand.Name, "error", err)
		} else {
			result.Sentiment = models.SentimentPtr(cls.Sentiment)
			result.IsTopRecommendation = cls.IsTopRecommendation
		}
	}

	result.CompetitorMentions = a.analyzeCompetitors(ctx, resp.Text, competitors)

	return result, nil
}

// analyzeCompetitors detects every competitor independently against the same
// raw text and classifies the mentioned ones in a single batched call.
func (a *Analyzer) analyzeCompetitors(ctx context.Context, text string, competitors []models.Competitor) []models.CompetitorMention {
	mentions := make([]models.CompetitorMention, 0, len(competitors))
	var mentionedNames []string

	for _, comp := range competitors {
		entry := models.CompetitorMention{
			Name:     comp.Name,
			Position: models.PositionNotMentioned,
		}
		if mentioned, _, end := DetectMention(text, comp.AllNames()); mentioned {
			entry.Mentioned = true
			entry.Position = BucketPosition(end, len(text))
			mentionedNames = append(mentionedNames, comp.Name)
		}
		mentions = append(mentions, entry)
	}

	if len(mentionedNames) == 0 {
		return mentions
	}

	classifications, err := a.classifyCompetitors(ctx, text, mentionedNames)
	if err != nil {
		slog.Warn("competitor classification degraded",
			"names", mentionedNames, "error", err)
		return mentions
	}

	for i := range mentions {
		if !mentions[i].Mentioned {
			continue
		}
		cls, ok := classifications[mentions[i].Name]
		if !ok {
			// Soft failure: the classifier omitted this entity from its
			// reply. Detection fields stand, classification stays null.
			slog.Warn("classifier omitted competitor from batch reply",
				"name", mentions[i].Name)
			continue
		}
		mentions[i].Sentiment = models.SentimentPtr(cls.Sentiment)
		mentions[i].IsTopRecommendation = cls.IsTopRecommendation
	}

	return mentions
}

// classifyBrand retries the call at most once on failure.
func (a *Analyzer) classifyBrand(ctx context.Context, text, name string) (classify.Classification, error) {
	cls, err := a.classifier.ClassifyBrand(ctx, text, name)
	if err == nil {
		return cls, nil
	}
	return a.classifier.ClassifyBrand(ctx, text, name)
}

// classifyCompetitors retries the batched call at most once on failure.
func (a *Analyzer) classifyCompetitors(ctx context.Context, text string, names []string) (map[string]classify.Classification, error) {
	results, err := a.classifier.ClassifyCompetitors(ctx, text, names)
	if err == nil {
		return results, nil
	}
	return a.classifier.ClassifyCompetitors(ctx, text, names)
}
