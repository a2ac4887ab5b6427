// Package classify abstracts the cheap-model text-classification calls that
// turn a raw engine answer into sentiment and top-recommendation judgments.
// It is an external dependency boundary: any concrete provider can be
// substituted, including a deterministic stub for tests.
package classify

import (
	"context"
	"errors"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// ErrClassification marks a failed classification call. Callers degrade the
// affected entity's fields to null rather than dropping the record.
var ErrClassification = errors.New("classification failed")

// Classification is the judgment for one mentioned entity.
type Classification struct {
	Sentiment           models.Sentiment
	IsTopRecommendation bool
}

// Classifier is the narrow capability interface for classification calls.
// Implementations must only ever be invoked for entities that were actually
// detected in the response text.
type Classifier interface {
	// ClassifyBrand judges sentiment and primary-recommendation status for
	// the tracked brand in one response.
	ClassifyBrand(ctx context.Context, text, name string) (Classification, error)
	// ClassifyCompetitors judges all mentioned competitors in a single
	// batched call. Names missing from the returned map are soft failures;
	// the caller records them as mentioned with null sentiment.
	ClassifyCompetitors(ctx context.Context, text string, names []string) (map[string]Classification, error)
}
