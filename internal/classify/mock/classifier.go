// Package mock provides a deterministic classifier stub for tests.
package mock

import (
	"context"
	"sync"

	"github.com/brandpulse/brandpulse/internal/classify"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// Classifier satisfies classify.Classifier for testing. It counts calls and
// records the names submitted so tests can verify that non-mentioned
// entities never trigger a classification call.
type Classifier struct {
	BrandFunc       func(ctx context.Context, text, name string) (classify.Classification, error)
	CompetitorsFunc func(ctx context.Context, text string, names []string) (map[string]classify.Classification, error)

	mu              sync.Mutex
	brandCalls      int
	competitorCalls int
	submittedNames  [][]string
}

func (c *Classifier) ClassifyBrand(ctx context.Context, text, name string) (classify.Classification, error) {
	c.mu.Lock()
	c.brandCalls++
	c.mu.Unlock()

	if c.BrandFunc != nil {
		return c.BrandFunc(ctx, text, name)
	}
	return classify.Classification{Sentiment: models.SentimentNeutral}, nil
}

func (c *Classifier) ClassifyCompetitors(ctx context.Context, text string, names []string) (map[string]classify.Classification, error) {
	c.mu.Lock()
	c.competitorCalls++
	c.submittedNames = append(c.submittedNames, append([]string(nil), names...))
	c.mu.Unlock()

	if c.CompetitorsFunc != nil {
		return c.CompetitorsFunc(ctx, text, names)
	}
	results := make(map[string]classify.Classification, len(names))
	for _, name := range names {
		results[name] = classify.Classification{Sentiment: models.SentimentNeutral}
	}
	return results, nil
}

// BrandCalls returns how many times ClassifyBrand was invoked.
func (c *Classifier) BrandCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brandCalls
}

// CompetitorCalls returns how many times ClassifyCompetitors was invoked.
func (c *Classifier) CompetitorCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.competitorCalls
}

// SubmittedNames returns the name lists passed to ClassifyCompetitors, in
// call order.
func (c *Classifier) SubmittedNames() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.submittedNames...)
}

// NewClassifier returns a stub that judges every entity with the given
// classification.
func NewClassifier(result classify.Classification) *Classifier {
	return &Classifier{
		BrandFunc: func(_ context.Context, _, _ string) (classify.Classification, error) {
			return result, nil
		},
		CompetitorsFunc: func(_ context.Context, _ string, names []string) (map[string]classify.Classification, error) {
			out := make(map[string]classify.Classification, len(names))
			for _, name := range names {
				out[name] = result
			}
			return out, nil
		},
	}
}

// NewFailingClassifier returns a stub whose calls always fail with err.
func NewFailingClassifier(err error) *Classifier {
	return &Classifier{
		BrandFunc: func(_ context.Context, _, _ string) (classify.Classification, error) {
			return classify.Classification{}, err
		},
		CompetitorsFunc: func(_ context.Context, _ string, _ []string) (map[string]classify.Classification, error) {
			return nil, err
		},
	}
}

// Compile-time check that Classifier implements classify.Classifier.
var _ classify.Classifier = (*Classifier)(nil)
