// Package mock provides a configurable engine gateway for tests.
package mock

import (
	"context"
	"sync"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// Gateway satisfies models.EngineGateway for testing. It counts calls and
// records prompts so tests can assert pacing and isolation behavior.
type Gateway struct {
	Name_   models.Engine
	RunFunc func(ctx context.Context, prompt string) (*models.EngineResponse, error)

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (g *Gateway) Name() models.Engine { return g.Name_ }

func (g *Gateway) Run(ctx context.Context, prompt string) (*models.EngineResponse, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.RunFunc != nil {
		return g.RunFunc(ctx, prompt)
	}
	return &models.EngineResponse{
		Text:         "mock answer",
		ModelVersion: string(g.Name_) + "-mock-v1",
	}, nil
}

// Calls returns how many times Run was invoked.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Prompts returns the prompts passed to Run, in call order.
func (g *Gateway) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// NewGateway returns a mock gateway that answers every prompt with the
// given text.
func NewGateway(name models.Engine, text string) *Gateway {
	return &Gateway{
		Name_: name,
		RunFunc: func(_ context.Context, _ string) (*models.EngineResponse, error) {
			return &models.EngineResponse{
				Text:         text,
				ModelVersion: string(name) + "-mock-v1",
			}, nil
		},
	}
}

// NewFailingGateway returns a mock gateway that always returns the given error.
func NewFailingGateway(name models.Engine, err error) *Gateway {
	return &Gateway{
		Name_: name,
		RunFunc: func(_ context.Context, _ string) (*models.EngineResponse, error) {
			return nil, err
		},
	}
}

// Compile-time check that Gateway implements EngineGateway.
var _ models.EngineGateway = (*Gateway)(nil)
