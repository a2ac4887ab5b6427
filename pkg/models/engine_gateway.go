package models

import (
	"context"
	"errors"
)

// EngineGateway is the capability interface for one AI assistant provider.
// Never call concrete providers directly; always inject this interface.
// The orchestrator treats every gateway failure as an isolated, per-call
// event; no single provider outage may block collection for the others.
type EngineGateway interface {
	// Run sends the prompt and returns the raw answer text plus a
	// model-version tag and optional citation URLs.
	Run(ctx context.Context, prompt string) (*EngineResponse, error)
	// Name returns the engine identifier (e.g., "openai", "perplexity").
	Name() Engine
}

// EngineResponse is the raw answer from one engine call.
type EngineResponse struct {
	Text         string
	ModelVersion string
	Citations    []string
}

// Sentinel errors shared by all gateway implementations.
var (
	ErrEngineUnavailable   = errors.New("engine provider unavailable")
	ErrEngineTimeout       = errors.New("engine call timeout")
	ErrEngineRateLimited   = errors.New("engine provider rate limited")
	ErrEngineEmptyResponse = errors.New("engine returned empty response")
)
