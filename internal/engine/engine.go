// Package engine constructs the gateways to external AI assistant providers.
// Each provider is queried with the same prompt so answers are comparable;
// the concrete implementations live in per-provider subpackages.
package engine

import (
	"fmt"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/engine/anthropic"
	"github.com/brandpulse/brandpulse/internal/engine/gemini"
	"github.com/brandpulse/brandpulse/internal/engine/openai"
	"github.com/brandpulse/brandpulse/internal/engine/perplexity"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// NewGateways constructs a gateway for every engine whose API key is
// configured. Called once at server startup. Plan tiers can only enable
// engines that exist in the returned map.
func NewGateways(cfg config.EnginesConfig) (map[models.Engine]models.EngineGateway, error) {
	gateways := make(map[models.Engine]models.EngineGateway)

	if cfg.OpenAI.APIKey != "" {
		gateways[models.EngineOpenAI] = openai.NewGateway(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	if cfg.Anthropic.APIKey != "" {
		gateways[models.EngineAnthropic] = anthropic.NewGateway(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	}
	if cfg.Perplexity.APIKey != "" {
		gateways[models.EnginePerplexity] = perplexity.NewGateway(cfg.Perplexity.APIKey, cfg.Perplexity.Model, cfg.Timeout)
	}
	if cfg.Gemini.APIKey != "" {
		gateways[models.EngineGemini] = gemini.NewGateway(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Timeout)
	}

	if len(gateways) == 0 {
		return nil, fmt.Errorf("no engines configured: set at least one of OPENAI_API_KEY, ANTHROPIC_API_KEY, PERPLEXITY_API_KEY, GEMINI_API_KEY")
	}

	return gateways, nil
}
