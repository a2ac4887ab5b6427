package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/brandpulse/brandpulse/pkg/models"
)

const systemPrompt = "You are a helpful assistant. Answer the user's question thoroughly and naturally."

// Gateway implements models.EngineGateway using the Anthropic Messages API.
type Gateway struct {
	client *anthropic.Client
	model  string
}

// NewGateway creates an Anthropic-backed engine gateway.
func NewGateway(apiKey, model string) *Gateway {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Gateway{
		client: &client,
		model:  model,
	}
}

func (g *Gateway) Name() models.Engine { return models.EngineAnthropic }

func (g *Gateway) Run(ctx context.Context, prompt string) (*models.EngineResponse, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
	}

	var parts []string
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			parts = append(parts, variant.Text)
		}
	}
	text := strings.Join(parts, "")
	if text == "" {
		return nil, models.ErrEngineEmptyResponse
	}

	return &models.EngineResponse{
		Text:         text,
		ModelVersion: string(resp.Model),
	}, nil
}

var _ models.EngineGateway = (*Gateway)(nil)
