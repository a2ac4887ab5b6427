package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandpulse/brandpulse/pkg/models"
)

const systemPrompt = "You are a helpful assistant. Answer the user's question thoroughly and naturally."

// Gateway implements models.EngineGateway using the OpenAI chat completions API.
type Gateway struct {
	client *openai.Client
	model  string
}

// NewGateway creates an OpenAI-backed engine gateway.
func NewGateway(apiKey, model string) *Gateway {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Gateway{
		client: &client,
		model:  model,
	}
}

func (g *Gateway) Name() models.Engine { return models.EngineOpenAI }

func (g *Gateway) Run(ctx context.Context, prompt string) (*models.EngineResponse, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(4096),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, models.ErrEngineEmptyResponse
	}

	modelVersion := resp.Model
	if modelVersion == "" {
		modelVersion = g.model
	}

	return &models.EngineResponse{
		Text:         resp.Choices[0].Message.Content,
		ModelVersion: modelVersion,
	}, nil
}

var _ models.EngineGateway = (*Gateway)(nil)
