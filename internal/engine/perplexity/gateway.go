package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brandpulse/brandpulse/pkg/models"
)

const (
	apiURL       = "https://api.perplexity.ai/chat/completions"
	systemPrompt = "You are a helpful assistant. Answer the user's question thoroughly and naturally."
)

// Gateway implements models.EngineGateway using Perplexity's chat completions
// HTTP API. Perplexity has no official Go SDK, so this is a plain HTTP client.
type Gateway struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGateway creates a Perplexity-backed engine gateway.
func NewGateway(apiKey, model string, timeout time.Duration) *Gateway {
	return &Gateway{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *Gateway) Name() models.Engine { return models.EnginePerplexity }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Perplexity returns citations at the top level of the response object.
	Citations []string `json:"citations"`
}

func (g *Gateway) Run(ctx context.Context, prompt string) (*models.EngineResponse, error) {
	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.ErrEngineRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", models.ErrEngineUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding perplexity response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, models.ErrEngineEmptyResponse
	}

	modelVersion := parsed.Model
	if modelVersion == "" {
		modelVersion = g.model
	}

	return &models.EngineResponse{
		Text:         parsed.Choices[0].Message.Content,
		ModelVersion: modelVersion,
		Citations:    parsed.Citations,
	}, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrEngineTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrEngineTimeout, err)
	}
	return fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
}

var _ models.EngineGateway = (*Gateway)(nil)
