package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brandpulse/brandpulse/pkg/models"
)

const (
	baseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	systemPrompt = "You are a helpful assistant. Answer the user's question thoroughly and naturally."
)

// Gateway implements models.EngineGateway using the Gemini generateContent
// HTTP API.
type Gateway struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGateway creates a Gemini-backed engine gateway.
func NewGateway(apiKey, model string, timeout time.Duration) *Gateway {
	return &Gateway{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *Gateway) Name() models.Engine { return models.EngineGemini }

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (g *Gateway) Run(ctx context.Context, prompt string) (*models.EngineResponse, error) {
	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 4096,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	u := fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
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

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		return nil, models.ErrEngineEmptyResponse
	}

	var parts []string
	for _, p := range parsed.Candidates[0].Content.Parts {
		parts = append(parts, p.Text)
	}
	text := strings.Join(parts, "")
	if text == "" {
		return nil, models.ErrEngineEmptyResponse
	}

	modelVersion := parsed.ModelVersion
	if modelVersion == "" {
		modelVersion = g.model
	}

	return &models.EngineResponse{
		Text:         text,
		ModelVersion: modelVersion,
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
