package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandpulse/brandpulse/internal/config"
)

const classifierSystemPrompt = "You are a precise text analyst. Follow the instructions exactly. Output only what is asked."

// OpenAIClassifier implements Classifier using a cheap OpenAI model at
// temperature zero. Prompts are line-oriented so replies parse without a
// JSON round trip.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClassifier creates a classifier backed by the configured model.
func NewOpenAIClassifier(cfg config.ClassifierConfig) *OpenAIClassifier {
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIClassifier{
		client:  &client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (c *OpenAIClassifier) ClassifyBrand(ctx context.Context, text, name string) (Classification, error) {
	prompt := fmt.Sprintf(
		"Analyze the following AI-generated response about the brand %q.\n\n"+
			"--- BEGIN RESPONSE ---\n%s\n--- END RESPONSE ---\n\n"+
			"Answer the following two questions. Respond ONLY with two lines, no extra text:\n"+
			"1. Is %q the top or primary recommendation? Answer: yes or no\n"+
			"2. What is the sentiment toward %q? Answer: positive, neutral, negative, or mixed",
		name, text, name, name)

	reply, err := c.complete(ctx, prompt, 50)
	if err != nil {
		return Classification{}, err
	}

	result, ok := parseBrandReply(reply)
	if !ok {
		return Classification{}, fmt.Errorf("%w: unparseable brand reply %q", ErrClassification, reply)
	}
	return result, nil
}

func (c *OpenAIClassifier) ClassifyCompetitors(ctx context.Context, text string, names []string) (map[string]Classification, error) {
	if len(names) == 0 {
		return map[string]Classification{}, nil
	}

	var numbered strings.Builder
	for i, name := range names {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, name)
	}

	prompt := fmt.Sprintf(
		"Analyze the following AI-generated response for each of the listed brands/products.\n\n"+
			"--- BEGIN RESPONSE ---\n%s\n--- END RESPONSE ---\n\n"+
			"Brands to analyze:\n%s\n"+
			"For each brand, respond with ONLY the brand name followed by a colon, exactly one "+
			"sentiment word (positive, neutral, negative, or mixed), a comma, and whether that "+
			"brand is the top or primary recommendation (yes or no). One per line, in the same order.\n"+
			"Example format:\n"+
			"BrandA: positive, no\n"+
			"BrandB: neutral, yes",
		text, numbered.String())

	reply, err := c.complete(ctx, prompt, 60+40*len(names))
	if err != nil {
		return nil, err
	}

	return parseCompetitorReply(reply, names), nil
}

func (c *OpenAIClassifier) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.0),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrClassification)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Classifier = (*OpenAIClassifier)(nil)
