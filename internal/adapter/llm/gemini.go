package llm

import (
	"context"
	"fmt"
	"strings"

	"trail-orchestrator/internal/domain"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiClient wraps the Google GenAI SDK behind the completion interface.
// A token-bucket limiter keeps the pipeline inside the API quota even when
// several sessions chat at once.
type GeminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

func NewGeminiClient(ctx context.Context, apiKey, model string, requestsPerSecond float64) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// Complete performs one generation call with the given system instruction
// and sampling temperature.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// Provider returns the wrapped model name for logging.
func (c *GeminiClient) Provider() string {
	return "gemini:" + c.model
}

var _ domain.CompletionClient = (*GeminiClient)(nil)
