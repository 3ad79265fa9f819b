// Package rerank refines fast-filter candidates with a vision-language model
// and fuses the two scores into the final relevance.
package rerank

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
)

// Analysis is the parsed outcome of one image analysis call.
type Analysis struct {
	Score       float64
	Description string
}

// Analyzer scores one image against a query. Implementations must be safe
// for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, query, filename string, image []byte) (Analysis, error)
}

// ClientConfig holds the settings for the OpenAI-compatible analysis backend
// (e.g. Ollama's /v1 endpoint).
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client is an Analyzer backed by an OpenAI-compatible chat completion API
// with image input.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClient creates an analysis client.
func NewClient(cfg *ClientConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// analysisPrompt asks the model for a machine-parseable score line followed
// by a one-line description; ParseResponse depends on this shape.
const analysisPrompt = `Analyze this surveillance camera image.

Search query: %q

Consider:
1. The main elements visible in the image (roads, vessels, weather conditions, etc.)
2. Relevance to the search query (a 0-1 score)
3. A brief one-line description

Response format:
Score: [0.0-1.0]
Description: [brief one-line description]`

// Analyze sends the image and query to the model and parses the response.
func (c *Client) Analyze(ctx context.Context, query, filename string, image []byte) (Analysis, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(analysisPrompt, query),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageDataURL(filename, image),
						},
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return Analysis{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, errors.New("empty analysis response")
	}
	return ParseResponse(resp.Choices[0].Message.Content, query), nil
}

// HealthCheck verifies the analysis backend is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// imageDataURL encodes the image bytes as a data URL for the image part.
func imageDataURL(filename string, image []byte) string {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// parseAPIError extracts a readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("analysis API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("analysis API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("analysis request failed: %w", err)
}
