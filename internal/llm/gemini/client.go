package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fitresume/internal/llm"
	"fitresume/internal/shared/telemetry"
)

// DefaultModel is used when LLM_MODEL is unset.
const DefaultModel = "gemini-1.5-flash"

// Client implements llm.Completer for Google Gemini.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system + user exchange.
func (c *Client) Complete(ctx context.Context, in llm.Request) (llm.Response, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	if strings.TrimSpace(in.System) != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(in.System)}}
	}
	if in.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(in.Prompt))
	if err != nil {
		return llm.Response{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return llm.Response{}, err
	}
	if in.JSON {
		text = cleanJSONBlock(text)
	}
	if strings.TrimSpace(text) == "" {
		return llm.Response{}, llm.ErrEmptyResponse
	}

	out := llm.Response{Content: strings.TrimSpace(text), Usage: usageFrom(resp)}
	fields := map[string]any{"model": c.model, "json_mode": in.JSON}
	if out.Usage != nil {
		fields["total_tokens"] = out.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return out, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

func usageFrom(resp *genai.GenerateContentResponse) *llm.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	meta := resp.UsageMetadata
	return &llm.Usage{
		PromptTokens:     int(meta.PromptTokenCount),
		CompletionTokens: int(meta.CandidatesTokenCount),
		TotalTokens:      int(meta.TotalTokenCount),
	}
}

// cleanJSONBlock removes markdown code fences around JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

var _ llm.Completer = (*Client)(nil)
