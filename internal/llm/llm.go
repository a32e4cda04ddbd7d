package llm

import (
	"context"
	_ "embed"
	"errors"
)

var (
	//go:embed prompts/system.txt
	systemPrompt string
	//go:embed prompts/plan.txt
	planPrompt string
	//go:embed prompts/render.txt
	renderPrompt string
)

// Completer is a chat-completion backend used by the live rewrite provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
	// Model names the backend model; it becomes the provider name on version records.
	Model() string
}

// Request is a single system + user exchange.
type Request struct {
	System string
	Prompt string
	// JSON asks the backend for a single JSON object.
	JSON bool
}

// Response carries the completion text and token accounting when the backend reports it.
type Response struct {
	Content string
	Usage   *Usage
}

// Usage holds token counters for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ErrEmptyResponse is returned when a backend answers without content.
var ErrEmptyResponse = errors.New("llm response empty content")

// SystemPrompt returns the editor instructions shared by both rewrite calls.
func SystemPrompt() string { return systemPrompt }

// PlanPrompt returns the instructions for the structured plan call.
func PlanPrompt() string { return planPrompt }

// RenderPrompt returns the instructions for the narrative rendering call.
func RenderPrompt() string { return renderPrompt }
