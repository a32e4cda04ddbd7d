package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-1.5-flash"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestExtractTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("{\"summary\":"), genai.Text("\"x\"}")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3, TotalTokenCount: 10},
	}
	got, err := extractTextFromResponse(resp)
	if err != nil {
		t.Fatalf("extractTextFromResponse: %v", err)
	}
	if got != `{"summary":"x"}` {
		t.Fatalf("unexpected text %q", got)
	}
	usage := usageFrom(resp)
	if usage == nil || usage.TotalTokens != 10 || usage.CompletionTokens != 3 {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestExtractTextErrors(t *testing.T) {
	if _, err := extractTextFromResponse(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
	empty := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}
	if _, err := extractTextFromResponse(empty); err == nil {
		t.Fatalf("expected error for missing content")
	}
	if usageFrom(empty) != nil {
		t.Fatalf("expected nil usage")
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```{\"a\":1}```":         `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range tests {
		if got := cleanJSONBlock(in); got != want {
			t.Fatalf("cleanJSONBlock(%q) = %q, want %q", in, got, want)
		}
	}
}
