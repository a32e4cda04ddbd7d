package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fitresume/internal/llm"
	"fitresume/internal/shared/telemetry"
	"fitresume/resume/model"
)

// DeterministicName is the provider name recorded for offline output.
const DeterministicName = "mock"

// MockMarker prefixes deterministic content so callers can spot it.
const MockMarker = "[MOCK OUTPUT]"

// Result is the outcome of one rewrite.
type Result struct {
	Plan         model.Plan
	RenderedText string
	ProviderName string
	PromptHash   string
	TokenUsage   *TokenUsage
	Fallback     bool
}

// TokenUsage is recorded on versions and in meta.json.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is a rewrite strategy. The set of implementations is closed:
// DeterministicProvider and LiveProvider.
type Provider interface {
	Name() string
	rewrite(ctx context.Context, source, target string) (Result, error)
}

// DeterministicProvider always succeeds with a fixed, clearly marked plan.
type DeterministicProvider struct{}

// Name implements Provider.
func (DeterministicProvider) Name() string { return DeterministicName }

func (DeterministicProvider) rewrite(_ context.Context, source, target string) (Result, error) {
	telemetry.Info("rewrite.mock", map[string]any{
		"resume_length": len(source),
		"job_length":    len(target),
	})
	plan := MockPlan()
	return Result{
		Plan:         plan,
		RenderedText: RenderText(plan),
		ProviderName: DeterministicName,
		Fallback:     true,
	}, nil
}

// MockPlan returns the placeholder plan of the deterministic provider.
func MockPlan() model.Plan {
	return model.Plan{
		Summary: MockMarker + " Tailored summary based on provided resume and job description.",
		Skills:  []string{MockMarker + " Skill A", "Skill B"},
		Experience: []model.Experience{{
			Employer: "Current Employer",
			Role:     "Relevant Role",
			Start:    "2020",
			End:      "Present",
			Bullets: []string{
				"Aligned achievements with job posting keywords.",
				"Demonstrated leadership and impact in relevant projects.",
			},
		}},
		Education:      []string{"Degree, University"},
		Certifications: []string{"Certification"},
	}
}

// LiveProvider asks a completion backend for a JSON plan, then for a narrative rendering of it.
type LiveProvider struct {
	completer llm.Completer
}

// NewLiveProvider wraps a completion backend.
func NewLiveProvider(c llm.Completer) *LiveProvider {
	return &LiveProvider{completer: c}
}

// Name implements Provider.
func (p *LiveProvider) Name() string { return p.completer.Model() }

func (p *LiveProvider) rewrite(ctx context.Context, source, target string) (Result, error) {
	planResp, err := p.completer.Complete(ctx, llm.Request{
		System: llm.SystemPrompt(),
		Prompt: fmt.Sprintf("%s\nJob Posting:\n%s\nResume:\n%s", strings.TrimSpace(llm.PlanPrompt()), target, source),
		JSON:   true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("plan request: %w", err)
	}

	plan, err := DecodePlan(planResp.Content)
	if err != nil {
		return Result{}, err
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return Result{}, fmt.Errorf("encode plan: %w", err)
	}
	renderResp, err := p.completer.Complete(ctx, llm.Request{
		System: llm.SystemPrompt(),
		Prompt: fmt.Sprintf("%s\nPlan JSON:\n%s", strings.TrimSpace(llm.RenderPrompt()), planJSON),
	})
	if err != nil {
		return Result{}, fmt.Errorf("render request: %w", err)
	}

	return Result{
		Plan:         plan,
		RenderedText: renderResp.Content,
		ProviderName: p.Name(),
		TokenUsage:   sumUsage(planResp.Usage, renderResp.Usage),
	}, nil
}

// DecodePlan validates raw plan JSON against the plan schema, decodes it and
// rejects plans without content.
func DecodePlan(raw string) (model.Plan, error) {
	if err := ValidatePlanJSON(raw); err != nil {
		return model.Plan{}, err
	}
	var plan model.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return model.Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	plan = plan.Normalize()
	if err := plan.Validate(); err != nil {
		return model.Plan{}, fmt.Errorf("invalid plan: %w", err)
	}
	return plan, nil
}

func sumUsage(parts ...*llm.Usage) *TokenUsage {
	var out *TokenUsage
	for _, u := range parts {
		if u == nil {
			continue
		}
		if out == nil {
			out = &TokenUsage{}
		}
		out.PromptTokens += u.PromptTokens
		out.CompletionTokens += u.CompletionTokens
		out.TotalTokens += u.TotalTokens
	}
	return out
}

var (
	_ Provider = DeterministicProvider{}
	_ Provider = (*LiveProvider)(nil)
)
