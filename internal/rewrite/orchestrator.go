package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fitresume/internal/fingerprint"
	"fitresume/internal/llm"
	"fitresume/internal/llm/gemini"
	"fitresume/internal/llm/openai"
	"fitresume/internal/shared/metrics"
	"fitresume/internal/shared/telemetry"
)

// DefaultTimeout bounds one provider invocation.
const DefaultTimeout = 120 * time.Second

// Backend names accepted in Options.Backend.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
	BackendMock   = "mock"
)

// Options controls provider selection.
type Options struct {
	Backend string
	APIKey  string
	Model   string
	Timeout time.Duration
	// NewCompleter builds the live backend; defaults to NewCompleter.
	NewCompleter func(ctx context.Context, opts Options) (llm.Completer, error)
}

// NewCompleter constructs the completion backend named by opts.Backend.
func NewCompleter(ctx context.Context, opts Options) (llm.Completer, error) {
	switch opts.Backend {
	case BackendGemini:
		return gemini.NewClient(ctx, opts.APIKey, opts.Model)
	case BackendOpenAI, "":
		return openai.NewClient(opts.APIKey, opts.Model, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown rewrite backend %q", opts.Backend)
	}
}

// Select picks the provider once. Without a credential, or when the live
// backend cannot be constructed, it degrades to the deterministic provider.
func Select(ctx context.Context, opts Options) Provider {
	if opts.Backend == BackendMock || strings.TrimSpace(opts.APIKey) == "" {
		telemetry.Info("rewrite.provider_selected", map[string]any{
			"provider": DeterministicName,
			"reason":   "no credential configured",
		})
		return DeterministicProvider{}
	}

	build := opts.NewCompleter
	if build == nil {
		build = NewCompleter
	}
	completer, err := build(ctx, opts)
	if err != nil {
		telemetry.Warn("rewrite.provider_fallback", map[string]any{
			"backend": opts.Backend,
			"error":   err.Error(),
		})
		return DeterministicProvider{}
	}

	live := NewLiveProvider(completer)
	telemetry.Info("rewrite.provider_selected", map[string]any{
		"provider": live.Name(),
		"backend":  opts.Backend,
	})
	return live
}

// Orchestrator runs rewrites through a provider chosen at construction.
type Orchestrator struct {
	provider Provider
	timeout  time.Duration
}

// NewOrchestrator selects the provider for opts.
func NewOrchestrator(ctx context.Context, opts Options) *Orchestrator {
	return NewOrchestratorWithProvider(Select(ctx, opts), opts.Timeout)
}

// NewOrchestratorWithProvider uses p directly. A non-positive timeout means DefaultTimeout.
func NewOrchestratorWithProvider(p Provider, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{provider: p, timeout: timeout}
}

// ProviderName names the selected provider.
func (o *Orchestrator) ProviderName() string {
	return o.provider.Name()
}

// Rewrite produces a plan for the source/target pair. PromptHash is always
// fingerprint.Prompt(source, target), whichever provider ran.
func (o *Orchestrator) Rewrite(ctx context.Context, source, target string) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result, err := o.provider.rewrite(callCtx, source, target)
	if err != nil {
		telemetry.Error("rewrite.failed", map[string]any{
			"provider":    o.provider.Name(),
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
		return Result{}, fmt.Errorf("rewrite via %s: %w", o.provider.Name(), err)
	}

	result.PromptHash = fingerprint.Prompt(source, target)
	if result.ProviderName == "" {
		result.ProviderName = o.provider.Name()
	}
	if result.Fallback {
		metrics.IncRewriteFallback()
	}
	telemetry.Info("rewrite.completed", map[string]any{
		"provider":    result.ProviderName,
		"fallback":    result.Fallback,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}
