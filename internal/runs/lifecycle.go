package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fitresume/internal/shared/metrics"
	"fitresume/internal/shared/telemetry"
)

// Result is what a pipeline reports back to the lifecycle.
type Result struct {
	Status Status
	Error  string
}

// Succeeded reports a completed pipeline.
func Succeeded() Result {
	return Result{Status: StatusSuccess}
}

// Skipped reports that there was nothing to do.
func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Error: reason}
}

// Failed reports a pipeline error; the message is kept verbatim.
func Failed(err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Status: StatusFailed, Error: msg}
}

// Start describes the run to open.
type Start struct {
	Origin     Origin
	Type       string
	ScheduleID string
}

// Lifecycle opens a run, executes a pipeline and closes the run exactly once.
type Lifecycle struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

// NewLifecycle constructs a Lifecycle backed by repo.
func NewLifecycle(repo Repo) *Lifecycle {
	return &Lifecycle{Repo: repo}
}

// Execute runs fn inside a tracked Run. Pipeline errors and panics become a
// failed Run; the returned error is non-nil only when the Run itself could
// not be persisted.
func (l *Lifecycle) Execute(ctx context.Context, start Start, fn func(ctx context.Context) Result) (Run, error) {
	if l.Repo == nil {
		return Run{}, errors.New("runs: missing repo")
	}
	if start.Type == "" {
		start.Type = TypeTailor
	}
	if start.Origin == "" {
		start.Origin = OriginManual
	}

	run := Run{
		ID:         l.newID(),
		Origin:     start.Origin,
		Type:       start.Type,
		ScheduleID: start.ScheduleID,
		StartedAt:  l.now().UTC(),
		Status:     StatusRunning,
	}
	if err := l.Repo.Create(ctx, run); err != nil {
		telemetry.Error("run.create_failed", map[string]any{
			"schedule_id": start.ScheduleID,
			"origin":      string(start.Origin),
			"error":       err.Error(),
		})
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	metrics.IncRunStarted()
	telemetry.Info("run.started", map[string]any{
		"run_id":      run.ID,
		"schedule_id": run.ScheduleID,
		"origin":      string(run.Origin),
		"type":        run.Type,
	})

	result := invoke(ctx, fn)
	if !result.Status.Terminal() {
		result = Failed(fmt.Errorf("pipeline returned non-terminal status %q", result.Status))
	}

	finishedAt := l.now().UTC()
	// The run must reach a terminal state even when the caller has gone away.
	if err := l.Repo.Finish(context.WithoutCancel(ctx), run.ID, result.Status, result.Error, finishedAt); err != nil {
		telemetry.Error("run.finish_failed", map[string]any{
			"run_id": run.ID,
			"status": string(result.Status),
			"error":  err.Error(),
		})
		return run, fmt.Errorf("finish run %s: %w", run.ID, err)
	}

	run.Status = result.Status
	run.Error = result.Error
	run.FinishedAt = &finishedAt

	duration := finishedAt.Sub(run.StartedAt)
	metrics.IncRunFinished(string(run.Status))
	metrics.ObserveRunDurationMs(float64(duration.Milliseconds()))

	fields := map[string]any{
		"run_id":      run.ID,
		"schedule_id": run.ScheduleID,
		"origin":      string(run.Origin),
		"status":      string(run.Status),
		"duration_ms": duration.Milliseconds(),
	}
	if run.Error != "" {
		fields["error"] = run.Error
	}
	if run.Status == StatusFailed {
		telemetry.Error("run.finished", fields)
	} else {
		telemetry.Info("run.finished", fields)
	}
	return run, nil
}

func invoke(ctx context.Context, fn func(ctx context.Context) Result) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = Failed(fmt.Errorf("panic: %v", rec))
		}
	}()
	return fn(ctx)
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Lifecycle) newID() string {
	if l.NewID != nil {
		return l.NewID()
	}
	return uuid.NewString()
}
