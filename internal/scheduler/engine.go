// Package scheduler keeps the live cron triggers for persisted schedules and
// executes each fire as a tracked run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fitresume/internal/runs"
	"fitresume/internal/schedules"
	"fitresume/internal/shared/telemetry"
)

var (
	// ErrInvalidCron wraps every cron expression parse failure.
	ErrInvalidCron = errors.New("invalid cron expression")

	// ErrClosed is returned once Shutdown has been called.
	ErrClosed = errors.New("scheduler closed")
)

// parser accepts standard 5-field crontab syntax only.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCron reports whether expr is a valid 5-field cron expression.
func ValidateCron(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	return nil
}

// Pipeline is the work executed for each fire.
type Pipeline interface {
	RunSchedule(ctx context.Context, s schedules.Schedule) runs.Result
}

// Options configures an Engine.
type Options struct {
	Schedules schedules.Repo
	Lifecycle *runs.Lifecycle
	Pipeline  Pipeline
	Location  *time.Location
}

// Entry describes one live trigger.
type Entry struct {
	ScheduleID string
	CronExpr   string
	Next       time.Time
}

type registration struct {
	entryID cron.EntryID
	expr    string
	sched   cron.Schedule
}

// Engine maps schedule ids to live cron triggers. The mapping is a cache
// rebuilt from the schedules repo by Sync.
type Engine struct {
	cron      *cron.Cron
	schedules schedules.Repo
	lifecycle *runs.Lifecycle
	pipeline  Pipeline
	loc       *time.Location

	// syncMu orders whole syncs so an older schedule list is never applied
	// after a newer one.
	syncMu sync.Mutex

	mu       sync.Mutex
	entries  map[string]registration
	started  bool
	closed   bool
	inflight sync.WaitGroup
}

// New constructs an Engine. Call Start to arm the timer.
func New(opts Options) (*Engine, error) {
	if opts.Schedules == nil || opts.Lifecycle == nil || opts.Pipeline == nil {
		return nil, errors.New("scheduler: schedules repo, lifecycle and pipeline are required")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(telemetry.CronLogger{}),
		cron.WithChain(cron.Recover(telemetry.CronLogger{})),
	)
	return &Engine{
		cron:      c,
		schedules: opts.Schedules,
		lifecycle: opts.Lifecycle,
		pipeline:  opts.Pipeline,
		loc:       loc,
		entries:   make(map[string]registration),
	}, nil
}

// ValidateCron reports whether expr is a valid 5-field cron expression.
func (e *Engine) ValidateCron(expr string) error {
	return ValidateCron(expr)
}

// Start arms the background timer. Fires run on their own goroutines.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	e.cron.Start()
	telemetry.Info("scheduler.started", map[string]any{"entries": len(e.entries)})
}

// Register installs the live trigger for s, replacing any existing one.
// Disabled schedules end up with no trigger.
func (e *Engine) Register(s schedules.Schedule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.registerLocked(s)
}

func (e *Engine) registerLocked(s schedules.Schedule) error {
	e.removeLocked(s.ID)
	if !s.IsEnabled {
		return nil
	}
	sched, err := parser.Parse(s.CronExpr)
	if err != nil {
		return fmt.Errorf("schedule %s: %w %q: %v", s.ID, ErrInvalidCron, s.CronExpr, err)
	}
	id := s.ID
	entryID := e.cron.Schedule(sched, cron.FuncJob(func() { e.fire(id) }))
	e.entries[id] = registration{entryID: entryID, expr: s.CronExpr, sched: sched}
	telemetry.Info("scheduler.registered", map[string]any{
		"schedule_id": id,
		"cron":        s.CronExpr,
	})
	return nil
}

// Unregister removes the live trigger for id, if any.
func (e *Engine) Unregister(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(id)
}

func (e *Engine) removeLocked(id string) {
	reg, ok := e.entries[id]
	if !ok {
		return
	}
	e.cron.Remove(reg.entryID)
	delete(e.entries, id)
}

// Sync reconciles live triggers against every persisted schedule. Invalid
// expressions are reported together without aborting the rest of the sync.
// Concurrent syncs run one after another.
func (e *Engine) Sync(ctx context.Context) error {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	list, err := e.schedules.List(ctx)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	wanted := make(map[string]struct{}, len(list))
	for _, s := range list {
		wanted[s.ID] = struct{}{}
	}
	for id := range e.entries {
		if _, ok := wanted[id]; !ok {
			e.removeLocked(id)
		}
	}

	var errs []error
	for _, s := range list {
		if reg, ok := e.entries[s.ID]; ok && s.IsEnabled && reg.expr == s.CronExpr {
			continue
		}
		if err := e.registerLocked(s); err != nil {
			errs = append(errs, err)
		}
	}
	telemetry.Info("scheduler.synced", map[string]any{
		"schedules": len(list),
		"entries":   len(e.entries),
		"invalid":   len(errs),
	})
	return errors.Join(errs...)
}

// RunNow executes schedule id through the same path as a cron fire. The
// schedule does not need to be enabled or registered. The run is not
// cancelled when ctx is.
func (e *Engine) RunNow(ctx context.Context, id string) (runs.Run, error) {
	if !e.acquire() {
		return runs.Run{}, ErrClosed
	}
	defer e.inflight.Done()
	return e.execute(context.WithoutCancel(ctx), id, runs.OriginManual)
}

func (e *Engine) fire(id string) {
	if !e.acquire() {
		return
	}
	defer e.inflight.Done()
	if _, err := e.execute(context.Background(), id, runs.OriginScheduled); errors.Is(err, schedules.ErrNotFound) {
		e.Unregister(id)
	}
}

func (e *Engine) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.inflight.Add(1)
	return true
}

func (e *Engine) execute(ctx context.Context, id string, origin runs.Origin) (runs.Run, error) {
	sched, err := e.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, schedules.ErrNotFound) {
			telemetry.Warn("scheduler.schedule_missing", map[string]any{
				"schedule_id": id,
				"origin":      string(origin),
			})
			return runs.Run{}, fmt.Errorf("schedule %s: %w", id, schedules.ErrNotFound)
		}
		return runs.Run{}, fmt.Errorf("load schedule %s: %w", id, err)
	}

	run, err := e.lifecycle.Execute(ctx, runs.Start{
		Origin:     origin,
		Type:       runs.TypeTailor,
		ScheduleID: sched.ID,
	}, func(ctx context.Context) runs.Result {
		return e.pipeline.RunSchedule(ctx, sched)
	})
	if err != nil {
		return run, err
	}
	telemetry.Info("scheduler.run.completed", map[string]any{
		"schedule_id": sched.ID,
		"run_id":      run.ID,
		"origin":      string(origin),
		"status":      string(run.Status),
	})
	return run, nil
}

// Entries lists live triggers ordered by schedule id. Next is computed from
// the parsed expression, so it is meaningful before Start.
func (e *Engine) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := time.Now().In(e.loc)
	out := make([]Entry, 0, len(e.entries))
	for id, reg := range e.entries {
		out = append(out, Entry{
			ScheduleID: id,
			CronExpr:   reg.expr,
			Next:       reg.sched.Next(now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleID < out[j].ScheduleID })
	return out
}

// Registered reports whether id has a live trigger.
func (e *Engine) Registered(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.entries[id]
	return ok
}

// Shutdown removes every live trigger, stops the timer and waits for
// in-flight runs until ctx is done. Runs are never cancelled.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for id := range e.entries {
		e.removeLocked(id)
	}
	stopped := e.cron.Stop()
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		e.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		telemetry.Info("scheduler.stopped", nil)
		return nil
	case <-ctx.Done():
		telemetry.Warn("scheduler.stop_timeout", map[string]any{"error": ctx.Err().Error()})
		return ctx.Err()
	}
}
