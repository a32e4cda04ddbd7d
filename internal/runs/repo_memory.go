package runs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Run
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Run)}
}

// Create stores the run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[run.ID] = run
	return nil
}

// Finish applies the terminal transition.
func (r *MemoryRepo) Finish(ctx context.Context, id string, status Status, errText string, finishedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !status.Terminal() {
		return ErrInvalidTransition
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if run.Status != StatusRunning {
		return ErrAlreadyFinished
	}
	run.Status = status
	run.Error = errText
	run.FinishedAt = &finishedAt
	r.byID[id] = run
	return nil
}

// GetByID returns a run by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byID[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// List returns runs newest first.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Run, 0, len(r.byID))
	for _, run := range r.byID {
		if filter.ScheduleID != "" && run.ScheduleID != filter.ScheduleID {
			continue
		}
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		out = append(out, run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	limit := normalizeLimit(filter.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
