package schedules

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores schedules in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Schedule
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Schedule)}
}

// Create stores the schedule.
func (r *MemoryRepo) Create(ctx context.Context, s Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = cloneSchedule(s)
	return nil
}

// GetByID returns a schedule by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Schedule, error) {
	if err := ctx.Err(); err != nil {
		return Schedule{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return Schedule{}, ErrNotFound
	}
	return cloneSchedule(s), nil
}

// List returns all schedules oldest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Schedule, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, cloneSchedule(s))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SetEnabled flips the enabled flag.
func (r *MemoryRepo) SetEnabled(ctx context.Context, id string, enabled bool) (Schedule, error) {
	if err := ctx.Err(); err != nil {
		return Schedule{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return Schedule{}, ErrNotFound
	}
	s.IsEnabled = enabled
	r.byID[id] = s
	return cloneSchedule(s), nil
}

// Delete removes a schedule.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneSchedule(s Schedule) Schedule {
	if s.Criteria != nil {
		c := *s.Criteria
		s.Criteria = &c
	}
	return s
}

var _ Repo = (*MemoryRepo)(nil)
