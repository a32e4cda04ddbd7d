package versions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores versions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Version
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Version)}
}

// Create stores the version.
func (r *MemoryRepo) Create(ctx context.Context, v Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.ID] = v
	return nil
}

// GetByID returns a version by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	if !ok {
		return Version{}, ErrNotFound
	}
	return v, nil
}

// List returns versions newest first.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Version, 0, len(r.byID))
	for _, v := range r.byID {
		if filter.ResumeID != "" && v.ResumeID != filter.ResumeID {
			continue
		}
		if filter.JobPostingID != "" && v.JobPostingID != filter.JobPostingID {
			continue
		}
		if filter.InputSignature != "" && v.InputSignature != filter.InputSignature {
			continue
		}
		out = append(out, v)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Version{}, nil
	}
	end := offset + normalizeLimit(filter.Limit)
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
