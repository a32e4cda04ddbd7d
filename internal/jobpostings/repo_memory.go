package jobpostings

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores job postings in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]JobPosting
	byHash map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]JobPosting),
		byHash: make(map[string]string),
	}
}

// Create stores the posting.
func (r *MemoryRepo) Create(ctx context.Context, p JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[p.URLHash]; ok {
		return ErrDuplicate
	}
	r.byID[p.ID] = p
	r.byHash[p.URLHash] = p.ID
	return nil
}

// GetByID returns a posting by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return JobPosting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return JobPosting{}, ErrNotFound
	}
	return p, nil
}

// GetByURLHash returns a posting by its identity hash.
func (r *MemoryRepo) GetByURLHash(ctx context.Context, hash string) (JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return JobPosting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[hash]
	if !ok {
		return JobPosting{}, ErrNotFound
	}
	return r.byID[id], nil
}

// Latest returns the newest posting, optionally for one company.
func (r *MemoryRepo) Latest(ctx context.Context, company string) (JobPosting, error) {
	all, err := r.List(ctx, 0, 0)
	if err != nil {
		return JobPosting{}, err
	}
	company = strings.TrimSpace(company)
	for _, p := range all {
		if company == "" || strings.EqualFold(p.CompanyName, company) {
			return p, nil
		}
	}
	return JobPosting{}, ErrNotFound
}

// List returns postings newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	out := make([]JobPosting, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CollectedAt.Equal(out[j].CollectedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CollectedAt.After(out[j].CollectedAt)
	})
	if offset >= len(out) {
		return []JobPosting{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
