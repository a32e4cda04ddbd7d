package runs

import "context"

// Service exposes run history to the API.
type Service struct {
	Repo Repo
}

// List returns runs newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	return s.Repo.List(ctx, filter)
}

// Get returns a single run.
func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	if id == "" {
		return Run{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}
