package versions

import "context"

// Service exposes version history to the API.
type Service struct {
	Repo Repo
}

// List returns versions newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Version, error) {
	return s.Repo.List(ctx, filter)
}

// Get returns a single version.
func (s *Service) Get(ctx context.Context, id string) (Version, error) {
	if id == "" {
		return Version{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}
