package versions

import "context"

// Repo defines persistence operations for versions.
type Repo interface {
	Create(ctx context.Context, v Version) error
	GetByID(ctx context.Context, id string) (Version, error)
	List(ctx context.Context, filter ListFilter) ([]Version, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
