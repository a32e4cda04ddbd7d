package resumes

import "context"

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	// Latest returns the newest resume or ErrNotFound when none exist.
	Latest(ctx context.Context) (Resume, error)
	List(ctx context.Context, limit, offset int) ([]Resume, error)
}
