package schedules

import "context"

// Repo defines persistence operations for schedules.
type Repo interface {
	Create(ctx context.Context, s Schedule) error
	GetByID(ctx context.Context, id string) (Schedule, error)
	List(ctx context.Context) ([]Schedule, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (Schedule, error)
	Delete(ctx context.Context, id string) error
}
