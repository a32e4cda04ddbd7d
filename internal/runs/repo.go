package runs

import (
	"context"
	"time"
)

// Repo defines persistence operations for runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	// Finish moves a running run to a terminal status. It returns
	// ErrAlreadyFinished when the run is no longer running.
	Finish(ctx context.Context, id string, status Status, errText string, finishedAt time.Time) error
	GetByID(ctx context.Context, id string) (Run, error)
	List(ctx context.Context, filter ListFilter) ([]Run, error)
}
