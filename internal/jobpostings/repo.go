package jobpostings

import "context"

// Repo defines persistence operations for job postings.
type Repo interface {
	// Create returns ErrDuplicate when the url hash is already stored.
	Create(ctx context.Context, p JobPosting) error
	GetByID(ctx context.Context, id string) (JobPosting, error)
	GetByURLHash(ctx context.Context, hash string) (JobPosting, error)
	// Latest returns the newest posting, optionally restricted to a company
	// name (case-insensitive). ErrNotFound when nothing matches.
	Latest(ctx context.Context, company string) (JobPosting, error)
	List(ctx context.Context, limit, offset int) ([]JobPosting, error)
}
