package jobpostings

import "errors"

var (
	// ErrNotFound indicates a job posting does not exist.
	ErrNotFound = errors.New("job posting not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate indicates a posting with the same identity hash exists.
	ErrDuplicate = errors.New("duplicate job posting")
)
