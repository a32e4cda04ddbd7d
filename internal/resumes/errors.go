package resumes

import "errors"

var (
	// ErrNotFound indicates a resume does not exist.
	ErrNotFound = errors.New("resume not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
