package schedules

import "errors"

var (
	// ErrNotFound indicates a schedule does not exist.
	ErrNotFound = errors.New("schedule not found")

	// ErrInvalidInput indicates a schedule request failed validation.
	ErrInvalidInput = errors.New("invalid schedule input")
)
