package runs

import "errors"

var (
	// ErrNotFound indicates a run does not exist.
	ErrNotFound = errors.New("run not found")

	// ErrAlreadyFinished indicates a terminal run was asked to transition again.
	ErrAlreadyFinished = errors.New("run already finished")

	// ErrInvalidTransition indicates a transition to a non-terminal status.
	ErrInvalidTransition = errors.New("invalid run transition")
)
