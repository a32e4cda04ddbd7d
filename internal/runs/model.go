package runs

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Origin records what triggered a run.
type Origin string

const (
	OriginManual    Origin = "manual"
	OriginScheduled Origin = "scheduled"
)

// TypeTailor is the only pipeline type today.
const TypeTailor = "tailor"

// Run is one pipeline execution.
type Run struct {
	ID         string
	Origin     Origin
	Type       string
	ScheduleID string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     Status
	Error      string
}

// ListFilter narrows Repo.List.
type ListFilter struct {
	ScheduleID string
	Status     Status
	Limit      int
}
