package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the /health payload.
type Status struct {
	OK        bool   `json:"ok"`
	Database  string `json:"database"`
	Schedules int    `json:"schedules"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
	// Registered reports the number of schedules held by the engine.
	Registered func() int
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger, registered func() int) *Service {
	return &Service{DB: db, Registered: registered}
}

// Status reports database reachability and the scheduler's entry count.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory"}
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			st.OK = false
			st.Database = "unreachable"
		} else {
			st.Database = "ok"
		}
	}
	if s.Registered != nil {
		st.Schedules = s.Registered()
	}
	return st
}
