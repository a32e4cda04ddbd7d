package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestStatusWithoutDatabase(t *testing.T) {
	svc := NewService(nil, func() int { return 3 })
	st := svc.Status(context.Background())
	if !st.OK || st.Database != "memory" || st.Schedules != 3 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusReportsUnreachableDatabase(t *testing.T) {
	svc := NewService(stubPinger{err: errors.New("refused")}, nil)
	st := svc.Status(context.Background())
	if st.OK || st.Database != "unreachable" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusHealthyDatabase(t *testing.T) {
	svc := NewService(stubPinger{}, nil)
	st := svc.Status(context.Background())
	if !st.OK || st.Database != "ok" {
		t.Fatalf("unexpected status %+v", st)
	}
}
