package schedules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitresume/internal/runs"
)

type fakeEngine struct {
	syncs     int
	syncErrs  []error
	triggered []string
}

func (f *fakeEngine) ValidateCron(expr string) error {
	if len(strings.Fields(expr)) != 5 {
		return errors.New("expected exactly 5 fields")
	}
	return nil
}

func (f *fakeEngine) Sync(ctx context.Context) error {
	f.syncs++
	f.syncErrs = append(f.syncErrs, ctx.Err())
	return nil
}

// cancelAfterWrite cancels the request context once a mutation has been
// persisted, like a client that disconnects mid-request.
type cancelAfterWrite struct {
	*MemoryRepo
	cancel context.CancelFunc
}

func (r cancelAfterWrite) SetEnabled(ctx context.Context, id string, enabled bool) (Schedule, error) {
	sched, err := r.MemoryRepo.SetEnabled(ctx, id, enabled)
	r.cancel()
	return sched, err
}

func (f *fakeEngine) RunNow(_ context.Context, id string) (runs.Run, error) {
	f.triggered = append(f.triggered, id)
	return runs.Run{ID: "run-" + id, ScheduleID: id, Status: runs.StatusSkipped}, nil
}

func TestServiceCreateDefaultsEnabledAndSyncs(t *testing.T) {
	engine := &fakeEngine{}
	svc := &Service{Repo: NewMemoryRepo(), Engine: engine}

	sched, err := svc.Create(context.Background(), CreateInput{CronExpr: " 0 9 * * 1 "})
	require.NoError(t, err)
	assert.True(t, sched.IsEnabled)
	assert.Equal(t, "0 9 * * 1", sched.CronExpr)
	assert.Nil(t, sched.Criteria)
	assert.NotEmpty(t, sched.ID)
	assert.Equal(t, 1, engine.syncs)
}

func TestServiceCreateRejectsInvalidCron(t *testing.T) {
	engine := &fakeEngine{}
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Engine: engine}

	_, err := svc.Create(context.Background(), CreateInput{CronExpr: "not-a-cron"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{CronExpr: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, engine.syncs)
}

func TestServiceMutationsSync(t *testing.T) {
	engine := &fakeEngine{}
	svc := &Service{Repo: NewMemoryRepo(), Engine: engine}
	ctx := context.Background()

	disabled := false
	sched, err := svc.Create(ctx, CreateInput{CronExpr: "*/10 * * * *", IsEnabled: &disabled, Criteria: &Criteria{Company: " Acme "}})
	require.NoError(t, err)
	assert.False(t, sched.IsEnabled)
	require.NotNil(t, sched.Criteria)
	assert.Equal(t, "Acme", sched.Criteria.Company)

	updated, err := svc.SetEnabled(ctx, sched.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsEnabled)

	require.NoError(t, svc.Delete(ctx, sched.ID))
	assert.Equal(t, 3, engine.syncs)

	_, err = svc.Get(ctx, sched.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, sched.ID), ErrNotFound)
}

func TestServiceTriggerDelegatesToEngine(t *testing.T) {
	engine := &fakeEngine{}
	svc := &Service{Repo: NewMemoryRepo(), Engine: engine}

	run, err := svc.Trigger(context.Background(), "sched-9")
	require.NoError(t, err)
	assert.Equal(t, "sched-9", run.ScheduleID)
	assert.Equal(t, []string{"sched-9"}, engine.triggered)
}

func TestServiceSyncSurvivesClientDisconnect(t *testing.T) {
	engine := &fakeEngine{}
	mem := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := &Service{Repo: cancelAfterWrite{MemoryRepo: mem, cancel: cancel}, Engine: engine}

	sched, err := svc.Create(ctx, CreateInput{CronExpr: "0 9 * * *"})
	require.NoError(t, err)

	_, err = svc.SetEnabled(ctx, sched.ID, false)
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	require.Len(t, engine.syncErrs, 2)
	assert.NoError(t, engine.syncErrs[1])
}
