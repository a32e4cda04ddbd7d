package schedules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"fitresume/internal/runs"
	"fitresume/internal/shared/telemetry"
)

// Engine is the live trigger registry that schedule mutations re-sync.
type Engine interface {
	ValidateCron(expr string) error
	Sync(ctx context.Context) error
	RunNow(ctx context.Context, id string) (runs.Run, error)
}

// CreateInput is the validated payload for a new schedule.
type CreateInput struct {
	CronExpr  string    `json:"cron_expr" validate:"required,max=120"`
	IsEnabled *bool     `json:"is_enabled"`
	Criteria  *Criteria `json:"criteria"`
}

var validate = validator.New()

// Validate checks field-level constraints.
func (in *CreateInput) Validate() error {
	in.CronExpr = strings.TrimSpace(in.CronExpr)
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	return nil
}

// Service contains business logic for schedules.
type Service struct {
	Repo   Repo
	Engine Engine
	Now    func() time.Time
}

// Create validates and persists a schedule, then re-syncs live triggers.
func (s *Service) Create(ctx context.Context, in CreateInput) (Schedule, error) {
	if err := in.Validate(); err != nil {
		return Schedule{}, err
	}
	if s.Engine != nil {
		if err := s.Engine.ValidateCron(in.CronExpr); err != nil {
			return Schedule{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	enabled := true
	if in.IsEnabled != nil {
		enabled = *in.IsEnabled
	}
	var criteria *Criteria
	if !in.Criteria.Empty() {
		c := Criteria{
			ResumeID:     strings.TrimSpace(in.Criteria.ResumeID),
			JobPostingID: strings.TrimSpace(in.Criteria.JobPostingID),
			Company:      strings.TrimSpace(in.Criteria.Company),
		}
		criteria = &c
	}

	sched := Schedule{
		ID:        uuid.NewString(),
		CronExpr:  in.CronExpr,
		IsEnabled: enabled,
		Criteria:  criteria,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, sched); err != nil {
		return Schedule{}, err
	}
	telemetry.Info("schedule.created", map[string]any{
		"schedule_id": sched.ID,
		"cron":        sched.CronExpr,
		"enabled":     sched.IsEnabled,
	})
	s.sync(ctx)
	return sched, nil
}

// List returns all schedules.
func (s *Service) List(ctx context.Context) ([]Schedule, error) {
	return s.Repo.List(ctx)
}

// Get returns one schedule.
func (s *Service) Get(ctx context.Context, id string) (Schedule, error) {
	if strings.TrimSpace(id) == "" {
		return Schedule{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// SetEnabled enables or disables a schedule. Disabling only prevents future fires.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (Schedule, error) {
	sched, err := s.Repo.SetEnabled(ctx, id, enabled)
	if err != nil {
		return Schedule{}, err
	}
	telemetry.Info("schedule.updated", map[string]any{
		"schedule_id": id,
		"enabled":     enabled,
	})
	s.sync(ctx)
	return sched, nil
}

// Delete removes a schedule and its live trigger.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	telemetry.Info("schedule.deleted", map[string]any{"schedule_id": id})
	s.sync(ctx)
	return nil
}

// Trigger runs a schedule immediately regardless of its enabled flag.
func (s *Service) Trigger(ctx context.Context, id string) (runs.Run, error) {
	if s.Engine == nil {
		return runs.Run{}, errors.New("schedules: no engine configured")
	}
	return s.Engine.RunNow(ctx, id)
}

// sync failures for other schedules never fail the mutation that caused them.
// The row is already persisted, so the sync outlives the caller's context.
func (s *Service) sync(ctx context.Context) {
	if s.Engine == nil {
		return
	}
	if err := s.Engine.Sync(context.WithoutCancel(ctx)); err != nil {
		telemetry.Warn("schedule.sync_failed", map[string]any{"error": err.Error()})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
