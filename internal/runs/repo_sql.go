package runs

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SQLRepo implements Repo over database/sql (Postgres or SQLite).
type SQLRepo struct {
	DB *sql.DB
}

// Create inserts a run.
func (r *SQLRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO runs (
    id, trigger_origin, type, schedule_id, started_at, finished_at, status, error
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		string(run.Origin),
		run.Type,
		nullString(run.ScheduleID),
		run.StartedAt,
		nullTime(run.FinishedAt),
		string(run.Status),
		nullString(run.Error),
	)
	return err
}

// Finish applies the terminal transition only while the run is still running.
func (r *SQLRepo) Finish(ctx context.Context, id string, status Status, errText string, finishedAt time.Time) error {
	if !status.Terminal() {
		return ErrInvalidTransition
	}
	const query = `
UPDATE runs
SET status = $2, error = $3, finished_at = $4
WHERE id = $1 AND status = 'running'`
	res, err := r.DB.ExecContext(ctx, query, id, string(status), nullString(errText), finishedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyFinished
}

// GetByID returns a run by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Run, error) {
	const query = `
SELECT id, trigger_origin, type, schedule_id, started_at, finished_at, status, error
FROM runs
WHERE id = $1
LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// List returns runs newest first.
func (r *SQLRepo) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ScheduleID != "" {
		args = append(args, filter.ScheduleID)
		conds = append(conds, "schedule_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	query := `
SELECT id, trigger_origin, type, schedule_id, started_at, finished_at, status, error
FROM runs`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, normalizeLimit(filter.Limit))
	query += "\nORDER BY started_at DESC\nLIMIT $" + strconv.Itoa(len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		origin     string
		status     string
		scheduleID sql.NullString
		finishedAt sql.NullTime
		errText    sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&origin,
		&run.Type,
		&scheduleID,
		&run.StartedAt,
		&finishedAt,
		&status,
		&errText,
	); err != nil {
		return Run{}, err
	}
	run.Origin = Origin(origin)
	run.Status = Status(status)
	run.ScheduleID = scheduleID.String
	run.Error = errText.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

var _ Repo = (*SQLRepo)(nil)
