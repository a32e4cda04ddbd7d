package schedules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLRepo implements Repo over database/sql (Postgres or SQLite).
// Criteria are stored as JSON text.
type SQLRepo struct {
	DB *sql.DB
}

// Create inserts a schedule.
func (r *SQLRepo) Create(ctx context.Context, s Schedule) error {
	criteria, err := encodeCriteria(s.Criteria)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO schedules (id, cron_expr, is_enabled, criteria, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err = r.DB.ExecContext(ctx, query, s.ID, s.CronExpr, s.IsEnabled, criteria, s.CreatedAt)
	return err
}

// GetByID returns a schedule by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Schedule, error) {
	const query = `
SELECT id, cron_expr, is_enabled, criteria, created_at
FROM schedules
WHERE id = $1
LIMIT 1`
	s, err := scanSchedule(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Schedule{}, ErrNotFound
		}
		return Schedule{}, err
	}
	return s, nil
}

// List returns all schedules oldest first.
func (r *SQLRepo) List(ctx context.Context) ([]Schedule, error) {
	const query = `
SELECT id, cron_expr, is_enabled, criteria, created_at
FROM schedules
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetEnabled flips the enabled flag and returns the updated schedule.
func (r *SQLRepo) SetEnabled(ctx context.Context, id string, enabled bool) (Schedule, error) {
	const query = `UPDATE schedules SET is_enabled = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, enabled)
	if err != nil {
		return Schedule{}, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return Schedule{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a schedule.
func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (Schedule, error) {
	var (
		s        Schedule
		criteria sql.NullString
	)
	if err := row.Scan(&s.ID, &s.CronExpr, &s.IsEnabled, &criteria, &s.CreatedAt); err != nil {
		return Schedule{}, err
	}
	if criteria.Valid && criteria.String != "" {
		var c Criteria
		if err := json.Unmarshal([]byte(criteria.String), &c); err != nil {
			return Schedule{}, fmt.Errorf("decode criteria for schedule %s: %w", s.ID, err)
		}
		if !c.Empty() {
			s.Criteria = &c
		}
	}
	return s, nil
}

func encodeCriteria(c *Criteria) (any, error) {
	if c.Empty() {
		return nil, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode criteria: %w", err)
	}
	return string(raw), nil
}

var _ Repo = (*SQLRepo)(nil)
