package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLRepoCreateEncodesCriteria(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &SQLRepo{DB: db}
	s := Schedule{
		ID:        "sched-1",
		CronExpr:  "0 9 * * 1",
		IsEnabled: true,
		Criteria:  &Criteria{Company: "Acme"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(s.ID, s.CronExpr, true, `{"company":"Acme"}`, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoCreateEmptyCriteriaIsNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &SQLRepo{DB: db}
	s := Schedule{ID: "sched-2", CronExpr: "*/5 * * * *", Criteria: &Criteria{}, CreatedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(s.ID, s.CronExpr, false, nil, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoListDecodesCriteria(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &SQLRepo{DB: db}
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM schedules").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cron_expr", "is_enabled", "criteria", "created_at"}).
			AddRow("a", "0 * * * *", true, `{"resume_id":"r1"}`, now).
			AddRow("b", "0 0 * * *", false, nil, now))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(got))
	}
	if got[0].Criteria == nil || got[0].Criteria.ResumeID != "r1" {
		t.Fatalf("criteria not decoded: %+v", got[0])
	}
	if got[1].Criteria != nil || got[1].IsEnabled {
		t.Fatalf("unexpected second schedule: %+v", got[1])
	}
}

func TestSQLRepoDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &SQLRepo{DB: db}
	mock.ExpectExec("DELETE FROM schedules").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
