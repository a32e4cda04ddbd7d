package jobpostings

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// SQLRepo implements Repo over database/sql (Postgres or SQLite).
type SQLRepo struct {
	DB *sql.DB
}

const selectColumns = `SELECT id, title, company_name, location, url, raw_text, external_id, url_hash, collected_at FROM job_postings`

// Create inserts a posting. Unique violations on url_hash surface as ErrDuplicate.
func (r *SQLRepo) Create(ctx context.Context, p JobPosting) error {
	const query = `
INSERT INTO job_postings (
    id, title, company_name, location, url, raw_text, external_id, url_hash, collected_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.Title,
		nullString(p.CompanyName),
		nullString(p.Location),
		nullString(p.URL),
		nullString(p.RawText),
		nullString(p.ExternalID),
		p.URLHash,
		p.CollectedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID returns a posting by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (JobPosting, error) {
	return r.one(ctx, selectColumns+"\nWHERE id = $1\nLIMIT 1", id)
}

// GetByURLHash returns a posting by its identity hash.
func (r *SQLRepo) GetByURLHash(ctx context.Context, hash string) (JobPosting, error) {
	return r.one(ctx, selectColumns+"\nWHERE url_hash = $1\nLIMIT 1", hash)
}

// Latest returns the newest posting, optionally for one company.
func (r *SQLRepo) Latest(ctx context.Context, company string) (JobPosting, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return r.one(ctx, selectColumns+"\nORDER BY collected_at DESC, id DESC\nLIMIT 1")
	}
	return r.one(ctx, selectColumns+"\nWHERE LOWER(company_name) = LOWER($1)\nORDER BY collected_at DESC, id DESC\nLIMIT 1", company)
}

// List returns postings newest first.
func (r *SQLRepo) List(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, selectColumns+"\nORDER BY collected_at DESC, id DESC\nLIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLRepo) one(ctx context.Context, query string, args ...any) (JobPosting, error) {
	p, err := scanPosting(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobPosting{}, ErrNotFound
		}
		return JobPosting{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (JobPosting, error) {
	var (
		p                                            JobPosting
		company, location, url, rawText, externalID sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Title, &company, &location, &url, &rawText, &externalID, &p.URLHash, &p.CollectedAt); err != nil {
		return JobPosting{}, err
	}
	p.CompanyName = company.String
	p.Location = location.String
	p.URL = url.String
	p.RawText = rawText.String
	p.ExternalID = externalID.String
	return p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var _ Repo = (*SQLRepo)(nil)
