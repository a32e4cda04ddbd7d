package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// SQLRepo implements Repo over database/sql (Postgres or SQLite).
type SQLRepo struct {
	DB *sql.DB
}

const selectColumns = `SELECT id, file_path, format, text, text_hash, created_at FROM resumes`

// Create inserts a resume.
func (r *SQLRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, file_path, format, text, text_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		res.ID,
		res.FilePath,
		res.Format,
		res.Text,
		res.TextHash,
		res.CreatedAt,
	)
	return err
}

// GetByID returns a resume by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	return r.one(ctx, selectColumns+"\nWHERE id = $1\nLIMIT 1", id)
}

// Latest returns the newest resume.
func (r *SQLRepo) Latest(ctx context.Context) (Resume, error) {
	return r.one(ctx, selectColumns+"\nORDER BY created_at DESC, id DESC\nLIMIT 1")
}

// List returns resumes newest first.
func (r *SQLRepo) List(ctx context.Context, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, selectColumns+"\nORDER BY created_at DESC, id DESC\nLIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLRepo) one(ctx context.Context, query string, args ...any) (Resume, error) {
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res      Resume
		text     sql.NullString
		textHash sql.NullString
	)
	if err := row.Scan(&res.ID, &res.FilePath, &res.Format, &text, &textHash, &res.CreatedAt); err != nil {
		return Resume{}, err
	}
	res.Text = text.String
	res.TextHash = textHash.String
	return res, nil
}

var _ Repo = (*SQLRepo)(nil)
