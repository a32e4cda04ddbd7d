package versions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fitresume/internal/rewrite"
)

// SQLRepo implements Repo over database/sql (Postgres or SQLite).
// Token usage is stored as JSON text.
type SQLRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, resume_id, job_posting_id, artifact_path, base_hash, job_hash, input_signature,
       template_version, provider_name, prompt_hash, token_usage, created_at
FROM resume_versions`

// Create inserts a version.
func (r *SQLRepo) Create(ctx context.Context, v Version) error {
	var usage any
	if v.TokenUsage != nil {
		raw, err := json.Marshal(v.TokenUsage)
		if err != nil {
			return fmt.Errorf("encode token usage: %w", err)
		}
		usage = string(raw)
	}
	const query = `
INSERT INTO resume_versions (
    id, resume_id, job_posting_id, artifact_path, base_hash, job_hash, input_signature,
    template_version, provider_name, prompt_hash, token_usage, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.ExecContext(ctx, query,
		v.ID,
		v.ResumeID,
		v.JobPostingID,
		v.ArtifactPath,
		v.BaseHash,
		v.JobHash,
		v.InputSignature,
		v.TemplateVersion,
		v.ProviderName,
		v.PromptHash,
		usage,
		v.CreatedAt,
	)
	return err
}

// GetByID returns a version by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Version, error) {
	v, err := scanVersion(r.DB.QueryRowContext(ctx, selectColumns+"\nWHERE id = $1\nLIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// List returns versions newest first.
func (r *SQLRepo) List(ctx context.Context, filter ListFilter) ([]Version, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	add("resume_id", filter.ResumeID)
	add("job_posting_id", filter.JobPostingID)
	add("input_signature", filter.InputSignature)

	query := selectColumns
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, normalizeLimit(filter.Limit), offset)
	query += fmt.Sprintf("\nORDER BY created_at DESC\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (Version, error) {
	var (
		v                 Version
		baseHash, jobHash sql.NullString
		usage             sql.NullString
	)
	if err := row.Scan(
		&v.ID,
		&v.ResumeID,
		&v.JobPostingID,
		&v.ArtifactPath,
		&baseHash,
		&jobHash,
		&v.InputSignature,
		&v.TemplateVersion,
		&v.ProviderName,
		&v.PromptHash,
		&usage,
		&v.CreatedAt,
	); err != nil {
		return Version{}, err
	}
	v.BaseHash = baseHash.String
	v.JobHash = jobHash.String
	if usage.Valid && usage.String != "" {
		var tu rewrite.TokenUsage
		if err := json.Unmarshal([]byte(usage.String), &tu); err != nil {
			return Version{}, fmt.Errorf("decode token usage for version %s: %w", v.ID, err)
		}
		v.TokenUsage = &tu
	}
	return v, nil
}

var _ Repo = (*SQLRepo)(nil)
