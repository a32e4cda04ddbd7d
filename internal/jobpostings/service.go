package jobpostings

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"fitresume/internal/fingerprint"
	"fitresume/internal/shared/telemetry"
)

// CreateInput is the payload for a new posting.
type CreateInput struct {
	Title       string `json:"title" validate:"required,max=300"`
	CompanyName string `json:"company_name" validate:"max=200"`
	Location    string `json:"location" validate:"max=200"`
	URL         string `json:"url" validate:"omitempty,url,max=2048"`
	RawText     string `json:"raw_text"`
	ExternalID  string `json:"external_id" validate:"max=200"`
}

var validate = validator.New()

func (in *CreateInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Location = strings.TrimSpace(in.Location)
	in.URL = strings.TrimSpace(in.URL)
	in.RawText = strings.TrimSpace(in.RawText)
	in.ExternalID = strings.TrimSpace(in.ExternalID)
}

// Validate checks field-level constraints.
func (in *CreateInput) Validate() error {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Created    []string
	Duplicates []string
	Skipped    int
}

// Service contains business logic for job postings.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// Create stores a posting unless one with the same identity hash exists, in
// which case the existing posting is returned with created=false.
func (s *Service) Create(ctx context.Context, in CreateInput) (JobPosting, bool, error) {
	if err := in.Validate(); err != nil {
		return JobPosting{}, false, err
	}
	hash := fingerprint.PostingIdentity(in.URL, in.RawText, in.Title)

	if existing, err := s.Repo.GetByURLHash(ctx, hash); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return JobPosting{}, false, err
	}

	p := JobPosting{
		ID:          uuid.NewString(),
		Title:       in.Title,
		CompanyName: in.CompanyName,
		Location:    in.Location,
		URL:         in.URL,
		RawText:     in.RawText,
		ExternalID:  in.ExternalID,
		URLHash:     hash,
		CollectedAt: s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			existing, getErr := s.Repo.GetByURLHash(ctx, hash)
			if getErr != nil {
				return JobPosting{}, false, getErr
			}
			return existing, false, nil
		}
		return JobPosting{}, false, err
	}
	telemetry.Info("job_posting.created", map[string]any{
		"job_posting_id": p.ID,
		"company":        p.CompanyName,
		"url_hash":       p.URLHash,
	})
	return p, true, nil
}

// ImportCSV creates postings from a CSV with a header row. Recognized columns:
// title, company, location, url, description or raw_text, external_id.
// Rows without a title are skipped.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{}, fmt.Errorf("%w: csv is empty", ErrInvalidInput)
		}
		return ImportResult{}, fmt.Errorf("%w: read csv header: %v", ErrInvalidInput, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}
	if _, ok := columns["title"]; !ok {
		return ImportResult{}, fmt.Errorf("%w: csv has no title column", ErrInvalidInput)
	}

	var result ImportResult
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("%w: csv line %d: %v", ErrInvalidInput, line, err)
		}
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		in := CreateInput{
			Title:       field("title"),
			CompanyName: field("company"),
			Location:    field("location"),
			URL:         field("url"),
			RawText:     field("description"),
			ExternalID:  field("external_id"),
		}
		if in.RawText == "" {
			in.RawText = field("raw_text")
		}
		if in.Title == "" {
			result.Skipped++
			continue
		}

		p, created, err := s.Create(ctx, in)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				telemetry.Warn("job_posting.import_row_invalid", map[string]any{"line": line, "error": err.Error()})
				result.Skipped++
				continue
			}
			return result, err
		}
		if created {
			result.Created = append(result.Created, p.ID)
		} else {
			result.Duplicates = append(result.Duplicates, p.ID)
		}
	}

	telemetry.Info("job_posting.imported", map[string]any{
		"created":    len(result.Created),
		"duplicates": len(result.Duplicates),
		"skipped":    result.Skipped,
	})
	return result, nil
}

// Get returns a posting by ID.
func (s *Service) Get(ctx context.Context, id string) (JobPosting, error) {
	if strings.TrimSpace(id) == "" {
		return JobPosting{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns postings newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
