package resumes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitresume/internal/extract"
	"fitresume/internal/fingerprint"
	"fitresume/internal/shared/storage/object"
	"fitresume/internal/shared/telemetry"
)

// StorageNamespace groups uploaded resumes in the object store.
const StorageNamespace = "resumes"

// Service contains business logic for resumes.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload extracts the text of an uploaded file, stores the original bytes
// and records the resume. Unsupported formats are rejected before anything
// is stored.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Resume, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Resume{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Resume{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	extracted, err := extract.Text(ctx, data, fileName)
	if err != nil {
		return Resume{}, err
	}

	key, _, _, err := s.Store.Save(ctx, StorageNamespace, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("store upload: %w", err)
	}

	res := Resume{
		ID:        uuid.NewString(),
		FilePath:  key,
		Format:    extracted.Format,
		Text:      extracted.Text,
		TextHash:  fingerprint.Text(extracted.Text),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		return Resume{}, err
	}

	telemetry.Info("resume.uploaded", map[string]any{
		"resume_id":  res.ID,
		"format":     res.Format,
		"file_path":  res.FilePath,
		"text_bytes": len(res.Text),
	})
	return res, nil
}

// Get returns a resume by ID.
func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns resumes newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Resume, error) {
	return s.Repo.List(ctx, limit, offset)
}
