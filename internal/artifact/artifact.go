package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fitresume/internal/rewrite"
	"fitresume/internal/shared/telemetry"
	"fitresume/internal/shared/util"
	"fitresume/resume/model"
	"fitresume/resume/render"
)

// TemplateVersion is stamped on every artifact and version record.
const TemplateVersion = "1.0"

const (
	metaFileName   = "meta.json"
	maxSegmentLen  = 60
	defaultSegment = "job"
)

var (
	// ErrOutsideRoot is returned when a requested path escapes the artifacts root.
	ErrOutsideRoot = errors.New("artifact path outside root")
	// ErrExists is returned when an artifact with the same timestamped name is
	// already on disk. Existing artifacts are never overwritten.
	ErrExists = errors.New("artifact already exists")
)

// Meta is the sidecar record written next to each artifact.
type Meta struct {
	Company         string              `json:"company"`
	JobKey          string              `json:"job_key"`
	Artifact        string              `json:"artifact"`
	CreatedAt       string              `json:"created_at"`
	TemplateVersion string              `json:"template_version"`
	ProviderName    string              `json:"provider_name"`
	PromptHash      string              `json:"prompt_hash"`
	Plan            model.Plan          `json:"plan"`
	MockOutput      bool                `json:"mock_output"`
	TokenUsage      *rewrite.TokenUsage `json:"token_usage,omitempty"`
}

// Service writes rendered artifacts beneath Root.
type Service struct {
	Root         string
	TemplatePath string
	Now          func() time.Time
}

// NewService ensures the template exists before any rendering happens.
func NewService(root, templatePath string) (*Service, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("artifacts root is required")
	}
	if err := render.WriteTemplate(templatePath); err != nil {
		return nil, fmt.Errorf("ensure template: %w", err)
	}
	return &Service{Root: root, TemplatePath: templatePath, Now: time.Now}, nil
}

// Sanitize reduces a name to [A-Za-z0-9_-], at most 60 characters, never empty.
func Sanitize(value string) string {
	return util.SafeSegment(value, defaultSegment, maxSegmentLen)
}

// Dir returns the directory for a company/job pair.
func (s *Service) Dir(company, jobKey string) string {
	return filepath.Join(s.Root, Sanitize(company)+"__"+Sanitize(jobKey))
}

// Create renders the rewrite result and writes the artifact and its meta.json.
// It returns the artifact path.
func (s *Service) Create(ctx context.Context, company, jobKey string, result rewrite.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now().UTC()
	dir := s.Dir(company, jobKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir artifact dir: %w", err)
	}

	data, err := render.RenderPlan(s.TemplatePath, result.Plan)
	if err != nil {
		return "", fmt.Errorf("render artifact: %w", err)
	}

	fileName := "resume_" + now.Format("20060102_150405") + ".docx"
	artifactPath := filepath.Join(dir, fileName)
	if err := writeExclusive(artifactPath, data); err != nil {
		return "", err
	}

	meta := Meta{
		Company:         company,
		JobKey:          jobKey,
		Artifact:        fileName,
		CreatedAt:       now.Format(time.RFC3339),
		TemplateVersion: TemplateVersion,
		ProviderName:    result.ProviderName,
		PromptHash:      result.PromptHash,
		Plan:            result.Plan,
		MockOutput:      result.Fallback,
		TokenUsage:      result.TokenUsage,
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), encoded, 0o644); err != nil {
		return "", fmt.Errorf("write meta: %w", err)
	}

	telemetry.Info("artifact.created", map[string]any{
		"path":     artifactPath,
		"company":  company,
		"job_key":  jobKey,
		"provider": result.ProviderName,
		"mock":     result.Fallback,
		"bytes":    len(data),
	})
	return artifactPath, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, filepath.Base(path))
		}
		return fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close artifact: %w", err)
	}
	return nil
}

// Resolve maps a path as stored on a version record, or relative to Root, to
// an absolute file path under Root.
func (s *Service) Resolve(path string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(root, path))
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if within(root, abs) {
			return abs, nil
		}
	}
	return "", ErrOutsideRoot
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
