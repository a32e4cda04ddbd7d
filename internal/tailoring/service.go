// Package tailoring runs the pipeline that turns a resume and a job posting
// into a rendered artifact and a fingerprinted version record.
package tailoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitresume/internal/artifact"
	"fitresume/internal/fingerprint"
	"fitresume/internal/jobpostings"
	"fitresume/internal/resumes"
	"fitresume/internal/rewrite"
	"fitresume/internal/runs"
	"fitresume/internal/schedules"
	"fitresume/internal/shared/telemetry"
	"fitresume/internal/versions"
)

// Rewriter produces a plan for a source/target pair.
type Rewriter interface {
	Rewrite(ctx context.Context, source, target string) (rewrite.Result, error)
}

// ArtifactWriter renders a rewrite result to durable storage and returns its path.
type ArtifactWriter interface {
	Create(ctx context.Context, company, jobKey string, result rewrite.Result) (string, error)
}

// Outcome is the result of one tailoring.
type Outcome struct {
	Version      versions.Version
	ArtifactPath string
	Fallback     bool
}

// Service wires inputs, the rewrite orchestrator, artifact storage and
// version history. Every repository call is its own short statement; nothing
// is held across the rewrite call.
type Service struct {
	Resumes     resumes.Repo
	JobPostings jobpostings.Repo
	Versions    versions.Repo
	Rewriter    Rewriter
	Artifacts   ArtifactWriter
	Lifecycle   *runs.Lifecycle
	Now         func() time.Time
}

// Tailor runs the pipeline for an explicit resume/posting pair.
func (s *Service) Tailor(ctx context.Context, resumeID, postingID string) (Outcome, error) {
	resume, posting, err := s.load(ctx, resumeID, postingID)
	if err != nil {
		return Outcome{}, err
	}
	return s.tailor(ctx, resume, posting)
}

// TailorTracked runs Tailor inside a manual Run. Missing inputs are reported
// before any Run is opened.
func (s *Service) TailorTracked(ctx context.Context, resumeID, postingID string) (Outcome, runs.Run, error) {
	if s.Lifecycle == nil {
		outcome, err := s.Tailor(ctx, resumeID, postingID)
		return outcome, runs.Run{}, err
	}
	resume, posting, err := s.load(ctx, resumeID, postingID)
	if err != nil {
		return Outcome{}, runs.Run{}, err
	}

	var outcome Outcome
	run, err := s.Lifecycle.Execute(ctx, runs.Start{Origin: runs.OriginManual, Type: runs.TypeTailor}, func(ctx context.Context) runs.Result {
		out, err := s.tailor(ctx, resume, posting)
		if err != nil {
			return runs.Failed(err)
		}
		outcome = out
		return runs.Succeeded()
	})
	if err != nil {
		return Outcome{}, run, err
	}
	if run.Status != runs.StatusSuccess {
		return Outcome{}, run, fmt.Errorf("%w: %s", ErrFailed, run.Error)
	}
	return outcome, run, nil
}

// RunSchedule is the scheduled pipeline. It picks the newest resume and
// posting, or the ones named by the schedule's criteria, and never returns
// an error: every outcome is expressed as a runs.Result.
func (s *Service) RunSchedule(ctx context.Context, sched schedules.Schedule) runs.Result {
	criteria := sched.Criteria
	if criteria == nil {
		criteria = &schedules.Criteria{}
	}

	var (
		resume resumes.Resume
		err    error
	)
	if criteria.ResumeID != "" {
		resume, err = s.Resumes.GetByID(ctx, criteria.ResumeID)
	} else {
		resume, err = s.Resumes.Latest(ctx)
	}
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return runs.Skipped(NoInputsReason)
		}
		return runs.Failed(fmt.Errorf("select resume: %w", err))
	}

	var posting jobpostings.JobPosting
	if criteria.JobPostingID != "" {
		posting, err = s.JobPostings.GetByID(ctx, criteria.JobPostingID)
	} else {
		posting, err = s.JobPostings.Latest(ctx, criteria.Company)
	}
	if err != nil {
		if errors.Is(err, jobpostings.ErrNotFound) {
			return runs.Skipped(NoInputsReason)
		}
		return runs.Failed(fmt.Errorf("select job posting: %w", err))
	}

	if _, err := s.tailor(ctx, resume, posting); err != nil {
		return runs.Failed(err)
	}
	return runs.Succeeded()
}

func (s *Service) load(ctx context.Context, resumeID, postingID string) (resumes.Resume, jobpostings.JobPosting, error) {
	resume, err := s.Resumes.GetByID(ctx, strings.TrimSpace(resumeID))
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Resume{}, jobpostings.JobPosting{}, fmt.Errorf("%w: resume %s", ErrNotFound, resumeID)
		}
		return resumes.Resume{}, jobpostings.JobPosting{}, err
	}
	posting, err := s.JobPostings.GetByID(ctx, strings.TrimSpace(postingID))
	if err != nil {
		if errors.Is(err, jobpostings.ErrNotFound) {
			return resumes.Resume{}, jobpostings.JobPosting{}, fmt.Errorf("%w: job posting %s", ErrNotFound, postingID)
		}
		return resumes.Resume{}, jobpostings.JobPosting{}, err
	}
	return resume, posting, nil
}

func (s *Service) tailor(ctx context.Context, resume resumes.Resume, posting jobpostings.JobPosting) (Outcome, error) {
	target := fingerprint.PostingMaterial(posting.RawText, posting.Title)

	result, err := s.Rewriter.Rewrite(ctx, resume.Text, target)
	if err != nil {
		return Outcome{}, err
	}

	company := strings.TrimSpace(posting.CompanyName)
	if company == "" {
		company = UnknownCompany
	}
	jobKey := JobKey(posting)

	path, err := s.Artifacts.Create(ctx, company, jobKey, result)
	if err != nil {
		return Outcome{}, err
	}

	baseHash := resume.TextHash
	if baseHash == "" {
		baseHash = fingerprint.Text(resume.Text)
	}
	version := versions.Version{
		ID:              uuid.NewString(),
		ResumeID:        resume.ID,
		JobPostingID:    posting.ID,
		ArtifactPath:    path,
		BaseHash:        baseHash,
		JobHash:         fingerprint.Text(target),
		InputSignature:  fingerprint.Pair(resume.ID, posting.ID),
		TemplateVersion: artifact.TemplateVersion,
		ProviderName:    result.ProviderName,
		PromptHash:      result.PromptHash,
		TokenUsage:      result.TokenUsage,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.Versions.Create(ctx, version); err != nil {
		return Outcome{}, fmt.Errorf("record version: %w", err)
	}

	telemetry.Info("tailoring.completed", map[string]any{
		"version_id":     version.ID,
		"resume_id":      resume.ID,
		"job_posting_id": posting.ID,
		"provider":       version.ProviderName,
		"mock":           result.Fallback,
		"artifact_path":  path,
	})
	return Outcome{Version: version, ArtifactPath: path, Fallback: result.Fallback}, nil
}

// JobKey names a posting inside artifact paths.
func JobKey(p jobpostings.JobPosting) string {
	return p.ID + "_" + p.Title
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
