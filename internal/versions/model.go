package versions

import (
	"time"

	"fitresume/internal/rewrite"
)

// Version links a resume, a job posting and the artifact tailored from them.
type Version struct {
	ID              string
	ResumeID        string
	JobPostingID    string
	ArtifactPath    string
	BaseHash        string
	JobHash         string
	InputSignature  string
	TemplateVersion string
	ProviderName    string
	PromptHash      string
	TokenUsage      *rewrite.TokenUsage
	CreatedAt       time.Time
}

// ListFilter narrows Repo.List.
type ListFilter struct {
	ResumeID       string
	JobPostingID   string
	InputSignature string
	Limit          int
	Offset         int
}
