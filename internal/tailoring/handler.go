package tailoring

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/server/middleware"
	"fitresume/internal/shared/server/respond"
	"fitresume/internal/versions"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the tailor route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tailor", h.tailor)
}

type tailorRequest struct {
	ResumeID     string `json:"resume_id"`
	JobPostingID string `json:"job_posting_id"`
}

// TailorResponse is returned by POST /tailor.
type TailorResponse struct {
	Version      versions.VersionResponse `json:"version"`
	ArtifactPath string                   `json:"artifact_path"`
	Mock         bool                     `json:"mock"`
	RunID        string                   `json:"run_id,omitempty"`
}

func (h *Handler) tailor(c *gin.Context) {
	var req tailorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.ResumeID = strings.TrimSpace(req.ResumeID)
	req.JobPostingID = strings.TrimSpace(req.JobPostingID)
	if req.ResumeID == "" || req.JobPostingID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_id and job_posting_id are required", nil)
		return
	}

	outcome, run, err := h.Svc.TailorTracked(c.Request.Context(), req.ResumeID, req.JobPostingID)
	if run.ID != "" {
		c.Set(middleware.RunIDKey, run.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, ErrFailed):
			respond.Error(c, http.StatusBadGateway, "tailoring_failed", err.Error(), gin.H{"run_id": run.ID})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to tailor resume", nil)
		}
		return
	}
	c.Set(middleware.VersionIDKey, outcome.Version.ID)

	respond.Created(c, TailorResponse{
		Version:      versions.ToResponse(outcome.Version),
		ArtifactPath: outcome.ArtifactPath,
		Mock:         outcome.Fallback,
		RunID:        run.ID,
	})
}
