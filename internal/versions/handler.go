package versions

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitresume/internal/rewrite"
	"fitresume/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches version routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/versions", h.list)
	rg.GET("/versions/:id", h.get)
}

// VersionResponse is the outward-facing representation of a version.
type VersionResponse struct {
	ID              string              `json:"id"`
	ResumeID        string              `json:"resume_id"`
	JobPostingID    string              `json:"job_posting_id"`
	ArtifactPath    string              `json:"artifact_path"`
	BaseHash        string              `json:"base_hash"`
	JobHash         string              `json:"job_hash"`
	InputSignature  string              `json:"input_signature"`
	TemplateVersion string              `json:"template_version"`
	ProviderName    string              `json:"provider_name"`
	PromptHash      string              `json:"prompt_hash"`
	TokenUsage      *rewrite.TokenUsage `json:"token_usage"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ToResponse converts a Version for the API.
func ToResponse(v Version) VersionResponse {
	return VersionResponse{
		ID:              v.ID,
		ResumeID:        v.ResumeID,
		JobPostingID:    v.JobPostingID,
		ArtifactPath:    v.ArtifactPath,
		BaseHash:        v.BaseHash,
		JobHash:         v.JobHash,
		InputSignature:  v.InputSignature,
		TemplateVersion: v.TemplateVersion,
		ProviderName:    v.ProviderName,
		PromptHash:      v.PromptHash,
		TokenUsage:      v.TokenUsage,
		CreatedAt:       v.CreatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		ResumeID:       c.Query("resume_id"),
		JobPostingID:   c.Query("job_posting_id"),
		InputSignature: c.Query("input_signature"),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list versions", nil)
		return
	}
	resp := make([]VersionResponse, 0, len(items))
	for _, v := range items {
		resp = append(resp, ToResponse(v))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "version not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch version", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, ToResponse(v))
}
