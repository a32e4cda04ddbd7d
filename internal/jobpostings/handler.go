package jobpostings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/server/respond"
)

const maxCSVSize = 5 << 20 // 5MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job posting routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job_postings", h.create)
	rg.GET("/job_postings", h.list)
	rg.GET("/job_postings/:id", h.get)
	rg.POST("/job_postings/upload_csv", h.uploadCSV)
}

// JobPostingResponse is the outward-facing representation of a posting.
type JobPostingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name,omitempty"`
	Location    string    `json:"location,omitempty"`
	URL         string    `json:"url,omitempty"`
	RawText     string    `json:"raw_text,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	URLHash     string    `json:"url_hash"`
	CollectedAt time.Time `json:"collected_at"`
}

func toResponse(p JobPosting) JobPostingResponse {
	return JobPostingResponse{
		ID:          p.ID,
		Title:       p.Title,
		CompanyName: p.CompanyName,
		Location:    p.Location,
		URL:         p.URL,
		RawText:     p.RawText,
		ExternalID:  p.ExternalID,
		URLHash:     p.URLHash,
		CollectedAt: p.CollectedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	p, created, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job posting", nil)
		}
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respond.JSON(c, status, toResponse(p))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list job postings", nil)
		return
	}
	resp := make([]JobPostingResponse, 0, len(items))
	for _, p := range items {
		resp = append(resp, toResponse(p))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job posting not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job posting", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(p))
}

func (h *Handler) uploadCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCSVSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	result, err := h.Svc.ImportCSV(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import job postings", nil)
		}
		return
	}

	created := result.Created
	if created == nil {
		created = []string{}
	}
	duplicates := result.Duplicates
	if duplicates == nil {
		duplicates = []string{}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"created":    created,
		"duplicates": duplicates,
		"skipped":    result.Skipped,
	})
}
