package runs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/runs", h.list)
	rg.GET("/runs/:id", h.get)
}

// RunResponse is the outward-facing representation of a run.
type RunResponse struct {
	ID            string     `json:"id"`
	TriggerOrigin string     `json:"trigger_origin"`
	Type          string     `json:"type"`
	ScheduleID    *string    `json:"schedule_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Status        string     `json:"status"`
	Error         *string    `json:"error"`
}

// ToResponse converts a Run for the API.
func ToResponse(run Run) RunResponse {
	resp := RunResponse{
		ID:            run.ID,
		TriggerOrigin: string(run.Origin),
		Type:          run.Type,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		Status:        string(run.Status),
	}
	if run.ScheduleID != "" {
		id := run.ScheduleID
		resp.ScheduleID = &id
	}
	if run.Error != "" {
		msg := run.Error
		resp.Error = &msg
	}
	return resp
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		ScheduleID: c.Query("schedule_id"),
		Status:     Status(c.Query("status")),
	}
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be an integer", nil)
			return
		}
		filter.Limit = parsed
	}
	switch filter.Status {
	case "", StatusRunning, StatusSuccess, StatusFailed, StatusSkipped:
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", gin.H{"status": filter.Status})
		return
	}

	items, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}

	resp := make([]RunResponse, 0, len(items))
	for _, run := range items {
		resp = append(resp, ToResponse(run))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch run", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, ToResponse(run))
}
