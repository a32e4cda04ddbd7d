package schedules

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitresume/internal/runs"
	"fitresume/internal/shared/server/middleware"
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

// RegisterRoutes attaches schedule routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/schedules", h.create)
	rg.GET("/schedules", h.list)
	rg.GET("/schedules/:id", h.get)
	rg.PATCH("/schedules/:id", h.update)
	rg.DELETE("/schedules/:id", h.delete)
	rg.POST("/schedules/:id/trigger", h.trigger)
}

// ScheduleResponse is the outward-facing representation of a schedule.
type ScheduleResponse struct {
	ID        string    `json:"id"`
	CronExpr  string    `json:"cron_expr"`
	IsEnabled bool      `json:"is_enabled"`
	Criteria  *Criteria `json:"criteria"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(s Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		CronExpr:  s.CronExpr,
		IsEnabled: s.IsEnabled,
		Criteria:  s.Criteria,
		CreatedAt: s.CreatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sched, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create schedule", nil)
		}
		return
	}
	respond.Created(c, toResponse(sched))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list schedules", nil)
		return
	}
	resp := make([]ScheduleResponse, 0, len(items))
	for _, s := range items {
		resp = append(resp, toResponse(s))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	sched, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeLookupError(c, err, "failed to fetch schedule")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sched))
}

type updateRequest struct {
	IsEnabled *bool `json:"is_enabled"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.IsEnabled == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "is_enabled is required", nil)
		return
	}

	sched, err := h.Svc.SetEnabled(c.Request.Context(), c.Param("id"), *req.IsEnabled)
	if err != nil {
		h.writeLookupError(c, err, "failed to update schedule")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sched))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeLookupError(c, err, "failed to delete schedule")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) trigger(c *gin.Context) {
	run, err := h.Svc.Trigger(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeLookupError(c, err, "failed to trigger schedule")
		return
	}
	c.Set(middleware.RunIDKey, run.ID)
	respond.JSON(c, http.StatusOK, runs.ToResponse(run))
}

func (h *Handler) writeLookupError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "schedule not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
