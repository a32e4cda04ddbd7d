package artifact

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"fitresume/internal/shared/server/respond"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Handler serves rendered artifacts from the artifacts root.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches artifact routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/artifacts/download", h.download)
}

func (h *Handler) download(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("path"))
	if raw == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "path is required", nil)
		return
	}

	abs, err := h.Svc.Resolve(raw)
	if err != nil {
		if errors.Is(err, ErrOutsideRoot) {
			respond.Error(c, http.StatusForbidden, "forbidden", "path is outside the artifacts root", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve artifact", nil)
		return
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			respond.Error(c, http.StatusNotFound, "not_found", "artifact not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read artifact", nil)
		return
	}

	name := filepath.Base(abs)
	if strings.EqualFold(filepath.Ext(name), ".docx") {
		c.Header("Content-Type", docxMime)
	}
	c.FileAttachment(abs, name)
}
