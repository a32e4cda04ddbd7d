package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitresume/internal/artifact"
	"fitresume/internal/jobpostings"
	"fitresume/internal/resumes"
	"fitresume/internal/runs"
	"fitresume/internal/schedules"
	"fitresume/internal/services/health"
	"fitresume/internal/shared/config"
	"fitresume/internal/shared/metrics"
	"fitresume/internal/shared/server/middleware"
	"fitresume/internal/shared/server/respond"
	"fitresume/internal/tailoring"
	"fitresume/internal/versions"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupTailor  = "TAILOR"
	tailorRoute      = "/api/tailor"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	ResumeHandler     *resumes.Handler
	JobPostingHandler *jobpostings.Handler
	TailorHandler     *tailoring.Handler
	VersionHandler    *versions.Handler
	RunHandler        *runs.Handler
	ScheduleHandler   *schedules.Handler
	ArtifactHandler   *artifact.Handler
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault: {Rate: 10, Burst: 30},
				rateGroupTailor:  {Rate: 0.2, Burst: 3},
			},
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.JobPostingHandler != nil {
		deps.JobPostingHandler.RegisterRoutes(api)
	}
	if deps.TailorHandler != nil {
		deps.TailorHandler.RegisterRoutes(api)
	}
	if deps.VersionHandler != nil {
		deps.VersionHandler.RegisterRoutes(api)
	}
	if deps.RunHandler != nil {
		deps.RunHandler.RegisterRoutes(api)
	}
	if deps.ScheduleHandler != nil {
		deps.ScheduleHandler.RegisterRoutes(api)
	}
	if deps.ArtifactHandler != nil {
		deps.ArtifactHandler.RegisterRoutes(api)
	}

	return r
}

// rateGroupFor puts the rewrite endpoint in its own, stricter bucket.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == tailorRoute {
		return rateGroupTailor
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
