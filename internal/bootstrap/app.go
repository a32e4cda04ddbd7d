package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"fitresume/internal/artifact"
	"fitresume/internal/jobpostings"
	"fitresume/internal/resumes"
	"fitresume/internal/rewrite"
	"fitresume/internal/runs"
	"fitresume/internal/scheduler"
	"fitresume/internal/schedules"
	"fitresume/internal/services/health"
	"fitresume/internal/shared/config"
	"fitresume/internal/shared/server"
	"fitresume/internal/shared/storage/db"
	"fitresume/internal/shared/storage/object"
	localstore "fitresume/internal/shared/storage/object/local"
	s3store "fitresume/internal/shared/storage/object/s3"
	"fitresume/internal/shared/telemetry"
	"fitresume/internal/tailoring"
	"fitresume/internal/versions"
)

// App holds shared dependencies for the API process and the CLI.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	ResumesRepo     resumes.Repo
	JobPostingsRepo jobpostings.Repo
	VersionsRepo    versions.Repo
	RunsRepo        runs.Repo
	SchedulesRepo   schedules.Repo

	Artifacts          *artifact.Service
	Orchestrator       *rewrite.Orchestrator
	Lifecycle          *runs.Lifecycle
	ResumesService     *resumes.Service
	JobPostingsService *jobpostings.Service
	VersionsService    *versions.Service
	RunsService        *runs.Service
	SchedulesService   *schedules.Service
	TailoringService   *tailoring.Service
	Scheduler          *scheduler.Engine
	Health             *health.Service
}

// Build prepares shared dependencies and the router. The scheduler is built
// but not started; callers decide whether to Sync and Start it.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(ctx, app); err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Health:            app.Health,
		ResumeHandler:     resumes.NewHandler(app.ResumesService),
		JobPostingHandler: jobpostings.NewHandler(app.JobPostingsService),
		TailorHandler:     tailoring.NewHandler(app.TailoringService),
		VersionHandler:    versions.NewHandler(app.VersionsService),
		RunHandler:        runs.NewHandler(app.RunsService),
		ScheduleHandler:   schedules.NewHandler(app.SchedulesService),
		ArtifactHandler:   artifact.NewHandler(app.Artifacts),
	})

	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.database", map[string]any{"mode": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_fallback", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	_, _, dialect := db.ParseURL(cfg.DatabaseURL)
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	telemetry.Info("bootstrap.database", map[string]any{"mode": string(dialect)})
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.ResumesRepo = &resumes.SQLRepo{DB: app.DB}
		app.JobPostingsRepo = &jobpostings.SQLRepo{DB: app.DB}
		app.VersionsRepo = &versions.SQLRepo{DB: app.DB}
		app.RunsRepo = &runs.SQLRepo{DB: app.DB}
		app.SchedulesRepo = &schedules.SQLRepo{DB: app.DB}
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.JobPostingsRepo = jobpostings.NewMemoryRepo()
		app.VersionsRepo = versions.NewMemoryRepo()
		app.RunsRepo = runs.NewMemoryRepo()
		app.SchedulesRepo = schedules.NewMemoryRepo()
	}

	artifacts, err := artifact.NewService(app.Config.ArtifactsRoot, app.Config.TemplatePath)
	if err != nil {
		return err
	}
	app.Artifacts = artifacts

	app.Orchestrator = rewrite.NewOrchestrator(ctx, rewrite.Options{
		Backend: app.Config.LLMProvider,
		APIKey:  app.Config.APIKey(),
		Model:   app.Config.LLMModel,
		Timeout: app.Config.RewriteTimeout,
	})
	app.Lifecycle = runs.NewLifecycle(app.RunsRepo)

	app.ResumesService = &resumes.Service{Store: app.Store, Repo: app.ResumesRepo}
	app.JobPostingsService = &jobpostings.Service{Repo: app.JobPostingsRepo}
	app.VersionsService = &versions.Service{Repo: app.VersionsRepo}
	app.RunsService = &runs.Service{Repo: app.RunsRepo}
	app.TailoringService = &tailoring.Service{
		Resumes:     app.ResumesRepo,
		JobPostings: app.JobPostingsRepo,
		Versions:    app.VersionsRepo,
		Rewriter:    app.Orchestrator,
		Artifacts:   app.Artifacts,
		Lifecycle:   app.Lifecycle,
	}

	engine, err := scheduler.New(scheduler.Options{
		Schedules: app.SchedulesRepo,
		Lifecycle: app.Lifecycle,
		Pipeline:  app.TailoringService,
	})
	if err != nil {
		return err
	}
	app.Scheduler = engine
	app.SchedulesService = &schedules.Service{Repo: app.SchedulesRepo, Engine: engine}

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Health = health.NewService(pinger, func() int { return len(engine.Entries()) })

	return nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
