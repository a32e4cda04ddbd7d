package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitresume/internal/jobpostings"
	"fitresume/internal/shared/config"
	"fitresume/resume/render"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   filepath.Join(dir, "uploads"),
		ArtifactsRoot:   filepath.Join(dir, "artifacts"),
		TemplatePath:    filepath.Join(dir, "templates", "resume_template.docx"),
		LLMProvider:     "mock",
	}
}

func buildApp(t *testing.T) *App {
	t.Helper()
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestBuildUsesMemoryReposInDev(t *testing.T) {
	app := buildApp(t)
	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}
	if app.Router == nil || app.Scheduler == nil || app.SchedulesService == nil {
		t.Fatalf("expected router, scheduler and schedules service to be wired")
	}
	if _, err := os.Stat(app.Config.TemplatePath); err != nil {
		t.Fatalf("expected template to be synthesized: %v", err)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := buildApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"database":"memory"`) {
		t.Fatalf("unexpected health body %s", resp.Body.String())
	}
}

func TestScheduleCreateRegistersTrigger(t *testing.T) {
	app := buildApp(t)

	body := strings.NewReader(`{"cron_expr":"0 9 * * 1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/schedules", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !app.Scheduler.Registered(created.ID) {
		t.Fatalf("expected schedule %s to be registered", created.ID)
	}
}

func TestTailorEndToEnd(t *testing.T) {
	app := buildApp(t)
	ctx := context.Background()

	docx, err := render.BuildDocx([]string{"Jane Doe", "Backend engineer with Go experience"})
	if err != nil {
		t.Fatalf("BuildDocx: %v", err)
	}
	resume, err := app.ResumesService.Upload(ctx, "resume.docx", bytes.NewReader(docx))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	posting, _, err := app.JobPostingsService.Create(ctx, jobpostings.CreateInput{
		Title:       "Platform Engineer",
		CompanyName: "Acme",
		RawText:     "Go, Postgres, Kubernetes",
	})
	if err != nil {
		t.Fatalf("Create posting: %v", err)
	}

	payload := `{"resume_id":"` + resume.ID + `","job_posting_id":"` + posting.ID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tailor", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		ArtifactPath string `json:"artifact_path"`
		Mock         bool   `json:"mock"`
		RunID        string `json:"run_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := os.Stat(out.ArtifactPath); err != nil {
		t.Fatalf("expected artifact on disk: %v", err)
	}
	if !out.Mock {
		t.Fatalf("expected deterministic output without credentials")
	}
	if out.RunID == "" {
		t.Fatalf("expected a run id")
	}

	list := httptest.NewRecorder()
	app.Router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/versions?resume_id="+resume.ID, nil))
	var versionsOut []map[string]any
	if err := json.Unmarshal(list.Body.Bytes(), &versionsOut); err != nil {
		t.Fatalf("decode versions: %v", err)
	}
	if len(versionsOut) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versionsOut))
	}
}
