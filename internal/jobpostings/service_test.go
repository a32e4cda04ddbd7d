package jobpostings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fitresume/internal/fingerprint"
)

func TestCreateDeduplicatesOnIdentityHash(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	first, created, err := svc.Create(ctx, CreateInput{Title: "Backend Engineer", CompanyName: "Acme", URL: "https://jobs.example.com/1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created {
		t.Fatal("expected first posting to be created")
	}
	if first.URLHash != fingerprint.Text("https://jobs.example.com/1") {
		t.Fatalf("unexpected url hash %q", first.URLHash)
	}

	second, created, err := svc.Create(ctx, CreateInput{Title: "Renamed", URL: "https://jobs.example.com/1"})
	if err != nil {
		t.Fatalf("Create duplicate: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("expected existing posting %s, got %s (created=%v)", first.ID, second.ID, created)
	}
}

func TestCreateIdentityFallsBackToRawTextThenTitle(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	withText, _, err := svc.Create(ctx, CreateInput{Title: "SRE", RawText: "Keep things up"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if withText.URLHash != fingerprint.Text("Keep things up") {
		t.Fatalf("expected raw text hash")
	}

	titleOnly, _, err := svc.Create(ctx, CreateInput{Title: "Data Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if titleOnly.URLHash != fingerprint.Text("Data Engineer") {
		t.Fatalf("expected title hash")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	_, _, err := svc.Create(context.Background(), CreateInput{Title: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, _, err = svc.Create(context.Background(), CreateInput{Title: "x", URL: "not a url"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for url, got %v", err)
	}
}

func TestImportCSV(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	csvData := strings.Join([]string{
		"title,company,location,url,description,external_id",
		"Go Developer,Acme,Remote,https://acme.example/go,Write Go,ext-1",
		",NoTitle Inc,,,,",
		"Go Developer,Acme,Remote,https://acme.example/go,Write Go,ext-1",
		"Platform Engineer,Globex,Berlin,,Build platforms,",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(result.Created) != 2 || len(result.Duplicates) != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	latest, err := repo.Latest(context.Background(), "globex")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Title != "Platform Engineer" || latest.RawText != "Build platforms" {
		t.Fatalf("unexpected posting: %+v", latest)
	}
}

func TestImportCSVRawTextColumn(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	result, err := svc.ImportCSV(context.Background(), strings.NewReader("title,raw_text\nQA,Test everything\n"))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created, got %+v", result)
	}
	p, err := repo.GetByID(context.Background(), result.Created[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.RawText != "Test everything" {
		t.Fatalf("unexpected raw text %q", p.RawText)
	}
}

func TestImportCSVRequiresTitleColumn(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader("name,company\nx,y\n")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader("")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty csv, got %v", err)
	}
}

func TestMemoryRepoLatestByCompany(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.Latest(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
