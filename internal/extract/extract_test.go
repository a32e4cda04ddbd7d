package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"fitresume/resume/render"
)

func TestTextDocx(t *testing.T) {
	data, err := render.BuildDocx([]string{"Jane Doe", "", "  Go engineer  "})
	if err != nil {
		t.Fatalf("build docx: %v", err)
	}

	res, err := Text(context.Background(), data, "resume.DOCX")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if res.Format != FormatDOCX {
		t.Fatalf("expected docx, got %q", res.Format)
	}
	if res.Text != "Jane Doe\nGo engineer" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestDetectSniffsExtensionlessDocx(t *testing.T) {
	data, err := render.BuildDocx([]string{"x"})
	if err != nil {
		t.Fatalf("build docx: %v", err)
	}
	format, err := Detect("upload", data)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if format != FormatDOCX {
		t.Fatalf("expected docx, got %q", format)
	}
	if format, _ := Detect("upload", []byte("%PDF-1.4\n")); format != FormatPDF {
		t.Fatalf("expected pdf, got %q", format)
	}
}

func TestTextRejectsUnknownFormat(t *testing.T) {
	_, err := Text(context.Background(), []byte("hello"), "notes.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), ".txt") {
		t.Fatalf("expected extension in error, got %v", err)
	}
}

func TestTextRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := Text(context.Background(), buf.Bytes(), "notes"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for bare zip, got %v", err)
	}
	if _, err := Text(context.Background(), buf.Bytes(), "fake.docx"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for docx without document part, got %v", err)
	}
}

func TestTextRejectsCorruptPDF(t *testing.T) {
	if _, err := Text(context.Background(), []byte("not a pdf"), "cv.pdf"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
