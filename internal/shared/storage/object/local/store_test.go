package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fitresume/internal/shared/storage/object"
	"fitresume/resume/render"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mime, err := store.Save(ctx, "resumes", "my cv.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "resumes/") {
		t.Fatalf("expected key under namespace, got %q", key)
	}
	if !strings.HasSuffix(key, "_my cv.pdf") {
		t.Fatalf("expected original name suffix, got %q", key)
	}
	if size != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected size %d", size)
	}
	if mime != object.MimePDF {
		t.Fatalf("unexpected mime %q", mime)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveDetectsDocx(t *testing.T) {
	docx, err := render.BuildDocx([]string{"Jane Doe"})
	if err != nil {
		t.Fatalf("BuildDocx: %v", err)
	}
	store := New(t.TempDir())
	_, _, mime, err := store.Save(context.Background(), "resumes", "cv.docx", strings.NewReader(string(docx)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if mime != object.MimeDOCX {
		t.Fatalf("expected docx mime, got %q", mime)
	}
}

func TestSaveKeysAreUnique(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	a, _, _, err := store.Save(ctx, "resumes", "cv.pdf", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, _, _, err := store.Save(ctx, "resumes", "cv.pdf", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct keys, got %q twice", a)
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "resumes/nope.pdf")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestSaveRejectsTraversalNamespace(t *testing.T) {
	store := New(t.TempDir())
	if _, _, _, err := store.Save(context.Background(), "..", "a.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected namespace to be rejected")
	}
}
