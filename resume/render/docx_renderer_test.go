package render

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitresume/resume/model"
)

func samplePlan() model.Plan {
	return model.Plan{
		Summary: "Backend engineer focused on data pipelines.",
		Skills:  []string{"Go", "PostgreSQL"},
		Experience: []model.Experience{
			{
				Employer: "Acme",
				Role:     "Senior Engineer",
				Start:    "2020",
				End:      "Present",
				Bullets:  []string{"Shipped the scheduler.", "Cut costs by 30% & more."},
			},
		},
		Education:      []string{"BSc Computer Science, Example University"},
		Certifications: []string{"CKA"},
	}
}

func writeTestTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates", "resume_template.docx")
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	return path
}

func TestParagraphsFollowSectionOrder(t *testing.T) {
	got := Paragraphs(samplePlan())
	want := []string{
		"Summary",
		"Backend engineer focused on data pipelines.",
		"Skills",
		"• Go",
		"• PostgreSQL",
		"Experience",
		"Acme — Senior Engineer (2020 - Present)",
		"• Shipped the scheduler.",
		"• Cut costs by 30% & more.",
		"Education",
		"BSc Computer Science, Example University",
		"Certifications",
		"CKA",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paragraph %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParagraphsKeepEmptySummary(t *testing.T) {
	got := Paragraphs(model.Plan{})
	want := []string{"Summary", "", "Skills", "Experience", "Education", "Certifications"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected paragraphs %q", got)
	}
	xmlText := string(DocumentXML(got))
	if strings.Count(xmlText, "<w:p/>") != 1 {
		t.Fatalf("expected one empty paragraph element:\n%s", xmlText)
	}
	if strings.Count(xmlText, "<w:p") != len(want) {
		t.Fatalf("expected %d paragraph elements:\n%s", len(want), xmlText)
	}
}

func TestRenderThenExtractRoundTrip(t *testing.T) {
	templatePath := writeTestTemplate(t)

	data, err := RenderPlan(templatePath, samplePlan())
	if err != nil {
		t.Fatalf("RenderPlan: %v", err)
	}

	paragraphs, err := ExtractParagraphs(data)
	if err != nil {
		t.Fatalf("ExtractParagraphs: %v", err)
	}
	want := Paragraphs(samplePlan())
	if strings.Join(paragraphs, "\n") != strings.Join(want, "\n") {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", paragraphs, want)
	}

	text, err := ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	for _, field := range []string{"Backend engineer", "Go", "Acme", "Shipped the scheduler.", "Example University", "CKA"} {
		if strings.Count(text, field) != 1 {
			t.Fatalf("expected %q exactly once in:\n%s", field, text)
		}
	}
	assertOrder(t, text, "Summary", "Skills", "Experience", "Education", "Certifications")
}

func TestRenderPlanPackagesRequiredParts(t *testing.T) {
	templatePath := writeTestTemplate(t)
	data, err := RenderPlan(templatePath, samplePlan())
	if err != nil {
		t.Fatalf("RenderPlan: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	seen := map[string]int{}
	for _, f := range reader.File {
		seen[f.Name]++
	}
	for _, part := range []string{contentTypesPart, rootRelsPart, documentRelsPart, stylesPart, documentPart} {
		if seen[part] != 1 {
			t.Fatalf("expected part %s exactly once, got %d", part, seen[part])
		}
	}

	doc := readPart(t, data, documentPart)
	if strings.Contains(doc, "{{ summary }}") {
		t.Fatalf("template placeholder leaked into document")
	}
	if !strings.Contains(doc, "30% &amp; more.") {
		t.Fatalf("expected escaped ampersand in:\n%s", doc)
	}
}

func TestRenderPlanCopiesTemplateParts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.docx")
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	custom := "<w:styles xmlns:w='" + wordNamespace + "'><!-- custom --></w:styles>"
	for name, content := range map[string]string{
		stylesPart:   custom,
		documentPart: "<w:document/>",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, _ = f.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := RenderPlan(path, samplePlan())
	if err != nil {
		t.Fatalf("RenderPlan: %v", err)
	}
	if got := readPart(t, data, stylesPart); got != custom {
		t.Fatalf("expected template styles to be preserved, got %q", got)
	}
	if got := readPart(t, data, contentTypesPart); got == "" {
		t.Fatalf("expected content types to be synthesized")
	}
}

func TestWriteTemplateKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.docx")
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "existing" {
		t.Fatalf("expected template to be untouched")
	}
}

func TestWriteTemplateContainsPlaceholders(t *testing.T) {
	path := writeTestTemplate(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	paragraphs, err := ExtractParagraphs(data)
	if err != nil {
		t.Fatalf("ExtractParagraphs: %v", err)
	}
	if strings.Join(paragraphs, "|") != strings.Join(TemplateParagraphs(), "|") {
		t.Fatalf("unexpected template paragraphs %q", paragraphs)
	}
}

func TestExtractTextRejectsInvalidInput(t *testing.T) {
	if _, err := ExtractText([]byte("not a zip")); err == nil {
		t.Fatalf("expected error for non-zip input")
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create(stylesPart)
	_ = w.Close()
	if _, err := ExtractText(buf.Bytes()); err != ErrNoDocumentPart {
		t.Fatalf("expected ErrNoDocumentPart, got %v", err)
	}
}

func TestExtractConcatenatesRuns(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="` + wordNamespace + `"><w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
<w:p><w:r><w:t>   </w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t xml:space="preserve">  Second  </w:t></w:r></w:p>
</w:body></w:document>`
	got, err := paragraphsFromXML([]byte(doc))
	if err != nil {
		t.Fatalf("paragraphsFromXML: %v", err)
	}
	if strings.Join(got, "|") != "Hello World|Second" {
		t.Fatalf("unexpected paragraphs %q", got)
	}
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(content)
	}
	return ""
}

func assertOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		idx := strings.Index(text, part)
		if idx <= last {
			t.Fatalf("expected %q after previous section in:\n%s", part, text)
		}
		last = idx
	}
}
