package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fitresume/resume/model"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"
	documentRelsPart = "word/_rels/document.xml.rels"
	stylesPart       = "word/styles.xml"
	documentPart     = "word/document.xml"
)

// Section headings in render order.
const (
	HeadingSummary        = "Summary"
	HeadingSkills         = "Skills"
	HeadingExperience     = "Experience"
	HeadingEducation      = "Education"
	HeadingCertifications = "Certifications"
)

const bulletPrefix = "• "

// staticParts are the package parts every artifact carries besides the document part.
var staticParts = []struct {
	name    string
	content string
}{
	{name: contentTypesPart, content: `<?xml version='1.0' encoding='UTF-8'?>
<Types xmlns='http://schemas.openxmlformats.org/package/2006/content-types'>
  <Default Extension='rels' ContentType='application/vnd.openxmlformats-package.relationships+xml'/>
  <Default Extension='xml' ContentType='application/xml'/>
  <Override PartName='/word/document.xml' ContentType='application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml'/>
  <Override PartName='/word/styles.xml' ContentType='application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml'/>
</Types>
`},
	{name: rootRelsPart, content: `<?xml version='1.0' encoding='UTF-8'?>
<Relationships xmlns='http://schemas.openxmlformats.org/package/2006/relationships'>
  <Relationship Id='R1' Type='http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument' Target='word/document.xml'/>
</Relationships>
`},
	{name: documentRelsPart, content: `<?xml version='1.0' encoding='UTF-8'?>
<Relationships xmlns='http://schemas.openxmlformats.org/package/2006/relationships'>
  <Relationship Id='R1' Type='http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles' Target='styles.xml'/>
</Relationships>
`},
	{name: stylesPart, content: `<?xml version='1.0' encoding='UTF-8'?>
<w:styles xmlns:w='http://schemas.openxmlformats.org/wordprocessingml/2006/main'>
  <w:style w:type='paragraph' w:default='1' w:styleId='Normal'>
    <w:name w:val='Normal'/>
  </w:style>
</w:styles>
`},
}

// Paragraphs maps a plan to the ordered paragraph texts of the artifact.
// Empty values stay in the sequence as empty paragraphs.
func Paragraphs(plan model.Plan) []string {
	out := []string{HeadingSummary, strings.TrimSpace(plan.Summary), HeadingSkills}
	for _, skill := range plan.Skills {
		out = append(out, bullet(skill))
	}
	out = append(out, HeadingExperience)
	for _, exp := range plan.Experience {
		out = append(out, fmt.Sprintf("%s — %s (%s - %s)", exp.Employer, exp.Role, exp.Start, exp.End))
		for _, b := range exp.Bullets {
			out = append(out, bullet(b))
		}
	}
	out = append(out, HeadingEducation)
	for _, item := range plan.Education {
		out = append(out, strings.TrimSpace(item))
	}
	out = append(out, HeadingCertifications)
	for _, item := range plan.Certifications {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}

// TemplateParagraphs is the paragraph set of a synthesized template.
func TemplateParagraphs() []string {
	return []string{
		HeadingSummary, "{{ summary }}",
		HeadingSkills, "{{ skills }}",
		HeadingExperience, "{{ experience }}",
		HeadingEducation, "{{ education }}",
		HeadingCertifications, "{{ certifications }}",
	}
}

// RenderPlan renders a plan into DOCX bytes. Every template part except the
// document part is carried over; missing package parts are synthesized.
func RenderPlan(templatePath string, plan model.Plan) ([]byte, error) {
	templateBytes, err := os.ReadFile(filepath.Clean(templatePath))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	written := make(map[string]bool)

	for _, file := range reader.File {
		name := normalizeZipName(file.Name)
		if name == documentPart || written[name] {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("read template part %s: %w", name, err)
		}
		if err := writeZipFile(writer, file, content); err != nil {
			return nil, err
		}
		written[name] = true
	}
	for _, part := range staticParts {
		if written[part.name] {
			continue
		}
		if err := writePart(writer, part.name, []byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := writePart(writer, documentPart, DocumentXML(Paragraphs(plan))); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// BuildDocx packages the given paragraphs with the default parts.
func BuildDocx(paragraphs []string) ([]byte, error) {
	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range staticParts {
		if err := writePart(writer, part.name, []byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := writePart(writer, documentPart, DocumentXML(paragraphs)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// WriteTemplate synthesizes a placeholder template at path unless a file already exists there.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat template: %w", err)
	}

	data, err := BuildDocx(TemplateParagraphs())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir template dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".template-*.docx")
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close template: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// DocumentXML renders the document part for the given paragraphs.
func DocumentXML(paragraphs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<?xml version='1.0' encoding='UTF-8'?>\n")
	buf.WriteString("<w:document xmlns:w='" + wordNamespace + "'>\n")
	buf.WriteString("  <w:body>\n")
	for _, p := range paragraphs {
		buf.WriteString("  ")
		writeParagraph(&buf, p)
		buf.WriteByte('\n')
	}
	buf.WriteString("  </w:body>\n")
	buf.WriteString("</w:document>")
	return buf.Bytes()
}

func writeParagraph(buf *bytes.Buffer, text string) {
	if text == "" {
		buf.WriteString("<w:p/>")
		return
	}
	buf.WriteString("<w:p><w:r><w:t xml:space='preserve'>")
	_ = xml.EscapeText(buf, []byte(text))
	buf.WriteString("</w:t></w:r></w:p>")
}

func bullet(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	return bulletPrefix + trimmed
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func writeZipFile(writer *zip.Writer, source *zip.File, content []byte) error {
	header := source.FileHeader
	header.Name = normalizeZipName(source.Name)

	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	if _, err := dst.Write(content); err != nil {
		return err
	}
	return nil
}

func writePart(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.Create(name)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
