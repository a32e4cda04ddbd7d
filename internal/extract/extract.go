// Package extract turns uploaded resume files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"fitresume/resume/render"
)

// Supported resume formats, named by file extension.
const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
)

// ErrUnsupported is returned for formats that are not recognized or cannot be parsed.
var ErrUnsupported = errors.New("unsupported resume format")

// Result is the extracted text of one file.
type Result struct {
	Format string
	Text   string
}

// Detect resolves the format from the file extension, falling back to content sniffing
// when the name carries no extension.
func Detect(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch ext {
	case FormatDOCX, FormatPDF:
		return ext, nil
	case "":
		if sniffed := sniff(data); sniffed != "" {
			return sniffed, nil
		}
		return "", fmt.Errorf("%w: unknown content", ErrUnsupported)
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupported, ext)
	}
}

// Text extracts plain text from an in-memory payload.
func Text(ctx context.Context, data []byte, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	format, err := Detect(fileName, data)
	if err != nil {
		return Result{}, err
	}

	var text string
	switch format {
	case FormatDOCX:
		text, err = render.ExtractText(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: unable to parse DOCX: %v", ErrUnsupported, err)
		}
	case FormatPDF:
		text, err = extractPDF(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: unable to parse PDF: %v", ErrUnsupported, err)
		}
	}
	return Result{Format: format, Text: text}, nil
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func sniff(data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF
	}
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return FormatDOCX
		}
	}
	return ""
}
