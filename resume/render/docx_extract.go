package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoDocumentPart is returned when a container lacks word/document.xml.
var ErrNoDocumentPart = errors.New("docx: missing word/document.xml")

// ExtractText returns the non-empty paragraph texts of a DOCX joined by newlines.
func ExtractText(data []byte) (string, error) {
	paragraphs, err := ExtractParagraphs(data)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

// ExtractParagraphs walks the paragraph elements of the document part,
// concatenating run text. Paragraphs are trimmed and empty ones dropped.
func ExtractParagraphs(data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	var document *zip.File
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == documentPart {
			document = file
			break
		}
	}
	if document == nil {
		return nil, ErrNoDocumentPart
	}

	content, err := readZipFile(document)
	if err != nil {
		return nil, fmt.Errorf("read document part: %w", err)
	}
	return paragraphsFromXML(content)
}

func paragraphsFromXML(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		out     []string
		current strings.Builder
		depth   int
		inText  bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document part: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if isWordElement(t.Name, "p") {
				if depth == 0 {
					current.Reset()
				}
				depth++
			} else if depth > 0 && isWordElement(t.Name, "t") {
				inText = true
			}
		case xml.EndElement:
			if isWordElement(t.Name, "t") {
				inText = false
			} else if isWordElement(t.Name, "p") && depth > 0 {
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(current.String()); text != "" {
						out = append(out, text)
					}
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return out, nil
}

func isWordElement(name xml.Name, local string) bool {
	return name.Space == wordNamespace && name.Local == local
}
