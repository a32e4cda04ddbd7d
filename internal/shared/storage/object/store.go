package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"fitresume/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

const (
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePDF  = "application/pdf"
)

// ObjectStore defines the contract for saving and retrieving uploaded resumes.
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// Upload is a validated, ready-to-write object shared by the store backends.
type Upload struct {
	// Key is "<namespace>/<uuid>_<file name>", always slash separated.
	Key      string
	MimeType string
	Body     io.Reader
}

// PrepareUpload sanitizes the namespace and file name, assigns a unique key
// and sniffs the content type from the first 512 bytes of r.
func PrepareUpload(namespace, fileName string, r io.Reader) (Upload, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Upload{}, fmt.Errorf("sanitize file name: %w", err)
	}
	ns, err := util.SanitizeFileName(namespace)
	if err != nil {
		return Upload{}, fmt.Errorf("sanitize namespace: %w", err)
	}

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return Upload{}, fmt.Errorf("read sniff: %w", readErr)
	}

	return Upload{
		Key:      path.Join(ns, uuid.NewString()+"_"+name),
		MimeType: ContentType(name, sniff[:n]),
		Body:     io.MultiReader(bytes.NewReader(sniff[:n]), r),
	}, nil
}

// ContentType refines http.DetectContentType for resume formats: a DOCX is a
// zip container and would otherwise be reported as application/zip.
func ContentType(fileName string, head []byte) string {
	detected := http.DetectContentType(head)
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".docx") && strings.HasPrefix(detected, "application/zip"):
		return MimeDOCX
	case strings.HasSuffix(lower, ".pdf") && detected == MimePDF:
		return MimePDF
	default:
		return detected
	}
}
