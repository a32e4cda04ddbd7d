package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName is returned for empty names and traversal patterns.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// SafeSegment reduces value to [A-Za-z0-9_-], replacing every other rune with
// '_' and keeping at most maxLen characters. A blank value yields fallback.
func SafeSegment(value, fallback string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = fallback
	}
	var b strings.Builder
	for _, r := range trimmed {
		if maxLen > 0 && b.Len() >= maxLen {
			break
		}
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}
