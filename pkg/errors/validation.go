package errors

import (
	"strings"
	"unicode"
)

// ValidateClusterID validates a cluster identifier received from a payload or URL.
//
// The rules are conservative:
//   - No empty ids
//   - Maximum length of 256 characters
//   - No control characters or null bytes
func ValidateClusterID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "cluster id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "cluster id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "cluster id contains invalid control characters")
		}
	}
	return nil
}

// ValidateSnapshotName validates a user supplied snapshot name.
// Names are stored as file names by the file store, so path components are rejected.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "snapshot name too long (max 128 characters)")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidInput, "snapshot name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "snapshot name cannot contain path traversal sequences (..)")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
