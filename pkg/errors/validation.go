package errors

import (
	"strings"
	"unicode"
)

// maxIdentifierLength bounds identifiers accepted from callers. Report lines
// themselves are never rejected; this only guards query input.
const maxIdentifierLength = 1024

// ValidateChunkSize rejects non-positive chunk sizes. It is checked before
// any input is read, so a bad size never produces a partial result.
func ValidateChunkSize(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidChunkSize, "chunk size must be a positive integer, got %d", n)
	}
	return nil
}

// ValidateIdentifier validates a dependency identifier or search term
// supplied by a caller.
//
// The validation rules are:
//   - No empty or whitespace-only values
//   - No control characters
//   - Maximum length of 1024 bytes
func ValidateIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}
	return nil
}

// ValidateUploadName validates the filename of an uploaded report.
// It ensures the name is a simple basename without path components.
func ValidateUploadName(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "upload filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "upload filename cannot contain path separators")
	}

	if strings.Contains(filename, "..") || strings.ContainsRune(filename, 0) {
		return New(ErrCodeInvalidInput, "upload filename contains invalid characters")
	}

	return nil
}
