package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds tile ids and project names. Both end up in file names
// and store keys.
const maxNameLength = 256

// ValidateTileID validates a tile identifier.
//
// Ids must be non-empty, at most 256 bytes and free of control characters.
// UUIDs, slugs and titles are all accepted.
func ValidateTileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTile, "tile id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidTile, "tile id too long (max %d characters)", maxNameLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTile, "tile id contains invalid control characters")
		}
	}
	return nil
}

// ValidateProjectName validates a project name for safety and correctness.
// It rejects names that could be used for path traversal or key injection
// when the name is turned into a file path or a store key.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProject, "project name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidProject, "project name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidProject, "project name contains invalid characters: %q", pattern)
		}
	}

	return nil
}
