package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds system names and run identifiers accepted from user input.
const maxNameLength = 256

// ValidateSystemName validates a system name taken from a manifest or the CLI.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
//
// The scheduler core itself accepts any non-empty string; this check applies
// to names arriving from files and flags, where they also end up in DOT
// labels and storage keys.
func ValidateSystemName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "system name cannot be empty")
	}

	if len(name) > maxNameLength {
		return NewFor(ErrCodeInvalidInput, name, "system name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return NewFor(ErrCodeInvalidInput, name, "system name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return NewFor(ErrCodeInvalidInput, name, "system name %q has surrounding whitespace", name)
	}

	return nil
}

// ValidateRunID validates a history record identifier given on the command line.
// Identifiers are used to build file paths and storage keys, so path
// separators and traversal sequences are rejected.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}

	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "run id too long (max %d characters)", maxNameLength)
	}

	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "run id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "run id cannot contain path components")
	}

	return nil
}

// ValidateOutputFormat checks that format is one of allowed.
func ValidateOutputFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
