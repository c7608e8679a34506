package errors

import (
	"math"
	"strings"
	"unicode"
)

// Output formats understood by the generate command.
var knownFormats = map[string]bool{
	"json": true,
	"dot":  true,
}

// ValidateFormats checks a list of output formats. Duplicates are rejected
// so the same file is never written twice.
func ValidateFormats(formats []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if !knownFormats[f] {
			return New(ErrCodeInvalidFormat, "unknown format %q (want json or dot)", f)
		}
		if seen[f] {
			return New(ErrCodeInvalidFormat, "format %q listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateGenerations checks a generation limit.
func ValidateGenerations(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "generations must be at least 1, got %d", n)
	}
	const maxGenerations = 1000
	if n > maxGenerations {
		return New(ErrCodeInvalidInput, "generations too large (max %d)", maxGenerations)
	}
	return nil
}

// ValidateExtent checks a width or depth override.
func ValidateExtent(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidParams, "%s must be a positive number, got %v", name, v)
	}
	return nil
}

// ValidateRedisAddr checks a host:port address.
func ValidateRedisAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "redis address cannot be empty")
	}
	i := strings.LastIndex(addr, ":")
	if i <= 0 || i == len(addr)-1 {
		return New(ErrCodeInvalidInput, "redis address must be host:port, got %q", addr)
	}
	return nil
}

// ValidateMongoURI ensures the URI uses a MongoDB scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidInput, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidInput, "mongo URI must use mongodb or mongodb+srv scheme")
	}
	return nil
}
