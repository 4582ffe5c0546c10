package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath checks a figure output path before any work is done.
//
// Validation rules:
//   - Path cannot be empty or contain control characters
//   - Maximum length of 500 characters
//   - Extension must be .png (case-insensitive)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return New(ErrCodeInvalidPath, "output path must end in .png, got %q", ext)
	}

	return nil
}

// ValidateInputPath checks that an input table path has a supported extension.
// Accepted: .csv and .csv.gz.
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".csv.gz") {
		return New(ErrCodeInvalidPath, "unsupported input format: %s (expected .csv or .csv.gz)", filepath.Base(path))
	}
	return nil
}

// ValidateTileURL validates a tile URL template.
// It must use http or https and contain the {z}, {x} and {y} placeholders.
func ValidateTileURL(template string) error {
	if template == "" {
		return New(ErrCodeInvalidConfig, "tile URL cannot be empty")
	}

	if !strings.HasPrefix(template, "http://") && !strings.HasPrefix(template, "https://") {
		return New(ErrCodeInvalidConfig, "tile URL must use http or https scheme")
	}

	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(template, p) {
			return New(ErrCodeInvalidConfig, "tile URL is missing placeholder %s", p)
		}
	}

	return nil
}
