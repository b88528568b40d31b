package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateDimensions checks that a photo has strictly positive pixel dimensions.
func ValidateDimensions(source string, w, h int) error {
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidInput, "photo %s has invalid dimensions %dx%d", source, w, h)
	}
	return nil
}

// ValidateOutputPath validates the collage output path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must carry a file extension (the output format is inferred from it)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.TrimPrefix(filepath.Ext(path), ".") == "" {
		return New(ErrCodeInvalidFormat, "output path %q has no extension", path)
	}

	return nil
}

// ValidateFraction checks that v lies in [0, max).
func ValidateFraction(name string, v, max float64) error {
	if math.IsNaN(v) || v < 0 || v >= max {
		return New(ErrCodeInvalidInput, "%s must be in [0, %g), got %g", name, max, v)
	}
	return nil
}
