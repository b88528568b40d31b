package photo

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/matzehuels/photocollage/pkg/errors"
)

// Extensions lists the file extensions picked up by glob patterns.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// IsImage reports whether path has one of the supported image extensions.
func IsImage(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Expand resolves patterns to image files. A pattern naming an existing file
// is taken as is; anything else is expanded with doublestar, so "**" matches
// across directories, and only regular files with a supported extension are
// kept. A directory expands to the images directly inside it. Every pattern
// must match at least one file.
func Expand(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no photos given")
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := expandOne(expandUser(pattern))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no photos match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func expandOne(pattern string) ([]string, error) {
	if info, err := os.Stat(pattern); err == nil {
		if !info.IsDir() {
			return []string{filepath.Clean(pattern)}, nil
		}
		pattern = filepath.Join(pattern, "*")
	}

	files, err := doublestar.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid pattern %q", pattern)
	}
	var paths []string
	for _, f := range files {
		if !IsImage(f) {
			continue
		}
		if info, err := os.Stat(f); err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Clean(f))
	}
	return paths, nil
}

// expandUser replaces a leading "~" with the user's home directory.
func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
