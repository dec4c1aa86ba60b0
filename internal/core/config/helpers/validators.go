package helpers

import (
	"path/filepath"
	"strings"
)

// HasWildcard reports whether pattern contains glob metacharacters.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// IsWithin reports whether path equals dir or lies below it. Both are
// cleaned first.
func IsWithin(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
