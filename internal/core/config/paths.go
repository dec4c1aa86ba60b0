package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"verylcheck/internal/core/config/helpers"
)

type ResolvedPaths struct {
	ProjectRoot string
	FactsDB     string
	// TargetDir is empty for target type "source".
	TargetDir string
}

// ResolvePaths anchors the relative paths of m at the directory holding the
// metadata file, or at cwd when m was not loaded from disk.
func ResolvePaths(m *Metadata, cwd string) (ResolvedPaths, error) {
	root := ""
	if m.MetadataPath != "" {
		root = filepath.Dir(m.MetadataPath)
	} else {
		if strings.TrimSpace(cwd) == "" {
			return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
		}
		root = cwd
	}
	root = filepath.Clean(root)

	resolved := ResolvedPaths{
		ProjectRoot: root,
		FactsDB:     ResolveRelative(root, m.Analysis.FactsDB),
	}
	if m.Build.Target.Type == TargetDirectory {
		resolved.TargetDir = ResolveRelative(root, m.Build.Target.Path)
	}
	return resolved, nil
}

// InTarget reports whether path lies in the generated-output directory.
func (r ResolvedPaths) InTarget(path string) bool {
	if r.TargetDir == "" {
		return false
	}
	return helpers.IsWithin(ResolveRelative(r.ProjectRoot, path), r.TargetDir)
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
