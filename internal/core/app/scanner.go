package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// pathMatcher matches slash-separated paths relative to the project root.
// A leading "**/" also matches at the root, so "**/*.veryl" covers
// "top.veryl" as well as "src/top.veryl".
type pathMatcher struct {
	patterns []string
	globs    []glob.Glob
}

func newPathMatcher(patterns []string) (*pathMatcher, error) {
	m := &pathMatcher{}
	for _, p := range expandPatterns(patterns) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// expandPatterns adds the zero-directory forms of every "**" segment: a
// leading "**/" is dropped and an inner "/**/" collapses to "/", so
// "src/**/*.veryl" also matches "src/alu.veryl".
func expandPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		for i := len(out) - 1; i < len(out); i++ {
			for _, v := range collapseDoubleStar(out[i]) {
				if !seen[v] {
					seen[v] = true
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// collapseDoubleStar returns p with one "**" segment removed, once for each
// such segment.
func collapseDoubleStar(p string) []string {
	var out []string
	if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
		out = append(out, rest)
	}
	for i := 0; ; {
		j := strings.Index(p[i:], "/**/")
		if j < 0 {
			break
		}
		j += i
		out = append(out, p[:j]+p[j+3:])
		i = j + 1
	}
	return out
}

func (m *pathMatcher) Match(rel string) bool {
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// MatchPathOrBase also tries the base name, so "*_tb.veryl" excludes
// testbenches in any directory.
func (m *pathMatcher) MatchPathOrBase(rel string) bool {
	return m.Match(rel) || m.Match(pathBase(rel))
}

func (m *pathMatcher) Empty() bool {
	return len(m.globs) == 0
}

func pathBase(rel string) string {
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		return rel[i+1:]
	}
	return rel
}

// Discover lists the project's source files, sorted. Directories matching
// exclude_dirs and the build target directory are skipped; files must match
// a source pattern and no exclude_files pattern.
func (a *App) Discover() ([]string, error) {
	a.mu.RLock()
	root := a.paths.ProjectRoot
	paths := a.paths
	sources, excludes, dirs := a.sources, a.excludes, a.dirs
	a.mu.RUnlock()

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if dirs.MatchPathOrBase(rel) || paths.InTarget(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !sources.Match(rel) {
			return nil
		}
		if excludes.MatchPathOrBase(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// relName is the file name diagnostics and facts carry for path.
func (a *App) relName(path string) string {
	rel, err := filepath.Rel(a.Root(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
