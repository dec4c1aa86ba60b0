package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"verylcheck/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// SearchFromCurrent is SearchFrom starting at the working directory.
func SearchFromCurrent() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "read working directory")
	}
	return SearchFrom(cwd)
}

// SearchFrom returns the path of the nearest Veryl.toml in from or one of
// its ancestors.
func SearchFrom(from string) (string, error) {
	dir, err := filepath.Abs(from)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "resolve search directory")
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.AddContext(errors.New(errors.CodeNotFound, FileName+" not found"), errors.CtxPath, from)
}

// Load reads, decodes and validates the project file at path.
func Load(path string) (*Metadata, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resolve metadata path")
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read metadata"), errors.CtxPath, abs)
	}

	m, err := Parse(string(data))
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, abs)
	}
	m.MetadataPath = abs

	if err := m.Check(); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, abs)
	}
	return m, nil
}

// Parse decodes text and fills defaults. It does not validate.
func Parse(text string) (*Metadata, error) {
	var m Metadata
	md, err := toml.Decode(text, &m)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "decode "+FileName)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown metadata key", "key", key.String())
	}

	applyDefaults(&m)
	normalize(&m)
	return &m, nil
}

func normalize(m *Metadata) {
	m.Project.Name = strings.TrimSpace(m.Project.Name)
	m.Project.Version = strings.TrimSpace(m.Project.Version)
	m.Project.License = strings.TrimSpace(m.Project.License)
	m.Project.Repository = strings.TrimSpace(m.Project.Repository)
	m.Build.Target.Type = strings.ToLower(strings.TrimSpace(m.Build.Target.Type))
	m.Analysis.FactsDB = strings.TrimSpace(m.Analysis.FactsDB)

	allow := make([]string, 0, len(m.Lint.Allow))
	for _, name := range m.Lint.Allow {
		if name = strings.TrimSpace(name); name != "" {
			allow = append(allow, name)
		}
	}
	m.Lint.Allow = allow
}
