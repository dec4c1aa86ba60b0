package config

import (
	"strings"
	"testing"
)

func validMetadata() *Metadata {
	m := DefaultMetadata()
	m.Project = Project{Name: "top_chip", Version: "1.2.3"}
	return m
}

func TestValidate_Valid(t *testing.T) {
	m := validMetadata()
	m.Project.Version = "1.0.0-rc.1+build.5"
	m.Project.License = "Apache-2.0"
	m.Observability.MetricsAddress = "127.0.0.1:9464"
	if errs := Validate(m); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
		want   string
	}{
		{"project name", func(m *Metadata) { m.Project.Name = "my-chip" }, `project.name "my-chip" is invalid`},
		{"empty name", func(m *Metadata) { m.Project.Name = "" }, `project.name "" is invalid`},
		{"short version", func(m *Metadata) { m.Project.Version = "1.2" }, `project.version "1.2"`},
		{"v prefix", func(m *Metadata) { m.Project.Version = "v1.2.3" }, `project.version "v1.2.3"`},
		{"license", func(m *Metadata) { m.Project.License = "NOT-A-LICENSE" }, "not a valid SPDX expression"},
		{"repository", func(m *Metadata) { m.Project.Repository = "github.com/x" }, "must include scheme and host"},
		{"clock", func(m *Metadata) { m.Build.ClockType = "both" }, "build.clock_type must be one of"},
		{"reset", func(m *Metadata) { m.Build.ResetType = "async" }, "build.reset_type must be one of"},
		{"filelist", func(m *Metadata) { m.Build.FilelistType = "xml" }, "build.filelist_type must be one of"},
		{"target type", func(m *Metadata) { m.Build.Target.Type = "tree" }, "build.target.type must be one of"},
		{"directory path", func(m *Metadata) { m.Build.Target = Target{Type: TargetDirectory} }, "build.target.path must not be empty"},
		{"source path", func(m *Metadata) { m.Build.Target.Path = "out" }, "only valid with type=directory"},
		{"indent", func(m *Metadata) { m.Format.IndentWidth = -1 }, "format.indent_width must be >= 1"},
		{"dependency git", func(m *Metadata) { m.Dependencies["std"] = Dependency{} }, "dependencies.std.git must not be empty"},
		{"dependency pins", func(m *Metadata) {
			m.Dependencies["std"] = Dependency{Git: "https://example.com/std", Rev: "abc", Branch: "main"}
		}, "only one of rev, tag, branch"},
		{"dependency name", func(m *Metadata) {
			m.Dependencies["my-lib"] = Dependency{Git: "https://example.com/lib"}
		}, "dependencies.my-lib: dependency name is invalid"},
		{"allow entry", func(m *Metadata) { m.Lint.Allow = []string{" "} }, "lint.allow[0] must not be empty"},
		{"sources glob", func(m *Metadata) { m.Analysis.Sources = []string{"src/[a-"} }, "analysis.sources[0]"},
		{"exclude dir wildcard", func(m *Metadata) { m.Analysis.ExcludeDirs = []string{"build*"} }, "use exclude_files for patterns"},
		{"facts db", func(m *Metadata) {
			m.Analysis.PersistFacts = true
			m.Analysis.FactsDB = ""
		}, "analysis.facts_db must not be empty"},
		{"debounce", func(m *Metadata) { m.Watch.Debounce = -1 }, "watch.debounce must not be negative"},
		{"burst", func(m *Metadata) { m.Watch.Burst = 0 }, "watch.burst must be >= 1"},
		{"metrics address", func(m *Metadata) { m.Observability.MetricsAddress = "9464" }, "observability.metrics_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			tt.mutate(m)
			errs := Validate(m)
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					return
				}
			}
			t.Errorf("expected error containing %q, got %v", tt.want, errs)
		})
	}
}

func TestCheck_JoinsErrors(t *testing.T) {
	m := validMetadata()
	m.Project.Name = "1x"
	m.Format.IndentWidth = -4
	err := m.Check()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "project.name") || !strings.Contains(err.Error(), "format.indent_width") {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if validMetadata().Check() != nil {
		t.Fatal("expected valid metadata to pass")
	}
}
