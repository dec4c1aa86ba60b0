package config

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"verylcheck/internal/core/config/helpers"
	"verylcheck/internal/core/errors"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/gobwas/glob"
	"golang.org/x/mod/semver"
)

var validProjectName = regexp.MustCompile(`^[a-zA-Z_][0-9a-zA-Z_]*$`)

// Check validates m and returns every problem as one VALIDATION_ERROR.
func (m *Metadata) Check() error {
	errs := Validate(m)
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid "+FileName)
}

// Validate returns every problem found in m, in section order.
func Validate(m *Metadata) []error {
	var errs []error
	errs = append(errs, validateProject(&m.Project)...)
	errs = append(errs, validateBuild(&m.Build)...)
	if m.Format.IndentWidth < 1 {
		errs = append(errs, fmt.Errorf("format.indent_width must be >= 1, got %d", m.Format.IndentWidth))
	}
	errs = append(errs, validateDependencies(m.Dependencies)...)
	for i, name := range m.Lint.Allow {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("lint.allow[%d] must not be empty", i))
		}
	}
	errs = append(errs, validateAnalysis(&m.Analysis)...)
	errs = append(errs, validateWatch(&m.Watch)...)
	errs = append(errs, validateObservability(&m.Observability)...)
	return errs
}

func validateProject(p *Project) []error {
	var errs []error
	if !validProjectName.MatchString(p.Name) {
		errs = append(errs, fmt.Errorf("project.name %q is invalid: must match %s", p.Name, validProjectName.String()))
	}
	if !isFullSemver(p.Version) {
		errs = append(errs, fmt.Errorf("project.version %q is not a semantic version (MAJOR.MINOR.PATCH)", p.Version))
	}
	if p.License != "" {
		if ok, invalid := spdxexp.ValidateLicenses([]string{p.License}); !ok {
			errs = append(errs, fmt.Errorf("project.license %q is not a valid SPDX expression: %s", p.License, strings.Join(invalid, ", ")))
		}
	}
	if p.Repository != "" {
		if err := validateURL(p.Repository); err != nil {
			errs = append(errs, fmt.Errorf("project.repository: %w", err))
		}
	}
	for i, author := range p.Authors {
		if strings.TrimSpace(author) == "" {
			errs = append(errs, fmt.Errorf("project.authors[%d] must not be empty", i))
		}
	}
	return errs
}

// isFullSemver accepts MAJOR.MINOR.PATCH with optional prerelease and build
// suffixes. semver.IsValid alone also accepts the v1 and v1.2 shorthands.
func isFullSemver(version string) bool {
	if version == "" || strings.HasPrefix(version, "v") {
		return false
	}
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	core := strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return strings.Count(core, ".") == 2
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL %q must include scheme and host", raw)
	}
	return nil
}

func validateBuild(b *Build) []error {
	var errs []error
	switch b.ClockType {
	case ClockPosEdge, ClockNegEdge:
	default:
		errs = append(errs, fmt.Errorf("build.clock_type must be one of: posedge, negedge"))
	}
	switch b.ResetType {
	case ResetAsyncLow, ResetAsyncHigh, ResetSyncLow, ResetSyncHigh:
	default:
		errs = append(errs, fmt.Errorf("build.reset_type must be one of: async_low, async_high, sync_low, sync_high"))
	}
	switch b.FilelistType {
	case FilelistAbsolute, FilelistRelative, FilelistFlgen:
	default:
		errs = append(errs, fmt.Errorf("build.filelist_type must be one of: absolute, relative, flgen"))
	}
	switch b.Target.Type {
	case TargetSource:
		if b.Target.Path != "" {
			errs = append(errs, fmt.Errorf("build.target.path is only valid with type=directory"))
		}
	case TargetDirectory:
		if strings.TrimSpace(b.Target.Path) == "" {
			errs = append(errs, fmt.Errorf("build.target.path must not be empty when type=directory"))
		}
	default:
		errs = append(errs, fmt.Errorf("build.target.type must be one of: source, directory"))
	}
	return errs
}

func validateDependencies(deps map[string]Dependency) []error {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		dep := deps[name]
		ref := "dependencies." + name
		if !validProjectName.MatchString(name) {
			errs = append(errs, fmt.Errorf("%s: dependency name is invalid", ref))
		}
		if strings.TrimSpace(dep.Git) == "" {
			errs = append(errs, fmt.Errorf("%s.git must not be empty", ref))
		} else if err := validateURL(dep.Git); err != nil {
			errs = append(errs, fmt.Errorf("%s.git: %w", ref, err))
		}
		pinned := 0
		for _, v := range []string{dep.Rev, dep.Tag, dep.Branch} {
			if strings.TrimSpace(v) != "" {
				pinned++
			}
		}
		if pinned > 1 {
			errs = append(errs, fmt.Errorf("%s: only one of rev, tag, branch may be set", ref))
		}
	}
	return errs
}

func validateAnalysis(a *Analysis) []error {
	var errs []error
	if len(a.Sources) == 0 {
		errs = append(errs, fmt.Errorf("analysis.sources must not be empty"))
	}
	for i, pattern := range a.Sources {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("analysis.sources[%d] %q: %w", i, pattern, err))
		}
	}
	for i, pattern := range a.ExcludeFiles {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("analysis.exclude_files[%d] %q: %w", i, pattern, err))
		}
	}
	for i, dir := range a.ExcludeDirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, fmt.Errorf("analysis.exclude_dirs[%d] must not be empty", i))
		} else if helpers.HasWildcard(dir) {
			errs = append(errs, fmt.Errorf("analysis.exclude_dirs[%d] %q must be a directory name; use exclude_files for patterns", i, dir))
		}
	}
	if a.PersistFacts && a.FactsDB == "" {
		errs = append(errs, fmt.Errorf("analysis.facts_db must not be empty when persist_facts=true"))
	}
	return errs
}

func validateWatch(w *Watch) []error {
	var errs []error
	if w.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative"))
	}
	if w.MaxRechecksPerSecond < 0 {
		errs = append(errs, fmt.Errorf("watch.max_rechecks_per_second must not be negative"))
	}
	if w.Burst < 1 {
		errs = append(errs, fmt.Errorf("watch.burst must be >= 1"))
	}
	return errs
}

func validateObservability(o *Observability) []error {
	var errs []error
	if addr := strings.TrimSpace(o.MetricsAddress); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("observability.metrics_address %q: %w", addr, err))
		}
	}
	if strings.TrimSpace(o.ServiceName) == "" {
		errs = append(errs, fmt.Errorf("observability.service_name must not be empty"))
	}
	return errs
}
