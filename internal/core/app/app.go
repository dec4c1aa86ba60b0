package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"sync"
	"time"
	"verylcheck/internal/core/config"
	"verylcheck/internal/core/errors"
	"verylcheck/internal/core/ports"
	"verylcheck/internal/data/facts"
	"verylcheck/internal/engine/analyzer"
	"verylcheck/internal/shared/observability"
	"verylcheck/internal/shared/util"
	"verylcheck/internal/ui/report"
)

// Result is the outcome of checking a project once.
type Result struct {
	RunID       string
	Project     string
	StartedAt   time.Time
	Duration    time.Duration
	Files       []string
	Symbols     int
	Diagnostics []analyzer.AnalyzerError
	Facts       []facts.Fact
}

func (r *Result) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == analyzer.SeverityError {
			n++
		}
	}
	return n
}

func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// Report converts r for rendering. root anchors relative file names.
func (r *Result) Report(root string) report.Report {
	out := report.Report{
		RunID:       r.RunID,
		Project:     r.Project,
		Root:        root,
		Files:       len(r.Files),
		Symbols:     r.Symbols,
		Facts:       len(r.Facts),
		Duration:    r.Duration,
		Diagnostics: make([]report.Diagnostic, 0, len(r.Diagnostics)),
	}
	for _, d := range r.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, report.Diagnostic{
			Code:       d.Code,
			Severity:   d.Severity.String(),
			Message:    d.Message,
			Identifier: d.Identifier,
			File:       d.Token.File,
			Line:       d.Token.Line,
			Column:     d.Token.Column,
		})
	}
	out.Sort()
	return out
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// App checks one Veryl project: it owns the metadata, the discovery rules,
// the optional fact store and the last result.
type App struct {
	mu       sync.RWMutex
	metadata *config.Metadata
	paths    config.ResolvedPaths
	sources  *pathMatcher
	excludes *pathMatcher
	dirs     *pathMatcher

	reader  ports.SourceReader
	store   ports.FactStore
	limiter *util.Limiter

	lastMu sync.RWMutex
	last   *Result
}

// New prepares an App for m. cwd anchors relative paths when m was not
// loaded from a file.
func New(m *config.Metadata, cwd string) (*App, error) {
	if m == nil {
		return nil, errors.New(errors.CodeValidationError, "metadata must not be nil")
	}
	a := &App{reader: osReader{}}
	if err := a.apply(m, cwd); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) apply(m *config.Metadata, cwd string) error {
	paths, err := config.ResolvePaths(m, cwd)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "resolve project paths")
	}
	sources, err := newPathMatcher(m.Analysis.Sources)
	if err != nil {
		return errors.AddContext(err, errors.CtxField, "analysis.sources")
	}
	excludes, err := newPathMatcher(m.Analysis.ExcludeFiles)
	if err != nil {
		return errors.AddContext(err, errors.CtxField, "analysis.exclude_files")
	}
	dirs, err := newPathMatcher(m.Analysis.ExcludeDirs)
	if err != nil {
		return errors.AddContext(err, errors.CtxField, "analysis.exclude_dirs")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata = m
	a.paths = paths
	a.sources = sources
	a.excludes = excludes
	a.dirs = dirs
	a.limiter = util.NewLimiter(m.Watch.MaxRechecksPerSecond, m.Watch.Burst)
	return nil
}

// Reload swaps in new metadata. The project root stays where it was.
func (a *App) Reload(m *config.Metadata) error {
	if m == nil {
		return errors.New(errors.CodeValidationError, "metadata must not be nil")
	}
	return a.apply(m, a.Root())
}

func (a *App) Metadata() *config.Metadata {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.metadata
}

func (a *App) Paths() config.ResolvedPaths {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paths
}

func (a *App) Root() string {
	return a.Paths().ProjectRoot
}

// SetReader replaces the source reader, mainly for tests.
func (a *App) SetReader(r ports.SourceReader) {
	a.reader = r
}

func (a *App) SetFactStore(store ports.FactStore) {
	a.store = store
}

// OpenFactStore opens the sqlite store at the configured facts_db path.
func (a *App) OpenFactStore() error {
	path := a.Paths().FactsDB

	store, err := facts.Open(path)
	if err != nil {
		return errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "open fact store"),
			errors.CtxPath, path,
		)
	}
	slog.Debug("fact store opened", "path", path)
	a.store = store
	return nil
}

func (a *App) FactStore() ports.FactStore {
	return a.store
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// LastResult returns the most recent check, or nil before the first one.
func (a *App) LastResult() *Result {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.last
}

func (a *App) setLast(r *Result) {
	a.lastMu.Lock()
	a.last = r
	a.lastMu.Unlock()
}

// Persist stores the facts of r. It is a no-op without a fact store.
func (a *App) Persist(ctx context.Context, r *Result) error {
	if a.store == nil || r == nil {
		return nil
	}
	start := time.Now()
	run, err := a.store.SaveRun(ctx, facts.Run{
		ID:          r.RunID,
		Project:     r.Project,
		StartedAt:   r.StartedAt,
		Files:       len(r.Files),
		Diagnostics: len(r.Diagnostics),
	}, r.Facts)
	observability.FactsPersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, facts.ErrRunExists) {
			code = errors.CodeConflict
		}
		return errors.AddContext(
			errors.Wrap(err, code, "persist assignment facts"),
			errors.CtxOperation, "save_run",
		)
	}
	r.RunID = run.ID
	slog.Debug("facts persisted", "run", run.ID, "facts", run.Facts)
	return nil
}
