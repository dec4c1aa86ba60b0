package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"verylcheck/internal/core/config"
	"verylcheck/internal/core/errors"
	"verylcheck/internal/data/facts"
	"verylcheck/internal/engine/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topSource = `
module Top (
    i_a: input logic,
    o_b: output logic,
) {
    var r: logic;
    always_comb {
        if i_a {
            r = 1;
        } else {
            r = 0;
        }
    }
    assign o_b = r;
}
`

const badSource = `
module Bad (
    i_a: input logic,
) {
    always_comb {
        i_a = 1;
    }
}
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, root string, mutate func(*config.Metadata)) *App {
	t.Helper()
	m := config.DefaultMetadata()
	m.Project = config.Project{Name: "prj", Version: "0.1.0"}
	if mutate != nil {
		mutate(m)
	}
	a, err := New(m, root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_RejectsNilMetadata(t *testing.T) {
	_, err := New(nil, t.TempDir())
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestNew_RejectsBadPattern(t *testing.T) {
	m := config.DefaultMetadata()
	m.Analysis.Sources = []string{"src/[a-"}
	_, err := New(m, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	top := writeFile(t, root, "top.veryl", topSource)
	nested := writeFile(t, root, "src/core/alu.veryl", topSource)
	writeFile(t, root, "src/core/alu_tb.veryl", topSource)
	writeFile(t, root, "src/readme.md", "notes")
	writeFile(t, root, "dependencies/std/fifo.veryl", topSource)
	writeFile(t, root, "out/gen.veryl", topSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.ExcludeFiles = []string{"*_tb.veryl"}
		m.Build.Target = config.Target{Type: config.TargetDirectory, Path: "out"}
	})

	files, err := a.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{nested, top}, files)
}

func TestDiscover_InnerDoubleStarIncludesDirectChildren(t *testing.T) {
	root := t.TempDir()
	direct := writeFile(t, root, "src/alu.veryl", topSource)
	nested := writeFile(t, root, "src/core/fifo.veryl", topSource)
	writeFile(t, root, "top.veryl", topSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.Sources = []string{"src/**/*.veryl"}
	})

	files, err := a.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{direct, nested}, files)
}

func TestDiscover_SourcePatternsAreRelative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)
	inSrc := writeFile(t, root, "src/alu.veryl", topSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.Sources = []string{"src/*.veryl"}
	})

	files, err := a.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{inSrc}, files)
}

func TestExpandPatterns(t *testing.T) {
	got := expandPatterns([]string{"**/*.veryl", " ", "src/*.veryl", "**/"})
	assert.Equal(t, []string{"**/*.veryl", "*.veryl", "src/*.veryl", "**/"}, got)

	got = expandPatterns([]string{"src/**/*.veryl", "a/**/b/**/*.veryl"})
	assert.Equal(t, []string{
		"src/**/*.veryl", "src/*.veryl",
		"a/**/b/**/*.veryl", "a/b/**/*.veryl", "a/**/b/*.veryl", "a/b/*.veryl",
	}, got)
}

func TestPathMatcher_InnerDoubleStarMatchesDirectChildren(t *testing.T) {
	m, err := newPathMatcher([]string{"src/**/*.veryl"})
	require.NoError(t, err)
	assert.True(t, m.Match("src/alu.veryl"))
	assert.True(t, m.Match("src/a/alu.veryl"))
	assert.True(t, m.Match("src/a/b/alu.veryl"))
	assert.False(t, m.Match("alu.veryl"))
	assert.False(t, m.Match("other/alu.veryl"))
}

func TestPathMatcher_MatchPathOrBase(t *testing.T) {
	m, err := newPathMatcher([]string{"*_tb.veryl"})
	require.NoError(t, err)
	assert.True(t, m.MatchPathOrBase("src/deep/x_tb.veryl"))
	assert.False(t, m.Match("src/deep/x_tb.veryl"))
	assert.False(t, m.MatchPathOrBase("src/x.veryl"))
	assert.False(t, m.Empty())
}

func TestCheckAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/top.veryl", topSource)
	writeFile(t, root, "src/bad.veryl", badSource)

	a := newTestApp(t, root, nil)
	res, err := a.CheckAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "prj", res.Project)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"src/bad.veryl", "src/top.veryl"}, res.Files)
	assert.Positive(t, res.Symbols)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, analyzer.CodeInvalidAssignment, d.Code)
	assert.Equal(t, "i_a", d.Identifier)
	assert.Equal(t, "src/bad.veryl", d.Token.File)
	assert.True(t, res.HasErrors())
	assert.Equal(t, 1, res.ErrorCount())

	// r twice in always_comb, o_b once in assign.
	require.Len(t, res.Facts, 3)
	for i, f := range res.Facts {
		assert.Equal(t, uint64(i+1), f.Seq)
		assert.Equal(t, "src/top.veryl", f.File)
		assert.NotEmpty(t, f.Position)
	}
	assert.Equal(t, "r", res.Facts[0].Target)
	assert.Equal(t, "statement", res.Facts[0].Kind)
	assert.Equal(t, "o_b", res.Facts[2].Target)
	assert.Equal(t, "declaration", res.Facts[2].Kind)

	assert.Same(t, res, a.LastResult())
}

func TestCheckAll_SyntaxErrorBecomesDiagnostic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "broken.veryl", "module Broken {\n    var a: logic\n")
	writeFile(t, root, "top.veryl", topSource)

	a := newTestApp(t, root, nil)
	res, err := a.CheckAll(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, analyzer.CodeSyntaxError, res.Diagnostics[0].Code)
	assert.Equal(t, "broken.veryl", res.Diagnostics[0].Token.File)
	assert.Len(t, res.Files, 2)
	assert.Len(t, res.Facts, 3)
}

func TestCheckAll_LintAllowDoesNotHideInvalidAssignment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.veryl", badSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Lint.Allow = []string{"missing_reset_statement"}
	})
	res, err := a.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, analyzer.CodeInvalidAssignment, res.Diagnostics[0].Code)
}

type mapReader map[string]string

func (r mapReader) ReadFile(path string) ([]byte, error) {
	text, ok := r[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(text), nil
}

func TestCheckFiles_SkipsVanishedFiles(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, nil)
	top := filepath.Join(root, "top.veryl")
	a.SetReader(mapReader{top: topSource})

	res, err := a.CheckFiles(context.Background(), []string{filepath.Join(root, "gone.veryl"), top})
	require.NoError(t, err)
	assert.Equal(t, []string{"top.veryl"}, res.Files)
	assert.Empty(t, res.Diagnostics)
}

func TestCheckFiles_CancelledContext(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "top.veryl", topSource)
	a := newTestApp(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.CheckFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Report(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.veryl", badSource)
	writeFile(t, root, "top.veryl", topSource)

	a := newTestApp(t, root, nil)
	res, err := a.CheckAll(context.Background())
	require.NoError(t, err)

	r := res.Report(a.Root())
	assert.Equal(t, "prj", r.Project)
	assert.Equal(t, 2, r.Files)
	assert.Equal(t, 3, r.Facts)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "error", r.Diagnostics[0].Severity)
	assert.Equal(t, "bad.veryl", r.Diagnostics[0].File)
	assert.Equal(t, 1, r.Errors())
}

func TestPersist_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.PersistFacts = true
	})
	require.NoError(t, a.OpenFactStore())
	assert.FileExists(t, filepath.Join(root, ".verylcheck", "facts.db"))

	ctx := context.Background()
	res, err := a.CheckAll(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Persist(ctx, res))

	run, err := a.FactStore().LatestRun(ctx, "prj")
	require.NoError(t, err)
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, 1, run.Files)
	assert.Equal(t, 3, run.Facts)

	loaded, err := a.FactStore().LoadFacts(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, res.Facts[0].Target, loaded[0].Target)
	assert.Equal(t, res.Facts[2].Kind, loaded[2].Kind)
	assert.JSONEq(t, string(res.Facts[0].Position), string(loaded[0].Position))
}

func TestPersist_NoStoreIsNoop(t *testing.T) {
	a := newTestApp(t, t.TempDir(), nil)
	assert.NoError(t, a.Persist(context.Background(), &Result{}))
}

type failingStore struct{}

func (failingStore) SaveRun(context.Context, facts.Run, []facts.Fact) (facts.Run, error) {
	return facts.Run{}, os.ErrPermission
}
func (failingStore) LoadFacts(context.Context, string) ([]facts.Fact, error) { return nil, nil }
func (failingStore) LatestRun(context.Context, string) (facts.Run, error) {
	return facts.Run{}, facts.ErrNoRuns
}
func (failingStore) Close() error { return nil }

func TestPersist_WrapsStoreError(t *testing.T) {
	a := newTestApp(t, t.TempDir(), nil)
	a.SetFactStore(failingStore{})

	err := a.Persist(context.Background(), &Result{Project: "prj"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestPersist_SameRunTwiceIsConflict(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)
	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.PersistFacts = true
	})
	require.NoError(t, a.OpenFactStore())

	ctx := context.Background()
	res, err := a.CheckAll(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Persist(ctx, res))

	err = a.Persist(ctx, res)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
	assert.ErrorIs(t, err, facts.ErrRunExists)
}

func TestReload(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)
	writeFile(t, root, "src/alu.veryl", topSource)
	a := newTestApp(t, root, nil)

	files, err := a.Discover()
	require.NoError(t, err)
	require.Len(t, files, 2)

	next := config.DefaultMetadata()
	next.Project = config.Project{Name: "renamed", Version: "0.2.0"}
	next.Analysis.Sources = []string{"src/**/*.veryl"}
	require.NoError(t, a.Reload(next))

	files, err = a.Discover()
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "renamed", a.Metadata().Project.Name)
	assert.Equal(t, filepath.Clean(root), a.Root())
}

func TestWatch_RechecksOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)

	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Watch.Debounce = 20 * time.Millisecond
	})

	results := make(chan *Result, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(r *Result, err error) {
			if err != nil {
				return
			}
			select {
			case results <- r:
			default:
			}
		})
	}()

	// Let the watcher register the root before writing.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, root, "bad.veryl", badSource)

	select {
	case r := <-results:
		assert.Len(t, r.Files, 2)
		assert.True(t, r.HasErrors())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-check")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestThrottle(t *testing.T) {
	a := newTestApp(t, t.TempDir(), func(m *config.Metadata) {
		m.Watch.MaxRechecksPerSecond = 0.001
		m.Watch.Burst = 1
	})

	assert.True(t, a.throttle(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, a.throttle(ctx))
}

func TestHealthService(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.veryl", topSource)
	a := newTestApp(t, root, func(m *config.Metadata) {
		m.Analysis.PersistFacts = true
	})
	h := NewHealthService(a)

	status := h.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "missing but enabled in config", status.Components["facts_store"])
	assert.Equal(t, "pending", status.Components["last_check"])

	require.NoError(t, a.OpenFactStore())
	_, err := a.CheckAll(context.Background())
	require.NoError(t, err)

	status = h.Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok", status.Components["facts_store"])
	assert.Contains(t, status.Components["last_check"], "1 files")
	assert.Equal(t, "ok (prj)", status.Components["metadata"])
}
