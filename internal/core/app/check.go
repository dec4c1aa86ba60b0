package app

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"time"
	"verylcheck/internal/core/errors"
	"verylcheck/internal/data/facts"
	"verylcheck/internal/engine/analyzer"
	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"
	"verylcheck/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type parsedFile struct {
	name string
	src  *syntax.Source
}

// CheckAll discovers the project's sources and checks them together.
func (a *App) CheckAll(ctx context.Context) (*Result, error) {
	files, err := a.Discover()
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "discover sources"),
			errors.CtxPath, a.Root(),
		)
	}
	return a.CheckFiles(ctx, files)
}

// CheckFiles parses every file, runs symbol-table creation over all of them,
// then assignment checking over all of them. Declarations in one file are
// visible to assignments in another. Syntax errors are reported as
// diagnostics and the file is left out of both passes.
func (a *App) CheckFiles(ctx context.Context, paths []string) (*Result, error) {
	m := a.Metadata()
	ctx, span := observability.Tracer.Start(ctx, "app.CheckFiles", trace.WithAttributes(
		attribute.String("project", m.Project.Name),
		attribute.Int("files", len(paths)),
	))
	defer span.End()

	result := &Result{
		RunID:     uuid.NewString(),
		Project:   m.Project.Name,
		StartedAt: time.Now().UTC(),
		Files:     make([]string, 0, len(paths)),
	}

	parsed := make([]parsedFile, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := a.relName(path)
		content, err := a.reader.ReadFile(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				slog.Warn("source vanished before check", "path", path)
				continue
			}
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "read source"),
				errors.CtxPath, path,
			)
		}
		result.Files = append(result.Files, name)

		start := time.Now()
		src, err := syntax.Parse(name, string(content))
		observability.ParsingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			var se *syntax.SyntaxError
			if !stderrors.As(err, &se) {
				return nil, errors.AddContext(
					errors.Wrap(err, errors.CodeParseError, "parse source"),
					errors.CtxPath, path,
				)
			}
			slog.Debug("syntax error", "path", name, "error", se)
			result.Diagnostics = append(result.Diagnostics, analyzer.SyntaxError(se))
			observability.DiagnosticsTotal.WithLabelValues(analyzer.CodeSyntaxError).Inc()
			continue
		}
		parsed = append(parsed, parsedFile{name: name, src: src})
	}

	table := symbol.NewTable()
	an := analyzer.New(m.Project.Name, table, m.Lint.Allow)

	for _, f := range parsed {
		result.Diagnostics = append(result.Diagnostics, an.Analyze(ctx, f.name, f.src)...)
	}
	for _, f := range parsed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Diagnostics = append(result.Diagnostics, an.Check(ctx, f.name, f.src)...)
	}

	collected, err := collectFacts(table)
	if err != nil {
		return nil, err
	}
	result.Facts = collected
	result.Symbols = table.Len()
	result.Duration = time.Since(result.StartedAt)

	span.SetAttributes(
		attribute.Int("diagnostics", len(result.Diagnostics)),
		attribute.Int("facts", len(result.Facts)),
	)
	slog.Debug("check finished",
		"files", len(result.Files),
		"symbols", result.Symbols,
		"facts", len(result.Facts),
		"diagnostics", len(result.Diagnostics),
		"duration", result.Duration,
	)

	a.setLast(result)
	return result, nil
}

// collectFacts flattens the table's assignment history in recording order.
// File and location come from the innermost enclosing frame.
func collectFacts(table *symbol.Table) ([]facts.Fact, error) {
	assigns := table.AllAssigns()
	out := make([]facts.Fact, 0, len(assigns))
	for _, as := range assigns {
		position, err := json.Marshal(as.Position)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "encode assign position")
		}
		fact := facts.Fact{
			Seq:      as.Seq,
			SymbolID: uint64(as.FullPath[0]),
			Target:   table.PathText(as.FullPath),
			Partial:  as.Partial,
			Position: position,
		}
		if frames := as.Position.Frames(); len(frames) > 0 {
			inner := frames[len(frames)-1]
			tok := inner.Anchor()
			fact.Kind = inner.FrameKind()
			fact.File = tok.File
			fact.Line = tok.Line
			fact.Column = tok.Column
		}
		out = append(out, fact)
	}
	return out, nil
}
