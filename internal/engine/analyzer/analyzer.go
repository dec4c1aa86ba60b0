package analyzer

import (
	"context"
	"time"

	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"
	"verylcheck/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Analyzer runs the analysis passes of one project against a shared symbol
// table. Pass 1 must have run over every file before pass 2 runs over any.
type Analyzer struct {
	project string
	table   *symbol.Table
	allow   []string
}

func New(project string, table *symbol.Table, allow []string) *Analyzer {
	return &Analyzer{
		project: project,
		table:   table,
		allow:   append([]string(nil), allow...),
	}
}

func (a *Analyzer) Table() *symbol.Table {
	return a.table
}

// Analyze is pass 1: it declares the symbols of src.
func (a *Analyzer) Analyze(ctx context.Context, file string, src *syntax.Source) []AnalyzerError {
	_, span := observability.Tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("file", file),
	))
	defer span.End()
	start := time.Now()

	pass := NewCreateSymbolTable(a.project, a.table)
	syntax.Walk(src, pass)

	observability.PassDuration.WithLabelValues("create_symbol_table").Observe(time.Since(start).Seconds())
	observability.SymbolsTotal.Set(float64(a.table.Len()))
	a.count(pass.Errors)
	span.SetAttributes(attribute.Int("diagnostics", len(pass.Errors)))
	return pass.Errors
}

// Check is pass 2: it records assignment facts and reports illegal writes.
func (a *Analyzer) Check(ctx context.Context, file string, src *syntax.Source) []AnalyzerError {
	_, span := observability.Tracer.Start(ctx, "analyzer.Check", trace.WithAttributes(
		attribute.String("file", file),
	))
	defer span.End()
	start := time.Now()

	allow := NewAllowTable(a.allow)
	pass := NewCheckAssignment(a.project, a.table, allow)
	syntax.Walk(src, allow, pass)

	observability.PassDuration.WithLabelValues("check_assignment").Observe(time.Since(start).Seconds())
	observability.FilesCheckedTotal.Inc()
	a.count(pass.Errors)
	span.SetAttributes(attribute.Int("diagnostics", len(pass.Errors)))
	return pass.Errors
}

func (a *Analyzer) count(errs []AnalyzerError) {
	for _, e := range errs {
		observability.DiagnosticsTotal.WithLabelValues(e.Code).Inc()
	}
}
