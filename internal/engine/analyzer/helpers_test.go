package analyzer

import (
	"context"
	"fmt"
	"testing"

	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"

	"github.com/stretchr/testify/require"
)

const testProject = "prj"

// analyze runs both passes over sources the way the app does: pass 1 over
// every file, then pass 2 over every file.
func analyze(t *testing.T, allow []string, sources ...string) (*symbol.Table, []AnalyzerError) {
	t.Helper()
	table := symbol.NewTable()
	a := New(testProject, table, allow)
	ctx := context.Background()

	parsed := make([]*syntax.Source, len(sources))
	for i, text := range sources {
		src, err := syntax.Parse(fmt.Sprintf("f%d.veryl", i), text)
		require.NoError(t, err)
		parsed[i] = src
	}

	var errs []AnalyzerError
	for _, src := range parsed {
		errs = append(errs, a.Analyze(ctx, src.File, src)...)
	}
	for _, src := range parsed {
		errs = append(errs, a.Check(ctx, src.File, src)...)
	}
	return table, errs
}

func factsOf(t *testing.T, table *symbol.Table, ns symbol.Namespace, name string) []symbol.Assign {
	t.Helper()
	res, err := table.Resolve(symbol.Reference{Name: name}, ns)
	require.NoError(t, err, "resolve %s in %s", name, ns)
	return table.Assigns(res.FullPath[0])
}

// describe renders a position compactly so tests can compare whole stacks.
func describe(pos symbol.AssignPosition) []string {
	var out []string
	for _, f := range pos.Frames() {
		switch f := f.(type) {
		case symbol.Statement:
			out = append(out, fmt.Sprintf("stmt %s resettable=%t", f.Token.Text, f.Resettable))
		case symbol.StatementBranch:
			out = append(out, fmt.Sprintf("branch %s n=%d default=%t allow=%t", f.Type, f.Branches, f.HasDefault, f.AllowMissingReset))
		case symbol.StatementBranchItem:
			out = append(out, fmt.Sprintf("item %s #%d", f.Type, f.Index))
		case symbol.Declaration:
			out = append(out, fmt.Sprintf("decl %s", f.Type))
		case symbol.DeclarationBranch:
			out = append(out, fmt.Sprintf("decl branch n=%d", f.Branches))
		case symbol.DeclarationBranchItem:
			out = append(out, fmt.Sprintf("decl item #%d", f.Index))
		}
	}
	return out
}

func partials(assigns []symbol.Assign) []bool {
	out := make([]bool, len(assigns))
	for i, a := range assigns {
		out[i] = a.Partial
	}
	return out
}

func codes(errs []AnalyzerError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}
