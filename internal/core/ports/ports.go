package ports

import (
	"context"
	"verylcheck/internal/data/facts"
)

// FactStore abstracts persistence of analysis runs and their assignment
// facts.
type FactStore interface {
	SaveRun(ctx context.Context, run facts.Run, items []facts.Fact) (facts.Run, error)
	LoadFacts(ctx context.Context, runID string) ([]facts.Fact, error)
	LatestRun(ctx context.Context, project string) (facts.Run, error)
	Close() error
}

// SourceReader abstracts reading source text from disk.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}
