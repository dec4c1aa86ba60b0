package facts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// ErrNoRuns is returned by LatestRun when the project has no stored run.
var ErrNoRuns = errors.New("no analysis runs recorded")

// ErrRunExists is returned by SaveRun when the run ID is already stored.
var ErrRunExists = errors.New("analysis run already recorded")

// Run is one invocation of the checker over a project.
type Run struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	StartedAt   time.Time `json:"started_at"`
	Files       int       `json:"files"`
	Diagnostics int       `json:"diagnostics"`
	Facts       int       `json:"facts"`
}

// Fact is a persisted assignment fact. Position holds the JSON encoding of
// the frame stack at the time of the write.
type Fact struct {
	Seq      uint64          `json:"seq"`
	SymbolID uint64          `json:"symbol_id"`
	Target   string          `json:"target"`
	Partial  bool            `json:"partial"`
	Kind     string          `json:"position_kind"`
	File     string          `json:"file"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Position json.RawMessage `json:"position"`
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("facts path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("facts path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create facts directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite facts %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite facts %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores the run and its facts in a single transaction. A missing
// run ID is generated and a zero StartedAt is set to now; the stored run is
// returned.
func (s *Store) SaveRun(ctx context.Context, run Run, facts []Fact) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Project = strings.TrimSpace(run.Project)
	if run.Project == "" {
		run.Project = "default"
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.Facts = len(facts)

	err := s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := insertRun(ctx, tx, run, facts); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run, facts []Fact) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, run.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("run %s: %w", run.ID, ErrRunExists)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, project, started_at_utc, file_count, diagnostic_count, fact_count)
VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Project,
		run.StartedAt.Format(time.RFC3339Nano),
		run.Files,
		run.Diagnostics,
		run.Facts,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO facts (
  run_id, seq, symbol_id, target, partial, position_kind, position, file_path, line_number, column_number
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare fact insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range facts {
		position := string(f.Position)
		if position == "" {
			position = "[]"
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			int64(f.Seq),
			int64(f.SymbolID),
			f.Target,
			f.Partial,
			f.Kind,
			position,
			f.File,
			f.Line,
			f.Column,
		); err != nil {
			return fmt.Errorf("insert fact %d: %w", f.Seq, err)
		}
	}
	return nil
}

// LoadFacts returns the facts of a run ordered by sequence number.
func (s *Store) LoadFacts(ctx context.Context, runID string) ([]Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load facts", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT seq, symbol_id, target, partial, position_kind, position, file_path, line_number, column_number
FROM facts
WHERE run_id = ?
ORDER BY seq ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Fact, 0)
	for rows.Next() {
		var (
			f        Fact
			seq      int64
			symbolID int64
			position string
		)
		if err := rows.Scan(&seq, &symbolID, &f.Target, &f.Partial, &f.Kind, &position, &f.File, &f.Line, &f.Column); err != nil {
			return nil, fmt.Errorf("scan fact row: %w", err)
		}
		f.Seq = uint64(seq)
		f.SymbolID = uint64(symbolID)
		f.Position = json.RawMessage(position)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fact rows: %w", err)
	}
	return out, nil
}

// LatestRun returns the most recently started run of project, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context, project string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project = strings.TrimSpace(project)
	if project == "" {
		project = "default"
	}

	var (
		run     Run
		started string
	)
	err := s.withRetry("load latest run", func() error {
		return s.db.QueryRowContext(ctx, `
SELECT id, project, started_at_utc, file_count, diagnostic_count, fact_count
FROM runs
WHERE project = ?
ORDER BY started_at_utc DESC
LIMIT 1`, project).Scan(&run.ID, &run.Project, &started, &run.Files, &run.Diagnostics, &run.Facts)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", started, err)
	}
	run.StartedAt = ts.UTC()
	return run, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
