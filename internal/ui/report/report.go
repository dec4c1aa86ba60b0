package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"verylcheck/internal/core/errors"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Diagnostic is one reported problem at a source location.
type Diagnostic struct {
	Code       string `json:"code"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Identifier string `json:"identifier,omitempty"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
}

// Report summarises one check of a project.
type Report struct {
	RunID       string        `json:"run_id,omitempty"`
	Project     string        `json:"project"`
	Root        string        `json:"-"`
	Files       int           `json:"files"`
	Symbols     int           `json:"symbols"`
	Facts       int           `json:"facts"`
	Duration    time.Duration `json:"duration_ns"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

func (r Report) Errors() int {
	return r.count("error")
}

func (r Report) Warnings() int {
	return r.count("warning")
}

func (r Report) count(severity string) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by file, line, column and code.
func (r *Report) Sort() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
}

// Render writes r to w in the given format.
func Render(w io.Writer, format string, r Report) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		_, err := io.WriteString(w, RenderText(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if r.Diagnostics == nil {
			r.Diagnostics = []Diagnostic{}
		}
		return enc.Encode(r)
	case FormatSARIF:
		data, err := GenerateSARIF(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return errors.AddContext(
			errors.Newf(errors.CodeNotSupported, "unknown report format %q", format),
			errors.CtxField, "format",
		)
	}
}
