package analyzer

import (
	"fmt"

	"verylcheck/internal/engine/syntax"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	CodeInvalidAssignment    = "invalid_assignment"
	CodeDuplicatedIdentifier = "duplicated_identifier"
	CodeSyntaxError          = "syntax_error"
)

// AnalyzerError is a diagnostic against one source location. Diagnostics are
// collected; they never stop a walk.
type AnalyzerError struct {
	Code       string       `json:"code"`
	Severity   Severity     `json:"severity"`
	Message    string       `json:"message"`
	Kind       string       `json:"kind,omitempty"`
	Identifier string       `json:"identifier"`
	Token      syntax.Token `json:"-"`
}

func (e AnalyzerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Token.Location(), e.Message)
}

// InvalidAssignment reports a write to a target of the given kind that may
// not be written.
func InvalidAssignment(kind, identifier string, tok syntax.Token) AnalyzerError {
	return AnalyzerError{
		Code:       CodeInvalidAssignment,
		Severity:   SeverityError,
		Message:    fmt.Sprintf("%s can't be assigned because it is %s", identifier, kind),
		Kind:       kind,
		Identifier: identifier,
		Token:      tok,
	}
}

func DuplicatedIdentifier(identifier string, tok syntax.Token) AnalyzerError {
	return AnalyzerError{
		Code:       CodeDuplicatedIdentifier,
		Severity:   SeverityError,
		Message:    fmt.Sprintf("%s is duplicated", identifier),
		Identifier: identifier,
		Token:      tok,
	}
}

// SyntaxError turns a parse failure into a diagnostic so that it is reported
// alongside the analyzer's own.
func SyntaxError(err *syntax.SyntaxError) AnalyzerError {
	return AnalyzerError{
		Code:     CodeSyntaxError,
		Severity: SeverityError,
		Message:  err.Message,
		Token:    syntax.Token{File: err.File, Line: err.Line, Column: err.Column},
	}
}
