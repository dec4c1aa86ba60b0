package symbol

import (
	"encoding/json"

	"verylcheck/internal/engine/syntax"
)

type BranchType int

const (
	BranchIf BranchType = iota
	BranchIfReset
	BranchCase
)

func (t BranchType) String() string {
	switch t {
	case BranchIfReset:
		return "if_reset"
	case BranchCase:
		return "case"
	}
	return "if"
}

type BranchItemType int

const (
	ItemIf BranchItemType = iota
	ItemIfReset
	ItemCase
	ItemElse
)

func (t BranchItemType) String() string {
	switch t {
	case ItemIfReset:
		return "if_reset"
	case ItemCase:
		return "case"
	case ItemElse:
		return "else"
	}
	return "if"
}

type DeclarationType int

const (
	DeclLet DeclarationType = iota
	DeclAlwaysFf
	DeclAlwaysComb
	DeclAssign
	DeclInst
	DeclFunction
)

func (t DeclarationType) String() string {
	switch t {
	case DeclAlwaysFf:
		return "always_ff"
	case DeclAlwaysComb:
		return "always_comb"
	case DeclAssign:
		return "assign"
	case DeclInst:
		return "inst"
	case DeclFunction:
		return "function"
	}
	return "let"
}

// Frame is one level of an AssignPosition.
type Frame interface {
	frame()
	FrameKind() string
	Anchor() syntax.Token
}

// Statement is a single assignment-bearing statement.
type Statement struct {
	Token      syntax.Token
	Resettable bool
}

// StatementBranch is an enclosing if, if_reset or case statement.
type StatementBranch struct {
	Token             syntax.Token
	Branches          int
	HasDefault        bool
	AllowMissingReset bool
	Type              BranchType
}

// StatementBranchItem is one arm of a StatementBranch.
type StatementBranchItem struct {
	Token syntax.Token
	Index int
	Type  BranchItemType
}

type Declaration struct {
	Token syntax.Token
	Type  DeclarationType
}

// DeclarationBranch is a generate-if.
type DeclarationBranch struct {
	Token    syntax.Token
	Branches int
}

type DeclarationBranchItem struct {
	Token syntax.Token
	Index int
}

func (Statement) frame()             {}
func (StatementBranch) frame()       {}
func (StatementBranchItem) frame()   {}
func (Declaration) frame()           {}
func (DeclarationBranch) frame()     {}
func (DeclarationBranchItem) frame() {}

func (Statement) FrameKind() string             { return "statement" }
func (StatementBranch) FrameKind() string       { return "statement_branch" }
func (StatementBranchItem) FrameKind() string   { return "statement_branch_item" }
func (Declaration) FrameKind() string           { return "declaration" }
func (DeclarationBranch) FrameKind() string     { return "declaration_branch" }
func (DeclarationBranchItem) FrameKind() string { return "declaration_branch_item" }

func (f Statement) Anchor() syntax.Token             { return f.Token }
func (f StatementBranch) Anchor() syntax.Token       { return f.Token }
func (f StatementBranchItem) Anchor() syntax.Token   { return f.Token }
func (f Declaration) Anchor() syntax.Token           { return f.Token }
func (f DeclarationBranch) Anchor() syntax.Token     { return f.Token }
func (f DeclarationBranchItem) Anchor() syntax.Token { return f.Token }

// AssignPosition is the stack of frames enclosing an assignment, outermost
// first.
type AssignPosition struct {
	frames []Frame
}

func (p *AssignPosition) Push(f Frame) {
	p.frames = append(p.frames, f)
}

// Pop removes the innermost frame. Popping an empty stack means before/after
// hooks were not paired and panics.
func (p *AssignPosition) Pop() Frame {
	if len(p.frames) == 0 {
		panic("symbol: pop of empty assign position")
	}
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	return f
}

func (p *AssignPosition) Top() Frame {
	if len(p.frames) == 0 {
		panic("symbol: top of empty assign position")
	}
	return p.frames[len(p.frames)-1]
}

func (p *AssignPosition) ReplaceTop(f Frame) {
	if len(p.frames) == 0 {
		panic("symbol: replace top of empty assign position")
	}
	p.frames[len(p.frames)-1] = f
}

func (p *AssignPosition) Len() int {
	return len(p.frames)
}

// Frames returns a copy of the frames, outermost first.
func (p *AssignPosition) Frames() []Frame {
	out := make([]Frame, len(p.frames))
	copy(out, p.frames)
	return out
}

// Clone returns an independent snapshot. Frames are values, so copying the
// slice is enough.
func (p *AssignPosition) Clone() AssignPosition {
	return AssignPosition{frames: p.Frames()}
}

type tokenJSON struct {
	Text   string `json:"text"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type frameJSON struct {
	Kind              string    `json:"kind"`
	Token             tokenJSON `json:"token"`
	Resettable        *bool     `json:"resettable,omitempty"`
	Branches          *int      `json:"branches,omitempty"`
	HasDefault        *bool     `json:"has_default,omitempty"`
	AllowMissingReset *bool     `json:"allow_missing_reset,omitempty"`
	Index             *int      `json:"index,omitempty"`
	Type              string    `json:"type,omitempty"`
}

func encodeFrame(f Frame) frameJSON {
	tok := f.Anchor()
	out := frameJSON{
		Kind:  f.FrameKind(),
		Token: tokenJSON{Text: tok.Text, File: tok.File, Line: tok.Line, Column: tok.Column},
	}
	switch f := f.(type) {
	case Statement:
		out.Resettable = &f.Resettable
	case StatementBranch:
		out.Branches = &f.Branches
		out.HasDefault = &f.HasDefault
		out.AllowMissingReset = &f.AllowMissingReset
		out.Type = f.Type.String()
	case StatementBranchItem:
		out.Index = &f.Index
		out.Type = f.Type.String()
	case Declaration:
		out.Type = f.Type.String()
	case DeclarationBranch:
		out.Branches = &f.Branches
	case DeclarationBranchItem:
		out.Index = &f.Index
	}
	return out
}

func (p AssignPosition) MarshalJSON() ([]byte, error) {
	out := make([]frameJSON, len(p.frames))
	for i, f := range p.frames {
		out[i] = encodeFrame(f)
	}
	return json.Marshal(out)
}
