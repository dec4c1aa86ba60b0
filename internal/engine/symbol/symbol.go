package symbol

import (
	"verylcheck/internal/engine/syntax"
)

// ID identifies one declaration. IDs are never reused within a Table.
type ID uint64

type Symbol struct {
	ID        ID
	Name      string
	Token     syntax.Token
	Namespace Namespace // where the symbol is declared
	Kind      Kind
	Assigns   []Assign
}

// Inner is the namespace opened by the symbol: members of a module, package,
// interface, modport, struct or function live there.
func (s *Symbol) Inner() Namespace {
	return s.Namespace.Child(s.Name)
}

// Assign is one recorded write. FullPath runs from the written root to the
// written leaf; Position is a snapshot taken when the write was recorded.
type Assign struct {
	Seq      uint64
	FullPath []ID
	Position AssignPosition
	Partial  bool
}

func (a Assign) clone() Assign {
	out := a
	out.FullPath = append([]ID(nil), a.FullPath...)
	out.Position = a.Position.Clone()
	return out
}

// Reference is an identifier to resolve: `Scope::...::Name.Members...`.
type Reference struct {
	Scope   []string
	Name    string
	Members []string
}

// Empty reports whether the reference names nothing.
func (r Reference) Empty() bool {
	return r.Name == ""
}

func (r Reference) String() string {
	text := ""
	for _, s := range r.Scope {
		text += s + "::"
	}
	text += r.Name
	for _, m := range r.Members {
		text += "." + m
	}
	return text
}

// ReferenceOf builds a Reference from a parsed identifier. Selects are not
// part of the reference.
func ReferenceOf(id *syntax.Identifier) Reference {
	if id == nil {
		return Reference{}
	}
	return Reference{
		Scope:   id.ScopeNames(),
		Name:    id.Name.Text,
		Members: id.MemberNames(),
	}
}

// ScopedReference builds a reference from a `::` separated path such as a
// type name.
func ScopedReference(path []string) Reference {
	if len(path) == 0 {
		return Reference{}
	}
	return Reference{
		Scope: append([]string(nil), path[:len(path)-1]...),
		Name:  path[len(path)-1],
	}
}

// Resolved is the outcome of a successful lookup. External references point
// into units this tool cannot inspect and carry no path.
type Resolved struct {
	FullPath []ID
	Found    *Symbol
	External bool
}
