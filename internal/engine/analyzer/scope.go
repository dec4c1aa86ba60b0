package analyzer

import (
	"fmt"

	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"
)

// scopeTracker follows the namespace of the node being walked. Both passes
// drive one, so declarations and lookups agree on namespaces.
type scopeTracker struct {
	ns symbol.Namespace
}

func newScopeTracker(project string) *scopeTracker {
	return &scopeTracker{ns: symbol.Namespace{project}}
}

func (s *scopeTracker) namespace() symbol.Namespace {
	return s.ns.Clone()
}

// parent is the namespace enclosing the innermost scope.
func (s *scopeTracker) parent() symbol.Namespace {
	p, _ := s.ns.Parent()
	return p.Clone()
}

// scopeName returns the namespace a node opens. Generate arms without a
// label and for loops get a name derived from their anchor token.
func scopeName(n syntax.Node) (string, bool) {
	switch n := n.(type) {
	case *syntax.ModuleDecl:
		return n.Name.Text, true
	case *syntax.InterfaceDecl:
		return n.Name.Text, true
	case *syntax.PackageDecl:
		return n.Name.Text, true
	case *syntax.FunctionDecl:
		return n.Name.Text, true
	case *syntax.IfDecl:
		return blockName(n.Label, n.If), true
	case *syntax.IfDeclElseIf:
		return blockName(n.Label, n.If), true
	case *syntax.IfDeclElse:
		return blockName(n.Label, n.Else.Else), true
	case *syntax.ForDecl:
		return blockName(n.Label, n.For), true
	case *syntax.ForStatement:
		return anonymousName(n.For), true
	}
	return "", false
}

func blockName(label *syntax.Token, anchor syntax.Token) string {
	if label != nil {
		return label.Text
	}
	return anonymousName(anchor)
}

func anonymousName(anchor syntax.Token) string {
	return fmt.Sprintf("%s@%d:%d", anchor.Text, anchor.Line, anchor.Column)
}

func (s *scopeTracker) before(n syntax.Node) {
	name, ok := scopeName(n)
	if !ok {
		return
	}
	switch n.(type) {
	case *syntax.IfDeclElseIf, *syntax.IfDeclElse:
		// arms after the first replace the previous arm's scope; IfDecl pops
		// the last one
		s.ns[len(s.ns)-1] = name
	default:
		s.ns = s.ns.Child(name)
	}
}

func (s *scopeTracker) after(n syntax.Node) {
	if _, ok := scopeName(n); !ok {
		return
	}
	switch n.(type) {
	case *syntax.IfDeclElseIf, *syntax.IfDeclElse:
	default:
		s.ns, _ = s.ns.Parent()
	}
}
