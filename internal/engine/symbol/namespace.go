package symbol

import "strings"

// Namespace is the chain of enclosing scopes, outermost first. The first
// element is always the project name.
type Namespace []string

// Child returns a copy of ns extended by name.
func (ns Namespace) Child(name string) Namespace {
	out := make(Namespace, len(ns), len(ns)+1)
	copy(out, ns)
	return append(out, name)
}

// Parent returns ns without its innermost scope.
func (ns Namespace) Parent() (Namespace, bool) {
	if len(ns) == 0 {
		return nil, false
	}
	return ns[:len(ns)-1], true
}

func (ns Namespace) String() string {
	return strings.Join(ns, "::")
}

func (ns Namespace) Clone() Namespace {
	if ns == nil {
		return nil
	}
	out := make(Namespace, len(ns))
	copy(out, ns)
	return out
}
