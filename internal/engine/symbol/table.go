package symbol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"verylcheck/internal/engine/syntax"
)

// ExternalScope prefixes references into SystemVerilog units.
const ExternalScope = "$sv"

var ErrDuplicate = errors.New("duplicated identifier")

// LookupError reports a reference that does not resolve to a declaration.
type LookupError struct {
	Name      string
	Namespace Namespace
	Reason    string
}

func (e *LookupError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot resolve %q in %s: %s", e.Name, e.Namespace, e.Reason)
	}
	return fmt.Sprintf("cannot resolve %q in %s", e.Name, e.Namespace)
}

// Table stores declarations and the assignment facts recorded against them.
// It is safe for concurrent use; facts keep the order of AddAssign calls.
type Table struct {
	mu sync.RWMutex

	nextID  ID
	seq     uint64
	symbols map[ID]*Symbol
	scopes  map[string]map[string]ID // namespace -> name -> id
}

func NewTable() *Table {
	return &Table{
		symbols: make(map[ID]*Symbol),
		scopes:  make(map[string]map[string]ID),
	}
}

// Insert declares name in ns. A second declaration of the same name in the
// same namespace fails with ErrDuplicate.
func (t *Table) Insert(name syntax.Token, ns Namespace, kind Kind) (*Symbol, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := ns.String()
	scope, ok := t.scopes[key]
	if !ok {
		scope = make(map[string]ID)
		t.scopes[key] = scope
	}
	if prev, exists := scope[name.Text]; exists {
		return nil, fmt.Errorf("%w: %s in %s (first declared at %s)",
			ErrDuplicate, name.Text, key, t.symbols[prev].Token.Location())
	}

	t.nextID++
	sym := &Symbol{
		ID:        t.nextID,
		Name:      name.Text,
		Token:     name,
		Namespace: ns.Clone(),
		Kind:      kind,
	}
	t.symbols[sym.ID] = sym
	scope[name.Text] = sym.ID
	return sym.snapshot(), nil
}

// Get returns a copy of the symbol without its assignment history.
func (t *Table) Get(id ID) (*Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.symbols[id]
	if !ok {
		return nil, false
	}
	return sym.snapshot(), true
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}

// Resolve looks ref up from namespace ns. The root name is searched from the
// innermost scope outwards; `::` scopes descend into packages, modules and
// interfaces; members descend through struct, union and modport types.
func (t *Table) Resolve(ref Reference, ns Namespace) (*Resolved, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolve(ref, ns, 0)
}

// Type aliases could in principle recurse; the depth bound keeps a broken
// table from looping.
const maxResolveDepth = 32

func (t *Table) resolve(ref Reference, ns Namespace, depth int) (*Resolved, error) {
	if ref.Empty() {
		return nil, &LookupError{Namespace: ns, Reason: "empty reference"}
	}
	if len(ref.Scope) > 0 && ref.Scope[0] == ExternalScope {
		return &Resolved{External: true}, nil
	}
	if depth > maxResolveDepth {
		return nil, &LookupError{Name: ref.String(), Namespace: ns, Reason: "type nesting too deep"}
	}

	names := append(append([]string(nil), ref.Scope...), ref.Name)
	sym, ok := t.lookupChain(names[0], ns)
	if !ok {
		return nil, &LookupError{Name: names[0], Namespace: ns}
	}
	for _, name := range names[1:] {
		next, ok := t.lookupIn(sym.Inner(), name)
		if !ok {
			return nil, &LookupError{Name: name, Namespace: sym.Inner()}
		}
		sym = next
	}

	path := []ID{sym.ID}
	for _, member := range ref.Members {
		next, err := t.member(sym, member, depth)
		if err != nil {
			return nil, err
		}
		path = append(path, next.ID)
		sym = next
	}
	return &Resolved{FullPath: path, Found: sym.snapshot()}, nil
}

func (t *Table) member(sym *Symbol, name string, depth int) (*Symbol, error) {
	typ := typePath(sym.Kind)
	if len(typ) == 0 {
		return nil, &LookupError{Name: name, Namespace: sym.Inner(),
			Reason: fmt.Sprintf("%s %s has no members", sym.Kind.KindName(), sym.Name)}
	}
	resolved, err := t.resolve(ScopedReference(typ), sym.Namespace, depth+1)
	if err != nil {
		return nil, &LookupError{Name: name, Namespace: sym.Inner(),
			Reason: fmt.Sprintf("type %s of %s is not a user type", strings.Join(typ, "::"), sym.Name)}
	}
	if resolved.External {
		return nil, &LookupError{Name: name, Namespace: sym.Inner(), Reason: "member of external type"}
	}
	owner := t.symbols[resolved.Found.ID]
	switch owner.Kind.(type) {
	case Struct, Union, Modport:
		next, ok := t.lookupIn(owner.Inner(), name)
		if !ok {
			return nil, &LookupError{Name: name, Namespace: owner.Inner()}
		}
		return next, nil
	}
	return nil, &LookupError{Name: name, Namespace: owner.Inner(),
		Reason: fmt.Sprintf("%s %s has no members", owner.Kind.KindName(), owner.Name)}
}

func (t *Table) lookupChain(name string, ns Namespace) (*Symbol, bool) {
	for i := len(ns); i >= 0; i-- {
		if sym, ok := t.lookupIn(ns[:i], name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (t *Table) lookupIn(ns Namespace, name string) (*Symbol, bool) {
	scope, ok := t.scopes[ns.String()]
	if !ok {
		return nil, false
	}
	id, ok := scope[name]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// AddAssign appends a fact to the history of the path's root symbol. The
// position is copied, so later changes to the caller's stack do not leak
// into recorded facts.
func (t *Table) AddAssign(fullPath []ID, position *AssignPosition, partial bool) {
	if len(fullPath) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	root, ok := t.symbols[fullPath[0]]
	if !ok {
		return
	}
	t.seq++
	root.Assigns = append(root.Assigns, Assign{
		Seq:      t.seq,
		FullPath: append([]ID(nil), fullPath...),
		Position: position.Clone(),
		Partial:  partial,
	})
}

// Assigns returns a copy of the facts recorded against id.
func (t *Table) Assigns(id ID) []Assign {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.symbols[id]
	if !ok || len(sym.Assigns) == 0 {
		return nil
	}
	out := make([]Assign, len(sym.Assigns))
	for i, a := range sym.Assigns {
		out[i] = a.clone()
	}
	return out
}

// AllAssigns returns every recorded fact in recording order.
func (t *Table) AllAssigns() []Assign {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Assign
	for _, sym := range t.symbols {
		for _, a := range sym.Assigns {
			out = append(out, a.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// PathText renders a full path as `root.member.member`.
func (t *Table) PathText(fullPath []ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	parts := make([]string, 0, len(fullPath))
	for _, id := range fullPath {
		if sym, ok := t.symbols[id]; ok {
			parts = append(parts, sym.Name)
		} else {
			parts = append(parts, fmt.Sprintf("#%d", id))
		}
	}
	return strings.Join(parts, ".")
}

// Symbols returns copies of all symbols ordered by id.
func (t *Table) Symbols() []*Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Symbol, 0, len(t.symbols))
	for _, sym := range t.symbols {
		out = append(out, sym.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dump lists every symbol with its kind and fact count, for debugging.
func (t *Table) Dump() string {
	var b strings.Builder
	for _, sym := range t.Symbols() {
		fmt.Fprintf(&b, "%s::%s [%s] assigns=%d\n",
			sym.Namespace, sym.Name, sym.Kind.KindName(), len(t.Assigns(sym.ID)))
	}
	return b.String()
}

func (s *Symbol) snapshot() *Symbol {
	out := *s
	out.Namespace = s.Namespace.Clone()
	out.Assigns = nil
	return &out
}
