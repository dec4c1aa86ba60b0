package analyzer

import (
	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"
	"verylcheck/internal/shared/observability"
)

// SymbolStore is what the assignment checker needs from the symbol table.
type SymbolStore interface {
	Resolve(ref symbol.Reference, ns symbol.Namespace) (*symbol.Resolved, error)
	Get(id symbol.ID) (*symbol.Symbol, bool)
	AddAssign(fullPath []symbol.ID, position *symbol.AssignPosition, partial bool)
}

// Suppressions reports project or item level allowed diagnostics.
type Suppressions interface {
	Contains(name string) bool
}

const allowMissingReset = "missing_reset_statement"

// CheckAssignment records where every write happens and reports writes to
// targets that may not be written. One instance walks one source file.
type CheckAssignment struct {
	Errors []AnalyzerError

	store SymbolStore
	allow Suppressions
	scope *scopeTracker

	position       symbol.AssignPosition
	inIfExpression int
	branchIndex    int
	savedIndex     []int
}

func NewCheckAssignment(project string, store SymbolStore, allow Suppressions) *CheckAssignment {
	return &CheckAssignment{
		store: store,
		allow: allow,
		scope: newScopeTracker(project),
	}
}

// Depth is the number of frames currently on the position stack.
func (c *CheckAssignment) Depth() int {
	return c.position.Len()
}

func (c *CheckAssignment) Handle(point syntax.Point, node syntax.Node) {
	if point == syntax.Before {
		c.scope.before(node)
	}

	switch n := node.(type) {
	case *syntax.Else:
		if point == syntax.Before {
			c.elseArm(n)
		}
	case *syntax.IfExpression:
		if point == syntax.Before {
			c.inIfExpression++
		} else {
			c.inIfExpression--
		}
	case *syntax.LetStatement:
		if point == syntax.Before {
			c.bind(symbol.Reference{Name: n.Name.Text}, symbol.Statement{Token: n.Equ})
		}
	case *syntax.IdentifierStatement:
		if point == syntax.Before && n.Assignment != nil {
			c.assign(n.Target, symbol.Statement{Token: n.Assignment.Op, Resettable: true})
		}
	case *syntax.IfStatement:
		if point == syntax.Before {
			c.openBranch(symbol.StatementBranch{
				Token:      n.If,
				Branches:   armCount(len(n.ElseIfs), n.Else != nil),
				HasDefault: n.Else != nil,
				Type:       symbol.BranchIf,
			})
			c.position.Push(symbol.StatementBranchItem{Token: n.If, Index: c.nextIndex(), Type: symbol.ItemIf})
		} else {
			c.closeBranch(2)
		}
	case *syntax.IfResetStatement:
		if point == syntax.Before {
			c.openBranch(symbol.StatementBranch{
				Token:             n.IfReset,
				Branches:          armCount(len(n.ElseIfs), n.Else != nil),
				HasDefault:        n.Else != nil,
				AllowMissingReset: c.allow != nil && c.allow.Contains(allowMissingReset),
				Type:              symbol.BranchIfReset,
			})
			c.position.Push(symbol.StatementBranchItem{Token: n.IfReset, Index: c.nextIndex(), Type: symbol.ItemIfReset})
		} else {
			c.closeBranch(2)
		}
	case *syntax.CaseStatement:
		if point == syntax.Before {
			hasDefault := false
			for _, item := range n.Items {
				if item.Default != nil {
					hasDefault = true
				}
			}
			c.openBranch(symbol.StatementBranch{
				Token:      n.Case,
				Branches:   len(n.Items),
				HasDefault: hasDefault,
				Type:       symbol.BranchCase,
			})
		} else {
			c.closeBranch(1)
		}
	case *syntax.CaseItem:
		if point == syntax.Before {
			c.position.Push(symbol.StatementBranchItem{Token: n.Colon, Index: c.nextIndex(), Type: symbol.ItemCase})
		} else {
			c.position.Pop()
		}
	case *syntax.ForStatement:
		if point == syntax.Before {
			c.bind(symbol.Reference{Name: n.Index.Text}, symbol.Statement{Token: n.For})
		}
	case *syntax.LetDecl:
		if point == syntax.Before {
			c.bind(symbol.Reference{Name: n.Name.Text}, symbol.Declaration{Token: n.Let, Type: symbol.DeclLet})
		}
	case *syntax.AlwaysFfDecl:
		c.declaration(point, symbol.Declaration{Token: n.AlwaysFf, Type: symbol.DeclAlwaysFf})
	case *syntax.AlwaysCombDecl:
		c.declaration(point, symbol.Declaration{Token: n.AlwaysComb, Type: symbol.DeclAlwaysComb})
	case *syntax.FunctionDecl:
		c.declaration(point, symbol.Declaration{Token: n.Function, Type: symbol.DeclFunction})
	case *syntax.AssignDecl:
		if point == syntax.Before {
			c.assign(n.Target, symbol.Declaration{Token: n.Assign, Type: symbol.DeclAssign})
		}
	case *syntax.InstDecl:
		if point == syntax.Before {
			c.inst(n)
		}
	case *syntax.IfDecl:
		if point == syntax.Before {
			c.openBranch(symbol.DeclarationBranch{
				Token:    n.If,
				Branches: armCount(len(n.ElseIfs), n.Else != nil),
			})
			c.position.Push(symbol.DeclarationBranchItem{Token: n.If, Index: c.nextIndex()})
		} else {
			c.closeBranch(2)
		}
	case *syntax.ForDecl:
		if point == syntax.Before {
			c.bind(symbol.Reference{Name: n.Index.Text}, symbol.Statement{Token: n.For})
		}
	}

	if point == syntax.After {
		c.scope.after(node)
	}
}

func armCount(elseIfs int, hasElse bool) int {
	n := 1 + elseIfs
	if hasElse {
		n++
	}
	return n
}

// elseArm retags the current branch item for an else or else-if arm. Else
// keywords inside conditional expressions belong to the expression and are
// ignored.
func (c *CheckAssignment) elseArm(n *syntax.Else) {
	if c.inIfExpression > 0 {
		return
	}
	var next symbol.Frame
	if _, ok := c.position.Top().(symbol.StatementBranchItem); ok {
		next = symbol.StatementBranchItem{Token: n.Else, Index: c.nextIndex(), Type: symbol.ItemElse}
	} else {
		next = symbol.DeclarationBranchItem{Token: n.Else, Index: c.nextIndex()}
	}
	c.position.ReplaceTop(next)
}

// openBranch starts a fresh arm numbering; closeBranch restores the numbering
// of the enclosing construct.
func (c *CheckAssignment) openBranch(frame symbol.Frame) {
	c.savedIndex = append(c.savedIndex, c.branchIndex)
	c.branchIndex = 0
	c.position.Push(frame)
}

func (c *CheckAssignment) closeBranch(frames int) {
	for i := 0; i < frames; i++ {
		c.position.Pop()
	}
	last := len(c.savedIndex) - 1
	c.branchIndex = c.savedIndex[last]
	c.savedIndex = c.savedIndex[:last]
}

func (c *CheckAssignment) nextIndex() int {
	i := c.branchIndex
	c.branchIndex++
	return i
}

func (c *CheckAssignment) declaration(point syntax.Point, frame symbol.Declaration) {
	if point == syntax.Before {
		c.position.Push(frame)
	} else {
		c.position.Pop()
	}
}

// bind records a write to a binding introduced by the construct itself: let,
// loop indices. Those are assignable by construction.
func (c *CheckAssignment) bind(ref symbol.Reference, frame symbol.Frame) {
	res, err := c.store.Resolve(ref, c.scope.namespace())
	if err != nil || res.External {
		return
	}
	c.record(res.FullPath, frame, false)
}

// assign checks and records a write to an identifier target.
func (c *CheckAssignment) assign(target *syntax.Identifier, frame symbol.Frame) {
	res, err := c.store.Resolve(symbol.ReferenceOf(target), c.scope.namespace())
	if err != nil || res.External {
		return
	}
	if !canAssignPath(c.store, res.FullPath) {
		c.Errors = append(c.Errors, InvalidAssignment(res.Found.Kind.KindName(), target.Text(), anchorOf(target)))
		return
	}
	c.record(res.FullPath, frame, target.Partial())
}

func (c *CheckAssignment) inst(n *syntax.InstDecl) {
	res, err := c.store.Resolve(symbol.Reference{Name: n.Name.Text}, c.scope.namespace())
	if err != nil || res.External {
		return
	}
	instance, ok := res.Found.Kind.(symbol.Instance)
	if !ok {
		return
	}

	dirs := make(map[string]symbol.Direction)
	unknown := false
	typ, err := c.store.Resolve(symbol.ScopedReference(instance.TypeName), res.Found.Namespace)
	switch {
	case err != nil, typ.External:
		unknown = true
	default:
		switch kind := typ.Found.Kind.(type) {
		case symbol.Module:
			for _, port := range kind.Ports {
				dirs[port.Name] = port.Direction
			}
		case symbol.SystemVerilog:
			unknown = true
		}
	}

	frame := symbol.Declaration{Token: n.Inst, Type: symbol.DeclInst}
	for _, conn := range instance.Connects {
		if conn.Target.Empty() {
			continue
		}
		dir, known := dirs[conn.Port]
		if !unknown && !(known && dir.Writable()) {
			continue
		}
		target, err := c.store.Resolve(conn.Target, res.Found.Namespace)
		if err != nil || target.External {
			continue
		}
		c.record(target.FullPath, frame, false)
	}
}

// record pushes frame for the duration of a single AddAssign call.
func (c *CheckAssignment) record(fullPath []symbol.ID, frame symbol.Frame, partial bool) {
	c.position.Push(frame)
	c.store.AddAssign(fullPath, &c.position, partial)
	c.position.Pop()
	observability.FactsRecordedTotal.WithLabelValues(frame.FrameKind()).Inc()
}

func anchorOf(id *syntax.Identifier) syntax.Token {
	if len(id.Scope) > 0 {
		return id.Scope[0]
	}
	return id.Name
}
