package syntax

// Point tells a handler whether a node is being entered or left.
type Point int

const (
	Before Point = iota
	After
)

func (p Point) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// Handler reacts to nodes during a walk. Handlers ignore node types they do
// not care about.
type Handler interface {
	Handle(point Point, node Node)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(point Point, node Node)

func (f HandlerFunc) Handle(point Point, node Node) { f(point, node) }

// Walk visits n depth-first in source order. For every node each handler
// sees Before, then the children are walked, then each handler sees After.
func Walk(n Node, handlers ...Handler) {
	w := walker{handlers: handlers}
	w.walk(n)
}

type walker struct {
	handlers []Handler
}

func (w *walker) emit(p Point, n Node) {
	for _, h := range w.handlers {
		h.Handle(p, n)
	}
}

func (w *walker) walk(n Node) {
	if n == nil || isNilNode(n) {
		return
	}
	w.emit(Before, n)
	w.children(n)
	w.emit(After, n)
}

func (w *walker) children(n Node) {
	switch n := n.(type) {
	case *Source:
		w.items(n.Items)
	case *Attribute:
	case *ModuleDecl:
		w.attrs(n.Attrs)
		for _, p := range n.Params {
			w.walk(p)
		}
		for _, p := range n.Ports {
			w.walk(p)
		}
		w.items(n.Items)
	case *InterfaceDecl:
		w.attrs(n.Attrs)
		for _, p := range n.Params {
			w.walk(p)
		}
		w.items(n.Items)
	case *PackageDecl:
		w.attrs(n.Attrs)
		w.items(n.Items)
	case *PortDecl:
		w.walk(n.Type)
	case *TypeExpr:
		w.exprs(n.Width)
		w.exprs(n.Array)
	case *VarDecl:
		w.attrs(n.Attrs)
		w.walk(n.Type)
	case *LetDecl:
		w.attrs(n.Attrs)
		w.walk(n.Type)
		w.walk(n.Value)
	case *ParamDecl:
		w.attrs(n.Attrs)
		w.walk(n.Type)
		w.walk(n.Value)
	case *AlwaysFfDecl:
		w.attrs(n.Attrs)
		w.walk(n.Clock)
		w.walk(n.Reset)
		w.stmts(n.Body)
	case *AlwaysCombDecl:
		w.attrs(n.Attrs)
		w.stmts(n.Body)
	case *AssignDecl:
		w.attrs(n.Attrs)
		w.walk(n.Target)
		w.walk(n.Value)
	case *InstDecl:
		w.attrs(n.Attrs)
		for _, c := range n.Connections {
			w.walk(c)
		}
	case *PortConnection:
		w.walk(n.Value)
	case *FunctionDecl:
		w.attrs(n.Attrs)
		for _, p := range n.Ports {
			w.walk(p)
		}
		w.walk(n.Return)
		for _, v := range n.Vars {
			w.walk(v)
		}
		w.stmts(n.Body)
	case *StructDecl:
		w.attrs(n.Attrs)
		for _, m := range n.Members {
			w.walk(m)
		}
	case *StructMember:
		w.walk(n.Type)
	case *ModportDecl:
		w.attrs(n.Attrs)
		for _, m := range n.Members {
			w.walk(m)
		}
	case *ModportItem:
	case *IfDecl:
		w.attrs(n.Attrs)
		w.walk(n.Cond)
		w.items(n.Items)
		for _, e := range n.ElseIfs {
			w.walk(e)
		}
		w.walk(n.Else)
	case *IfDeclElseIf:
		w.walk(n.Else)
		w.walk(n.Cond)
		w.items(n.Items)
	case *IfDeclElse:
		w.walk(n.Else)
		w.items(n.Items)
	case *ForDecl:
		w.attrs(n.Attrs)
		w.walk(n.Range)
		w.items(n.Items)
	case *Range:
		w.walk(n.Start)
		w.walk(n.End)
	case *Else:
	case *LetStatement:
		w.walk(n.Type)
		w.walk(n.Value)
	case *IdentifierStatement:
		w.walk(n.Target)
		if n.Assignment != nil {
			w.walk(n.Assignment.Value)
		}
		if n.Call != nil {
			w.exprs(n.Call.Args)
		}
	case *IfStatement:
		w.walk(n.Cond)
		w.stmts(n.Body)
		for _, e := range n.ElseIfs {
			w.walk(e)
		}
		w.walk(n.Else)
	case *IfResetStatement:
		w.stmts(n.Body)
		for _, e := range n.ElseIfs {
			w.walk(e)
		}
		w.walk(n.Else)
	case *ElseIf:
		w.walk(n.Else)
		w.walk(n.Cond)
		w.stmts(n.Body)
	case *ElseClause:
		w.walk(n.Else)
		w.stmts(n.Body)
	case *CaseStatement:
		w.walk(n.Subject)
		for _, it := range n.Items {
			w.walk(it)
		}
	case *CaseItem:
		w.exprs(n.Conds)
		w.stmts(n.Body)
	case *ForStatement:
		w.walk(n.Type)
		w.walk(n.Range)
		if n.Step != nil {
			w.walk(n.Step.Value)
		}
		w.stmts(n.Body)
	case *ReturnStatement:
		w.walk(n.Value)
	case *Identifier:
		for _, s := range n.Selects {
			w.walk(s)
		}
		for _, m := range n.Members {
			for _, s := range m.Selects {
				w.walk(s)
			}
		}
	case *Select:
		w.walk(n.Index)
		w.walk(n.End)
	case *NumberLit, *StringLit:
	case *BinaryExpr:
		w.walk(n.Left)
		w.walk(n.Right)
	case *UnaryExpr:
		w.walk(n.Operand)
	case *ParenExpr:
		w.walk(n.Inner)
	case *ConcatExpr:
		w.exprs(n.Elems)
	case *CallExpr:
		w.walk(n.Callee)
		w.exprs(n.Args)
	case *IfExpression:
		w.walk(n.Cond)
		w.walk(n.Then)
		for _, e := range n.ElseIfs {
			w.walk(e)
		}
		w.walk(n.Else)
		w.walk(n.ElseValue)
	case *IfExpressionElseIf:
		w.walk(n.Else)
		w.walk(n.Cond)
		w.walk(n.Value)
	default:
		panic("syntax: walk of unknown node type")
	}
}

func (w *walker) attrs(list []*Attribute) {
	for _, a := range list {
		w.walk(a)
	}
}

func (w *walker) items(list []Item) {
	for _, it := range list {
		w.walk(it)
	}
}

func (w *walker) stmts(list []Stmt) {
	for _, s := range list {
		w.walk(s)
	}
}

func (w *walker) exprs(list []Expr) {
	for _, e := range list {
		w.walk(e)
	}
}

// isNilNode catches typed nil pointers stored in an interface.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *Identifier:
		return n == nil
	case *TypeExpr:
		return n == nil
	case *Else:
		return n == nil
	case *ElseClause:
		return n == nil
	case *IfDeclElse:
		return n == nil
	case *Range:
		return n == nil
	case *Source:
		return n == nil
	}
	return false
}
