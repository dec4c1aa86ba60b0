package analyzer

import (
	"errors"

	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"
)

// SymbolDeclarer is the write side of the symbol table used by the first
// pass.
type SymbolDeclarer interface {
	Insert(name syntax.Token, ns symbol.Namespace, kind symbol.Kind) (*symbol.Symbol, error)
}

// CreateSymbolTable is the first pass: it declares every named entity of a
// source file in its namespace.
type CreateSymbolTable struct {
	Errors []AnalyzerError

	table SymbolDeclarer
	scope *scopeTracker
}

func NewCreateSymbolTable(project string, table SymbolDeclarer) *CreateSymbolTable {
	return &CreateSymbolTable{
		table: table,
		scope: newScopeTracker(project),
	}
}

func (c *CreateSymbolTable) Handle(point syntax.Point, node syntax.Node) {
	if point == syntax.After {
		c.scope.after(node)
		return
	}

	ns := c.scope.namespace()
	switch n := node.(type) {
	case *syntax.ModuleDecl:
		c.insert(n.Name, ns, symbol.Module{Ports: portInfos(n.Ports)})
	case *syntax.InterfaceDecl:
		c.insert(n.Name, ns, symbol.Interface{})
	case *syntax.PackageDecl:
		c.insert(n.Name, ns, symbol.Package{})
	case *syntax.PortDecl:
		dir, err := symbol.DirectionFromToken(n.Direction)
		if err == nil {
			c.insert(n.Name, ns, symbol.Port{Direction: dir, Type: n.Type.Names()})
		}
	case *syntax.ParamDecl:
		c.insert(n.Name, ns, symbol.Parameter{Type: n.Type.Names()})
	case *syntax.VarDecl:
		c.insert(n.Name, ns, symbol.Variable{Type: n.Type.Names()})
	case *syntax.LetDecl:
		c.insert(n.Name, ns, symbol.Variable{Type: n.Type.Names()})
	case *syntax.LetStatement:
		c.insert(n.Name, ns, symbol.Variable{Type: n.Type.Names()})
	case *syntax.InstDecl:
		c.insert(n.Name, ns, symbol.Instance{TypeName: n.TypeNames(), Connects: connects(n)})
	case *syntax.FunctionDecl:
		c.insert(n.Name, ns, symbol.Function{Ports: portInfos(n.Ports)})
	case *syntax.StructDecl:
		c.declareStruct(n, ns)
	case *syntax.ModportDecl:
		if sym := c.insert(n.Name, ns, symbol.Modport{}); sym != nil {
			for _, m := range n.Members {
				dir, err := symbol.DirectionFromToken(m.Direction)
				if err == nil {
					c.insert(m.Name, sym.Inner(), symbol.ModportMember{Direction: dir})
				}
			}
		}
	case *syntax.IfDecl:
		c.label(n.Label, ns)
	case *syntax.IfDeclElseIf:
		c.label(n.Label, c.scope.parent())
	case *syntax.IfDeclElse:
		c.label(n.Label, c.scope.parent())
	case *syntax.ForDecl:
		c.label(n.Label, ns)
		name, _ := scopeName(n)
		c.insert(n.Index, ns.Child(name), symbol.Genvar{})
	case *syntax.ForStatement:
		name, _ := scopeName(n)
		c.insert(n.Index, ns.Child(name), symbol.Variable{Type: n.Type.Names()})
	}

	c.scope.before(node)
}

func (c *CreateSymbolTable) insert(name syntax.Token, ns symbol.Namespace, kind symbol.Kind) *symbol.Symbol {
	sym, err := c.table.Insert(name, ns, kind)
	if err != nil {
		if errors.Is(err, symbol.ErrDuplicate) {
			c.Errors = append(c.Errors, DuplicatedIdentifier(name.Text, name))
		}
		return nil
	}
	return sym
}

func (c *CreateSymbolTable) label(label *syntax.Token, ns symbol.Namespace) {
	if label != nil {
		c.insert(*label, ns, symbol.Block{})
	}
}

func (c *CreateSymbolTable) declareStruct(n *syntax.StructDecl, ns symbol.Namespace) {
	names := make([]string, len(n.Members))
	for i, m := range n.Members {
		names[i] = m.Name.Text
	}

	var sym *symbol.Symbol
	if n.IsUnion() {
		sym = c.insert(n.Name, ns, symbol.Union{Members: names})
	} else {
		sym = c.insert(n.Name, ns, symbol.Struct{Members: names})
	}
	if sym == nil {
		return
	}
	for _, m := range n.Members {
		if n.IsUnion() {
			c.insert(m.Name, sym.Inner(), symbol.UnionMember{Type: m.Type.Names()})
		} else {
			c.insert(m.Name, sym.Inner(), symbol.StructMember{Type: m.Type.Names()})
		}
	}
}

func portInfos(ports []*syntax.PortDecl) []symbol.PortInfo {
	out := make([]symbol.PortInfo, 0, len(ports))
	for _, p := range ports {
		dir, err := symbol.DirectionFromToken(p.Direction)
		if err != nil {
			continue
		}
		out = append(out, symbol.PortInfo{Name: p.Name.Text, Direction: dir})
	}
	return out
}

// connects maps each port connection to the signal it names. The shorthand
// `port` connects to a signal of the same name; expressions connect to
// nothing.
func connects(n *syntax.InstDecl) []symbol.Connect {
	out := make([]symbol.Connect, 0, len(n.Connections))
	for _, conn := range n.Connections {
		c := symbol.Connect{Port: conn.Name.Text}
		switch v := conn.Value.(type) {
		case nil:
			c.Target = symbol.Reference{Name: conn.Name.Text}
		case *syntax.Identifier:
			c.Target = symbol.ReferenceOf(v)
		}
		out = append(out, c)
	}
	return out
}
