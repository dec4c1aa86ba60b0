package syntax

// Node is any element of the syntax tree.
type Node interface {
	node()
}

// Item is a declaration that may appear inside a module, interface or package.
type Item interface {
	Node
	item()
	Attributes() []*Attribute
}

// Stmt is a statement inside always blocks and functions.
type Stmt interface {
	Node
	stmt()
}

// Expr is a value-level expression.
type Expr interface {
	Node
	expr()
}

// Source is one parsed file.
type Source struct {
	File  string
	Items []Item
}

// Attribute is `#[name(arg, ...)]`.
type Attribute struct {
	Hash Token
	Name Token
	Args []Token
}

type attrs struct {
	Attrs []*Attribute
}

func (a *attrs) Attributes() []*Attribute { return a.Attrs }

type ModuleDecl struct {
	attrs
	Module Token
	Name   Token
	Params []*ParamDecl
	Ports  []*PortDecl
	Items  []Item
}

type InterfaceDecl struct {
	attrs
	Interface Token
	Name      Token
	Params    []*ParamDecl
	Items     []Item
}

type PackageDecl struct {
	attrs
	Package Token
	Name    Token
	Items   []Item
}

// PortDecl is a module or function port. Direction holds one of the
// direction keywords, or KwModport for interface ports.
type PortDecl struct {
	Name      Token
	Direction Token
	Type      *TypeExpr
}

// TypeExpr is a builtin or user type with optional width and array
// dimensions. Path has one element for builtin types.
type TypeExpr struct {
	Path  []Token
	Width []Expr
	Array []Expr
}

// Names returns the type path as strings.
func (t *TypeExpr) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Path))
	for i, tok := range t.Path {
		out[i] = tok.Text
	}
	return out
}

type VarDecl struct {
	attrs
	Var  Token
	Name Token
	Type *TypeExpr
}

type LetDecl struct {
	attrs
	Let   Token
	Name  Token
	Type  *TypeExpr
	Equ   Token
	Value Expr
}

// ParamDecl covers both `param` and `localparam`.
type ParamDecl struct {
	attrs
	Param Token
	Name  Token
	Type  *TypeExpr
	Value Expr
}

type AlwaysFfDecl struct {
	attrs
	AlwaysFf Token
	Clock    *Identifier
	Reset    *Identifier
	Body     []Stmt
}

type AlwaysCombDecl struct {
	attrs
	AlwaysComb Token
	Body       []Stmt
}

type AssignDecl struct {
	attrs
	Assign Token
	Target *Identifier
	Equ    Token
	Value  Expr
}

type InstDecl struct {
	attrs
	Inst        Token
	Name        Token
	Type        []Token
	Connections []*PortConnection
}

// TypeNames returns the instantiated type path as strings.
func (d *InstDecl) TypeNames() []string {
	out := make([]string, len(d.Type))
	for i, tok := range d.Type {
		out[i] = tok.Text
	}
	return out
}

// PortConnection is `name: expr` or the shorthand `name`, in which case
// Value is nil and the port connects to the same-named signal.
type PortConnection struct {
	Name  Token
	Value Expr
}

// Target returns the connected signal path when the connection is a plain
// identifier reference, or nil otherwise.
func (c *PortConnection) Target() []string {
	if c.Value == nil {
		return []string{c.Name.Text}
	}
	id, ok := c.Value.(*Identifier)
	if !ok {
		return nil
	}
	return id.Path()
}

type FunctionDecl struct {
	attrs
	Function Token
	Name     Token
	Ports    []*PortDecl
	Return   *TypeExpr
	Vars     []*VarDecl
	Body     []Stmt
}

// StructDecl is a struct or union; Keyword tells which.
type StructDecl struct {
	attrs
	Keyword Token
	Name    Token
	Members []*StructMember
}

// IsUnion reports whether the declaration is a union.
func (d *StructDecl) IsUnion() bool {
	return d.Keyword.Kind == KwUnion
}

type StructMember struct {
	Name Token
	Type *TypeExpr
}

type ModportDecl struct {
	attrs
	Modport Token
	Name    Token
	Members []*ModportItem
}

type ModportItem struct {
	Name      Token
	Direction Token
}

// IfDecl is a generate-if.
type IfDecl struct {
	attrs
	If      Token
	Cond    Expr
	Label   *Token
	Items   []Item
	ElseIfs []*IfDeclElseIf
	Else    *IfDeclElse
}

type IfDeclElseIf struct {
	Else  *Else
	If    Token
	Cond  Expr
	Label *Token
	Items []Item
}

type IfDeclElse struct {
	Else  *Else
	Label *Token
	Items []Item
}

// ForDecl is a generate-for.
type ForDecl struct {
	attrs
	For   Token
	Index Token
	Range *Range
	Label *Token
	Items []Item
}

type Range struct {
	Start Expr
	Op    Token
	End   Expr
}

// Else is the `else` keyword. It is shared by statements, generate
// declarations and conditional expressions.
type Else struct {
	Else Token
}

type LetStatement struct {
	Let   Token
	Name  Token
	Type  *TypeExpr
	Equ   Token
	Value Expr
}

// IdentifierStatement is an assignment or a function call statement.
// Exactly one of Assignment and Call is set.
type IdentifierStatement struct {
	Target     *Identifier
	Assignment *Assignment
	Call       *CallArgs
}

// Assignment holds `=` or a compound operator such as `+=`.
type Assignment struct {
	Op    Token
	Value Expr
}

type CallArgs struct {
	LParen Token
	Args   []Expr
}

type IfStatement struct {
	If      Token
	Cond    Expr
	Body    []Stmt
	ElseIfs []*ElseIf
	Else    *ElseClause
}

type IfResetStatement struct {
	IfReset Token
	Body    []Stmt
	ElseIfs []*ElseIf
	Else    *ElseClause
}

type ElseIf struct {
	Else *Else
	If   Token
	Cond Expr
	Body []Stmt
}

type ElseClause struct {
	Else *Else
	Body []Stmt
}

type CaseStatement struct {
	Case    Token
	Subject Expr
	Items   []*CaseItem
}

// CaseItem is one arm; Default is set for the `default` arm, in which case
// Conds is empty.
type CaseItem struct {
	Conds   []Expr
	Default *Token
	Colon   Token
	Body    []Stmt
}

type ForStatement struct {
	For   Token
	Index Token
	Type  *TypeExpr
	Range *Range
	Step  *Step
	Body  []Stmt
}

type Step struct {
	Step  Token
	Op    Token
	Value Expr
}

type ReturnStatement struct {
	Return Token
	Value  Expr
}

// Identifier is an expression identifier: optional `A::B::` scope, a root
// name, selects on the root, and `.member[sel]` accesses.
type Identifier struct {
	Scope   []Token
	Name    Token
	Selects []*Select
	Members []*MemberAccess
}

type MemberAccess struct {
	Dot     Token
	Name    Token
	Selects []*Select
}

// Select is `[index]`, `[msb:lsb]` or `[base+:width]`.
type Select struct {
	LBracket Token
	Index    Expr
	Op       *Token
	End      Expr
}

// Path returns scope, root and member names in order.
func (id *Identifier) Path() []string {
	out := make([]string, 0, len(id.Scope)+1+len(id.Members))
	for _, s := range id.Scope {
		out = append(out, s.Text)
	}
	out = append(out, id.Name.Text)
	for _, m := range id.Members {
		out = append(out, m.Name.Text)
	}
	return out
}

// ScopeNames returns the `::` qualified prefix.
func (id *Identifier) ScopeNames() []string {
	out := make([]string, len(id.Scope))
	for i, s := range id.Scope {
		out[i] = s.Text
	}
	return out
}

// MemberNames returns the names of `.member` accesses.
func (id *Identifier) MemberNames() []string {
	out := make([]string, len(id.Members))
	for i, m := range id.Members {
		out[i] = m.Name.Text
	}
	return out
}

// Partial reports whether the identifier selects a strict sub-part of the
// root: any select on the root or any member access.
func (id *Identifier) Partial() bool {
	return len(id.Selects) > 0 || len(id.Members) > 0
}

// Text renders the identifier without selects.
func (id *Identifier) Text() string {
	text := ""
	for _, s := range id.Scope {
		text += s.Text + "::"
	}
	text += id.Name.Text
	for _, m := range id.Members {
		text += "." + m.Name.Text
	}
	return text
}

type NumberLit struct {
	Token Token
}

type StringLit struct {
	Token Token
}

type BinaryExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

type UnaryExpr struct {
	Op      Token
	Operand Expr
}

type ParenExpr struct {
	LParen Token
	Inner  Expr
}

type ConcatExpr struct {
	LBrace Token
	Elems  []Expr
}

type CallExpr struct {
	Callee *Identifier
	Args   []Expr
}

// IfExpression is the value-level conditional `if c { x } else { y }`.
type IfExpression struct {
	If        Token
	Cond      Expr
	Then      Expr
	ElseIfs   []*IfExpressionElseIf
	Else      *Else
	ElseValue Expr
}

type IfExpressionElseIf struct {
	Else  *Else
	If    Token
	Cond  Expr
	Value Expr
}

func (*Source) node()              {}
func (*Attribute) node()           {}
func (*ModuleDecl) node()          {}
func (*InterfaceDecl) node()       {}
func (*PackageDecl) node()         {}
func (*PortDecl) node()            {}
func (*TypeExpr) node()            {}
func (*VarDecl) node()             {}
func (*LetDecl) node()             {}
func (*ParamDecl) node()           {}
func (*AlwaysFfDecl) node()        {}
func (*AlwaysCombDecl) node()      {}
func (*AssignDecl) node()          {}
func (*InstDecl) node()            {}
func (*PortConnection) node()      {}
func (*FunctionDecl) node()        {}
func (*StructDecl) node()          {}
func (*StructMember) node()        {}
func (*ModportDecl) node()         {}
func (*ModportItem) node()         {}
func (*IfDecl) node()              {}
func (*IfDeclElseIf) node()        {}
func (*IfDeclElse) node()          {}
func (*ForDecl) node()             {}
func (*Range) node()               {}
func (*Else) node()                {}
func (*LetStatement) node()        {}
func (*IdentifierStatement) node() {}
func (*IfStatement) node()         {}
func (*IfResetStatement) node()    {}
func (*ElseIf) node()              {}
func (*ElseClause) node()          {}
func (*CaseStatement) node()       {}
func (*CaseItem) node()            {}
func (*ForStatement) node()        {}
func (*ReturnStatement) node()     {}
func (*Identifier) node()          {}
func (*Select) node()              {}
func (*NumberLit) node()           {}
func (*StringLit) node()           {}
func (*BinaryExpr) node()          {}
func (*UnaryExpr) node()           {}
func (*ParenExpr) node()           {}
func (*ConcatExpr) node()          {}
func (*CallExpr) node()            {}
func (*IfExpression) node()        {}
func (*IfExpressionElseIf) node()  {}

func (*ModuleDecl) item()     {}
func (*InterfaceDecl) item()  {}
func (*PackageDecl) item()    {}
func (*VarDecl) item()        {}
func (*LetDecl) item()        {}
func (*ParamDecl) item()      {}
func (*AlwaysFfDecl) item()   {}
func (*AlwaysCombDecl) item() {}
func (*AssignDecl) item()     {}
func (*InstDecl) item()       {}
func (*FunctionDecl) item()   {}
func (*StructDecl) item()     {}
func (*ModportDecl) item()    {}
func (*IfDecl) item()         {}
func (*ForDecl) item()        {}

func (*LetStatement) stmt()        {}
func (*IdentifierStatement) stmt() {}
func (*IfStatement) stmt()         {}
func (*IfResetStatement) stmt()    {}
func (*CaseStatement) stmt()       {}
func (*ForStatement) stmt()        {}
func (*ReturnStatement) stmt()     {}

func (*Identifier) expr()   {}
func (*NumberLit) expr()    {}
func (*StringLit) expr()    {}
func (*BinaryExpr) expr()   {}
func (*UnaryExpr) expr()    {}
func (*ParenExpr) expr()    {}
func (*ConcatExpr) expr()   {}
func (*CallExpr) expr()     {}
func (*IfExpression) expr() {}
