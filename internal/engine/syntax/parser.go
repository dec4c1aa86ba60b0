package syntax

import (
	"fmt"
)

// SyntaxError is a lexing or parsing failure at one location.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Parse lexes and parses one source file. Parsing stops at the first error.
func Parse(file, text string) (src *Source, err error) {
	tokens, err := NewLexer(file, text).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			src, err = nil, se
		}
	}()
	return p.parseSource(file), nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *parser) peek(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) check(kind TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *parser) advance() Token {
	tok := p.cur()
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind TokenKind) (Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	return Token{}, false
}

func (p *parser) expect(kind TokenKind) Token {
	if !p.check(kind) {
		p.failf("expected %s, found %q", kind, p.cur().Text)
	}
	return p.advance()
}

func (p *parser) failf(format string, args ...any) {
	tok := p.cur()
	panic(&SyntaxError{
		File:    tok.File,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) parseSource(file string) *Source {
	src := &Source{File: file}
	for !p.check(EOF) {
		attrs := p.parseAttributes()
		switch p.cur().Kind {
		case KwModule:
			src.Items = append(src.Items, p.parseModule(attrs))
		case KwInterface:
			src.Items = append(src.Items, p.parseInterface(attrs))
		case KwPackage:
			src.Items = append(src.Items, p.parsePackage(attrs))
		default:
			p.failf("expected module, interface or package, found %q", p.cur().Text)
		}
	}
	return src
}

func (p *parser) parseAttributes() []*Attribute {
	var out []*Attribute
	for p.check(HashLBracket) {
		attr := &Attribute{Hash: p.advance()}
		attr.Name = p.expect(Ident)
		if _, ok := p.accept(LParen); ok {
			for !p.check(RParen) {
				attr.Args = append(attr.Args, p.expect(Ident))
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
			p.expect(RParen)
		}
		p.expect(RBracket)
		out = append(out, attr)
	}
	return out
}

func (p *parser) parseModule(attributes []*Attribute) *ModuleDecl {
	m := &ModuleDecl{attrs: attrs{attributes}, Module: p.expect(KwModule)}
	m.Name = p.expect(Ident)
	if p.check(Hash) {
		m.Params = p.parseParamList()
	}
	if _, ok := p.accept(LParen); ok {
		m.Ports = p.parsePortList()
		p.expect(RParen)
	}
	m.Items = p.parseItemBlock(p.parseModuleItem)
	return m
}

func (p *parser) parseInterface(attributes []*Attribute) *InterfaceDecl {
	d := &InterfaceDecl{attrs: attrs{attributes}, Interface: p.expect(KwInterface)}
	d.Name = p.expect(Ident)
	if p.check(Hash) {
		d.Params = p.parseParamList()
	}
	d.Items = p.parseItemBlock(p.parseInterfaceItem)
	return d
}

func (p *parser) parsePackage(attributes []*Attribute) *PackageDecl {
	d := &PackageDecl{attrs: attrs{attributes}, Package: p.expect(KwPackage)}
	d.Name = p.expect(Ident)
	d.Items = p.parseItemBlock(p.parsePackageItem)
	return d
}

// parseParamList parses `#( name: type = value, ... )`.
func (p *parser) parseParamList() []*ParamDecl {
	p.expect(Hash)
	p.expect(LParen)
	var out []*ParamDecl
	for !p.check(RParen) {
		d := &ParamDecl{}
		if p.check(KwParam) || p.check(KwLocalparam) {
			d.Param = p.advance()
		} else {
			d.Param = p.cur()
		}
		d.Name = p.expect(Ident)
		p.expect(Colon)
		d.Type = p.parseType()
		p.expect(Equ)
		d.Value = p.parseExpr()
		out = append(out, d)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(RParen)
	return out
}

func (p *parser) parsePortList() []*PortDecl {
	var out []*PortDecl
	for !p.check(RParen) {
		out = append(out, p.parsePort())
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	return out
}

func (p *parser) parsePort() *PortDecl {
	port := &PortDecl{Name: p.expect(Ident)}
	p.expect(Colon)
	switch p.cur().Kind {
	case KwInput, KwOutput, KwInout, KwRef, KwModport:
		port.Direction = p.advance()
	default:
		p.failf("expected port direction, found %q", p.cur().Text)
	}
	port.Type = p.parseType()
	return port
}

func (p *parser) parseType() *TypeExpr {
	t := &TypeExpr{Path: []Token{p.expect(Ident)}}
	for p.check(ColonColon) {
		p.advance()
		t.Path = append(t.Path, p.expect(Ident))
	}
	if _, ok := p.accept(Lt); ok {
		for {
			t.Width = append(t.Width, p.parseExprNoGt())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(Gt)
	}
	if _, ok := p.accept(LBracket); ok {
		for {
			t.Array = append(t.Array, p.parseExpr())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(RBracket)
	}
	return t
}

func (p *parser) parseItemBlock(item func([]*Attribute) Item) []Item {
	p.expect(LBrace)
	var out []Item
	for !p.check(RBrace) {
		if p.check(EOF) {
			p.failf("unexpected end of file, expected '}'")
		}
		attrs := p.parseAttributes()
		out = append(out, item(attrs))
	}
	p.expect(RBrace)
	return out
}

func (p *parser) parseModuleItem(attributes []*Attribute) Item {
	switch p.cur().Kind {
	case KwVar:
		return p.parseVarDecl(attributes)
	case KwLet:
		return p.parseLetDecl(attributes)
	case KwParam, KwLocalparam:
		return p.parseParamDecl(attributes)
	case KwAlwaysFf:
		return p.parseAlwaysFf(attributes)
	case KwAlwaysComb:
		d := &AlwaysCombDecl{attrs: attrs{attributes}, AlwaysComb: p.advance()}
		d.Body = p.parseStmtBlock()
		return d
	case KwAssign:
		d := &AssignDecl{attrs: attrs{attributes}, Assign: p.advance()}
		d.Target = p.parseIdentifier()
		d.Equ = p.expect(Equ)
		d.Value = p.parseExpr()
		p.expect(Semicolon)
		return d
	case KwInst:
		return p.parseInst(attributes)
	case KwFunction:
		return p.parseFunction(attributes)
	case KwStruct, KwUnion:
		return p.parseStruct(attributes)
	case KwIf:
		return p.parseIfDecl(attributes)
	case KwFor:
		return p.parseForDecl(attributes)
	}
	p.failf("unexpected %q in module", p.cur().Text)
	return nil
}

func (p *parser) parseInterfaceItem(attributes []*Attribute) Item {
	switch p.cur().Kind {
	case KwVar:
		return p.parseVarDecl(attributes)
	case KwParam, KwLocalparam:
		return p.parseParamDecl(attributes)
	case KwModport:
		return p.parseModport(attributes)
	case KwFunction:
		return p.parseFunction(attributes)
	case KwStruct, KwUnion:
		return p.parseStruct(attributes)
	}
	p.failf("unexpected %q in interface", p.cur().Text)
	return nil
}

func (p *parser) parsePackageItem(attributes []*Attribute) Item {
	switch p.cur().Kind {
	case KwParam, KwLocalparam:
		return p.parseParamDecl(attributes)
	case KwFunction:
		return p.parseFunction(attributes)
	case KwStruct, KwUnion:
		return p.parseStruct(attributes)
	}
	p.failf("unexpected %q in package", p.cur().Text)
	return nil
}

func (p *parser) parseVarDecl(attributes []*Attribute) *VarDecl {
	d := &VarDecl{attrs: attrs{attributes}, Var: p.expect(KwVar)}
	d.Name = p.expect(Ident)
	p.expect(Colon)
	d.Type = p.parseType()
	p.expect(Semicolon)
	return d
}

func (p *parser) parseLetDecl(attributes []*Attribute) *LetDecl {
	d := &LetDecl{attrs: attrs{attributes}, Let: p.expect(KwLet)}
	d.Name = p.expect(Ident)
	p.expect(Colon)
	d.Type = p.parseType()
	d.Equ = p.expect(Equ)
	d.Value = p.parseExpr()
	p.expect(Semicolon)
	return d
}

func (p *parser) parseParamDecl(attributes []*Attribute) *ParamDecl {
	d := &ParamDecl{attrs: attrs{attributes}, Param: p.advance()}
	d.Name = p.expect(Ident)
	p.expect(Colon)
	d.Type = p.parseType()
	p.expect(Equ)
	d.Value = p.parseExpr()
	p.expect(Semicolon)
	return d
}

func (p *parser) parseAlwaysFf(attributes []*Attribute) *AlwaysFfDecl {
	d := &AlwaysFfDecl{attrs: attrs{attributes}, AlwaysFf: p.expect(KwAlwaysFf)}
	if _, ok := p.accept(LParen); ok {
		d.Clock = p.parseIdentifier()
		if _, ok := p.accept(Comma); ok {
			d.Reset = p.parseIdentifier()
		}
		p.expect(RParen)
	}
	d.Body = p.parseStmtBlock()
	return d
}

func (p *parser) parseInst(attributes []*Attribute) *InstDecl {
	d := &InstDecl{attrs: attrs{attributes}, Inst: p.expect(KwInst)}
	d.Name = p.expect(Ident)
	p.expect(Colon)
	d.Type = []Token{p.expect(Ident)}
	for p.check(ColonColon) {
		p.advance()
		d.Type = append(d.Type, p.expect(Ident))
	}
	if _, ok := p.accept(LParen); ok {
		for !p.check(RParen) {
			c := &PortConnection{Name: p.expect(Ident)}
			if _, ok := p.accept(Colon); ok {
				c.Value = p.parseExpr()
			}
			d.Connections = append(d.Connections, c)
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(RParen)
	}
	p.expect(Semicolon)
	return d
}

func (p *parser) parseFunction(attributes []*Attribute) *FunctionDecl {
	d := &FunctionDecl{attrs: attrs{attributes}, Function: p.expect(KwFunction)}
	d.Name = p.expect(Ident)
	if _, ok := p.accept(LParen); ok {
		d.Ports = p.parsePortList()
		p.expect(RParen)
	}
	if _, ok := p.accept(Arrow); ok {
		d.Return = p.parseType()
	}
	p.expect(LBrace)
	for !p.check(RBrace) {
		if p.check(EOF) {
			p.failf("unexpected end of file, expected '}'")
		}
		if p.check(KwVar) {
			d.Vars = append(d.Vars, p.parseVarDecl(nil))
			continue
		}
		d.Body = append(d.Body, p.parseStmt())
	}
	p.expect(RBrace)
	return d
}

func (p *parser) parseStruct(attributes []*Attribute) *StructDecl {
	d := &StructDecl{attrs: attrs{attributes}, Keyword: p.advance()}
	d.Name = p.expect(Ident)
	p.expect(LBrace)
	for !p.check(RBrace) {
		m := &StructMember{Name: p.expect(Ident)}
		p.expect(Colon)
		m.Type = p.parseType()
		d.Members = append(d.Members, m)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(RBrace)
	return d
}

func (p *parser) parseModport(attributes []*Attribute) *ModportDecl {
	d := &ModportDecl{attrs: attrs{attributes}, Modport: p.expect(KwModport)}
	d.Name = p.expect(Ident)
	p.expect(LBrace)
	for !p.check(RBrace) {
		m := &ModportItem{Name: p.expect(Ident)}
		p.expect(Colon)
		switch p.cur().Kind {
		case KwInput, KwOutput, KwInout, KwRef:
			m.Direction = p.advance()
		default:
			p.failf("expected modport direction, found %q", p.cur().Text)
		}
		d.Members = append(d.Members, m)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(RBrace)
	return d
}

func (p *parser) parseLabel() *Token {
	if _, ok := p.accept(Colon); ok {
		tok := p.expect(Ident)
		return &tok
	}
	return nil
}

func (p *parser) parseIfDecl(attributes []*Attribute) *IfDecl {
	d := &IfDecl{attrs: attrs{attributes}, If: p.expect(KwIf)}
	d.Cond = p.parseExpr()
	d.Label = p.parseLabel()
	d.Items = p.parseItemBlock(p.parseModuleItem)
	for p.check(KwElse) {
		els := &Else{Else: p.advance()}
		if p.check(KwIf) {
			arm := &IfDeclElseIf{Else: els, If: p.advance()}
			arm.Cond = p.parseExpr()
			arm.Label = p.parseLabel()
			arm.Items = p.parseItemBlock(p.parseModuleItem)
			d.ElseIfs = append(d.ElseIfs, arm)
			continue
		}
		d.Else = &IfDeclElse{Else: els}
		d.Else.Label = p.parseLabel()
		d.Else.Items = p.parseItemBlock(p.parseModuleItem)
		break
	}
	return d
}

func (p *parser) parseForDecl(attributes []*Attribute) *ForDecl {
	d := &ForDecl{attrs: attrs{attributes}, For: p.expect(KwFor)}
	d.Index = p.expect(Ident)
	p.expect(KwIn)
	d.Range = p.parseRange()
	d.Label = p.parseLabel()
	d.Items = p.parseItemBlock(p.parseModuleItem)
	return d
}

func (p *parser) parseRange() *Range {
	r := &Range{Start: p.parseExpr()}
	switch p.cur().Kind {
	case DotDot, DotDotEq:
		r.Op = p.advance()
	default:
		p.failf("expected range operator, found %q", p.cur().Text)
	}
	r.End = p.parseExpr()
	return r
}

func (p *parser) parseStmtBlock() []Stmt {
	p.expect(LBrace)
	var out []Stmt
	for !p.check(RBrace) {
		if p.check(EOF) {
			p.failf("unexpected end of file, expected '}'")
		}
		out = append(out, p.parseStmt())
	}
	p.expect(RBrace)
	return out
}

func (p *parser) parseStmt() Stmt {
	switch p.cur().Kind {
	case KwLet:
		s := &LetStatement{Let: p.advance()}
		s.Name = p.expect(Ident)
		p.expect(Colon)
		s.Type = p.parseType()
		s.Equ = p.expect(Equ)
		s.Value = p.parseExpr()
		p.expect(Semicolon)
		return s
	case KwIf:
		return p.parseIfStatement()
	case KwIfReset:
		s := &IfResetStatement{IfReset: p.advance()}
		s.Body = p.parseStmtBlock()
		s.ElseIfs, s.Else = p.parseElseArms()
		return s
	case KwCase:
		return p.parseCase()
	case KwFor:
		return p.parseForStatement()
	case KwReturn:
		s := &ReturnStatement{Return: p.advance()}
		s.Value = p.parseExpr()
		p.expect(Semicolon)
		return s
	case Ident:
		return p.parseIdentifierStatement()
	}
	p.failf("unexpected %q in statement", p.cur().Text)
	return nil
}

func (p *parser) parseIdentifierStatement() *IdentifierStatement {
	s := &IdentifierStatement{Target: p.parseIdentifier()}
	switch p.cur().Kind {
	case Equ, AssignOp:
		s.Assignment = &Assignment{Op: p.advance()}
		s.Assignment.Value = p.parseExpr()
	case LParen:
		s.Call = &CallArgs{LParen: p.advance()}
		s.Call.Args = p.parseArgs()
	default:
		p.failf("expected assignment or call, found %q", p.cur().Text)
	}
	p.expect(Semicolon)
	return s
}

func (p *parser) parseIfStatement() *IfStatement {
	s := &IfStatement{If: p.expect(KwIf)}
	s.Cond = p.parseExpr()
	s.Body = p.parseStmtBlock()
	s.ElseIfs, s.Else = p.parseElseArms()
	return s
}

func (p *parser) parseElseArms() ([]*ElseIf, *ElseClause) {
	var arms []*ElseIf
	for p.check(KwElse) {
		els := &Else{Else: p.advance()}
		if p.check(KwIf) {
			arm := &ElseIf{Else: els, If: p.advance()}
			arm.Cond = p.parseExpr()
			arm.Body = p.parseStmtBlock()
			arms = append(arms, arm)
			continue
		}
		return arms, &ElseClause{Else: els, Body: p.parseStmtBlock()}
	}
	return arms, nil
}

func (p *parser) parseCase() *CaseStatement {
	s := &CaseStatement{Case: p.expect(KwCase)}
	s.Subject = p.parseExpr()
	p.expect(LBrace)
	for !p.check(RBrace) {
		if p.check(EOF) {
			p.failf("unexpected end of file, expected '}'")
		}
		item := &CaseItem{}
		if tok, ok := p.accept(KwDefault); ok {
			item.Default = &tok
		} else {
			for {
				item.Conds = append(item.Conds, p.parseExpr())
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
		}
		item.Colon = p.expect(Colon)
		if p.check(LBrace) {
			item.Body = p.parseStmtBlock()
		} else {
			item.Body = []Stmt{p.parseStmt()}
		}
		s.Items = append(s.Items, item)
	}
	p.expect(RBrace)
	return s
}

func (p *parser) parseForStatement() *ForStatement {
	s := &ForStatement{For: p.expect(KwFor)}
	s.Index = p.expect(Ident)
	p.expect(Colon)
	s.Type = p.parseType()
	p.expect(KwIn)
	s.Range = p.parseRange()
	if tok, ok := p.accept(KwStep); ok {
		s.Step = &Step{Step: tok}
		switch p.cur().Kind {
		case AssignOp:
			s.Step.Op = p.advance()
		default:
			p.failf("expected step operator, found %q", p.cur().Text)
		}
		s.Step.Value = p.parseExpr()
	}
	s.Body = p.parseStmtBlock()
	return s
}

// parseIdentifier parses `A::B::name[sel].member[sel]`.
func (p *parser) parseIdentifier() *Identifier {
	id := &Identifier{Name: p.expect(Ident)}
	for p.check(ColonColon) {
		p.advance()
		id.Scope = append(id.Scope, id.Name)
		id.Name = p.expect(Ident)
	}
	id.Selects = p.parseSelects()
	for p.check(Dot) && p.peek(1).Kind == Ident {
		m := &MemberAccess{Dot: p.advance(), Name: p.advance()}
		m.Selects = p.parseSelects()
		id.Members = append(id.Members, m)
	}
	return id
}

func (p *parser) parseSelects() []*Select {
	var out []*Select
	for p.check(LBracket) {
		s := &Select{LBracket: p.advance()}
		s.Index = p.parseExpr()
		if p.check(Colon) || (p.check(Operator) && (p.cur().Text == "+" || p.cur().Text == "-") && p.peek(1).Kind == Colon) {
			op := p.advance()
			if op.Kind == Operator {
				colon := p.advance()
				op.Text += colon.Text
			}
			s.Op = &op
			s.End = p.parseExpr()
		}
		p.expect(RBracket)
		out = append(out, s)
	}
	return out
}

func (p *parser) parseArgs() []Expr {
	var out []Expr
	for !p.check(RParen) {
		out = append(out, p.parseExpr())
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(RParen)
	return out
}

var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3, "~|": 3,
	"^": 4, "~^": 4, "^~": 4,
	"&": 5, "~&": 5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<:": 7, ">:": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8, "<<<": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

func (p *parser) parseExpr() Expr {
	return p.parseBinary(1, false)
}

// parseExprNoGt parses a width expression where '>' closes the list.
func (p *parser) parseExprNoGt() Expr {
	return p.parseBinary(1, true)
}

func (p *parser) parseBinary(minPrec int, noGt bool) Expr {
	left := p.parseUnary(noGt)
	for {
		tok := p.cur()
		if tok.Kind != Operator {
			return left
		}
		prec, ok := binaryPrecedence[tok.Text]
		if !ok || prec < minPrec {
			return left
		}
		if noGt && (tok.Text == ">=" || tok.Text == ">>" || tok.Text == ">>>") {
			return left
		}
		// `[base+:width]`
		if (tok.Text == "+" || tok.Text == "-") && p.peek(1).Kind == Colon {
			return left
		}
		p.advance()
		right := p.parseBinary(prec+1, noGt)
		left = &BinaryExpr{Left: left, Op: tok, Right: right}
	}
}

func (p *parser) parseUnary(noGt bool) Expr {
	if p.check(Operator) {
		switch p.cur().Text {
		case "-", "+", "!", "~", "&", "|", "^", "~&", "~|", "~^", "^~":
			op := p.advance()
			return &UnaryExpr{Op: op, Operand: p.parseUnary(noGt)}
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() Expr {
	switch p.cur().Kind {
	case Number:
		return &NumberLit{Token: p.advance()}
	case String:
		return &StringLit{Token: p.advance()}
	case LParen:
		e := &ParenExpr{LParen: p.advance()}
		e.Inner = p.parseExpr()
		p.expect(RParen)
		return e
	case LBrace:
		e := &ConcatExpr{LBrace: p.advance()}
		for !p.check(RBrace) {
			e.Elems = append(e.Elems, p.parseExpr())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(RBrace)
		return e
	case KwIf:
		return p.parseIfExpression()
	case Ident:
		id := p.parseIdentifier()
		if p.check(LParen) {
			p.advance()
			return &CallExpr{Callee: id, Args: p.parseArgs()}
		}
		return id
	}
	p.failf("unexpected %q in expression", p.cur().Text)
	return nil
}

func (p *parser) parseIfExpression() *IfExpression {
	e := &IfExpression{If: p.expect(KwIf)}
	e.Cond = p.parseExpr()
	e.Then = p.parseBracedExpr()
	for {
		els := &Else{Else: p.expect(KwElse)}
		if p.check(KwIf) {
			arm := &IfExpressionElseIf{Else: els, If: p.advance()}
			arm.Cond = p.parseExpr()
			arm.Value = p.parseBracedExpr()
			e.ElseIfs = append(e.ElseIfs, arm)
			continue
		}
		e.Else = els
		e.ElseValue = p.parseBracedExpr()
		return e
	}
}

func (p *parser) parseBracedExpr() Expr {
	p.expect(LBrace)
	e := p.parseExpr()
	p.expect(RBrace)
	return e
}
