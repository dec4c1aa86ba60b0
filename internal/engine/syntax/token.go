package syntax

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Number
	String

	// keywords
	KwModule
	KwInterface
	KwPackage
	KwInput
	KwOutput
	KwInout
	KwRef
	KwModport
	KwVar
	KwLet
	KwParam
	KwLocalparam
	KwAlwaysFf
	KwAlwaysComb
	KwAssign
	KwInst
	KwFunction
	KwStruct
	KwUnion
	KwIf
	KwIfReset
	KwElse
	KwCase
	KwDefault
	KwFor
	KwIn
	KwStep
	KwReturn

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Lt
	Gt
	Comma
	Colon
	ColonColon
	Semicolon
	Dot
	DotDot
	DotDotEq
	Arrow
	Hash
	HashLBracket
	Question

	// operators
	Equ
	AssignOp
	Operator
)

var keywords = map[string]TokenKind{
	"module":      KwModule,
	"interface":   KwInterface,
	"package":     KwPackage,
	"input":       KwInput,
	"output":      KwOutput,
	"inout":       KwInout,
	"ref":         KwRef,
	"modport":     KwModport,
	"var":         KwVar,
	"let":         KwLet,
	"param":       KwParam,
	"localparam":  KwLocalparam,
	"always_ff":   KwAlwaysFf,
	"always_comb": KwAlwaysComb,
	"assign":      KwAssign,
	"inst":        KwInst,
	"function":    KwFunction,
	"struct":      KwStruct,
	"union":       KwUnion,
	"if":          KwIf,
	"if_reset":    KwIfReset,
	"else":        KwElse,
	"case":        KwCase,
	"default":     KwDefault,
	"for":         KwFor,
	"in":          KwIn,
	"step":        KwStep,
	"return":      KwReturn,
}

var kindNames = map[TokenKind]string{
	EOF:          "end of file",
	Ident:        "identifier",
	Number:       "number",
	String:       "string",
	LParen:       "'('",
	RParen:       "')'",
	LBrace:       "'{'",
	RBrace:       "'}'",
	LBracket:     "'['",
	RBracket:     "']'",
	Lt:           "'<'",
	Gt:           "'>'",
	Comma:        "','",
	Colon:        "':'",
	ColonColon:   "'::'",
	Semicolon:    "';'",
	Dot:          "'.'",
	DotDot:       "'..'",
	DotDotEq:     "'..='",
	Arrow:        "'->'",
	Hash:         "'#'",
	HashLBracket: "'#['",
	Question:     "'?'",
	Equ:          "'='",
	AssignOp:     "assignment operator",
	Operator:     "operator",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	for text, kw := range keywords {
		if kw == k {
			return "'" + text + "'"
		}
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// TokenID is unique per token within one lexer run set; ids never repeat
// across files lexed by the same process.
type TokenID uint64

// Token is one lexeme with its source location.
type Token struct {
	ID     TokenID
	Kind   TokenKind
	Text   string
	File   string
	Line   int
	Column int
	Offset int
}

func (t Token) String() string {
	return t.Text
}

// Location renders file:line:column.
func (t Token) Location() string {
	if t.File == "" {
		return fmt.Sprintf("%d:%d", t.Line, t.Column)
	}
	return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
}

// Len is the byte length of the token text.
func (t Token) Len() int {
	return len(t.Text)
}
