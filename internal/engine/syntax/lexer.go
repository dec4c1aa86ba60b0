package syntax

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var nextTokenID atomic.Uint64

// Longest first so that maximal munch falls out of a linear scan.
var punctuators = []struct {
	text string
	kind TokenKind
}{
	{"<<<=", AssignOp},
	{">>>=", AssignOp},
	{"===", Operator},
	{"!==", Operator},
	{"<<<", Operator},
	{">>>", Operator},
	{"<<=", AssignOp},
	{">>=", AssignOp},
	{"..=", DotDotEq},
	{"+=", AssignOp},
	{"-=", AssignOp},
	{"*=", AssignOp},
	{"/=", AssignOp},
	{"%=", AssignOp},
	{"&=", AssignOp},
	{"|=", AssignOp},
	{"^=", AssignOp},
	{"==", Operator},
	{"!=", Operator},
	{"<=", Operator},
	{">=", Operator},
	{"<:", Operator},
	{">:", Operator},
	{"&&", Operator},
	{"||", Operator},
	{"<<", Operator},
	{">>", Operator},
	{"**", Operator},
	{"~&", Operator},
	{"~|", Operator},
	{"~^", Operator},
	{"^~", Operator},
	{"::", ColonColon},
	{"..", DotDot},
	{"->", Arrow},
	{"#[", HashLBracket},
	{"(", LParen},
	{")", RParen},
	{"{", LBrace},
	{"}", RBrace},
	{"[", LBracket},
	{"]", RBracket},
	{"<", Lt},
	{">", Gt},
	{",", Comma},
	{":", Colon},
	{";", Semicolon},
	{".", Dot},
	{"#", Hash},
	{"?", Question},
	{"=", Equ},
	{"+", Operator},
	{"-", Operator},
	{"*", Operator},
	{"/", Operator},
	{"%", Operator},
	{"&", Operator},
	{"|", Operator},
	{"^", Operator},
	{"~", Operator},
	{"!", Operator},
}

// Lexer turns Veryl source text into tokens.
type Lexer struct {
	file   string
	input  string
	pos    int
	cursor int
	line   int
	column int
}

// NewLexer creates a lexer over input; file is only used for locations.
func NewLexer(file, input string) *Lexer {
	return &Lexer{file: file, input: input, line: 1, column: 1}
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	if l.pos >= len(l.input) {
		return l.emit(EOF, l.pos), nil
	}

	start := l.pos
	ch := l.input[l.pos]
	switch {
	case isIdentStart(ch):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		text := l.input[start:l.pos]
		if kw, ok := keywords[text]; ok {
			return l.emit(kw, start), nil
		}
		return l.emit(Ident, start), nil
	case isDigit(ch) || (ch == '\'' && l.pos+1 < len(l.input) && isNumberPart(l.input[l.pos+1])):
		l.scanNumber()
		return l.emit(Number, start), nil
	case ch == '"':
		l.pos++
		for l.pos < len(l.input) && l.input[l.pos] != '"' {
			if l.input[l.pos] == '\n' {
				return Token{}, l.errorf(start, "unterminated string literal")
			}
			if l.input[l.pos] == '\\' {
				l.pos++
			}
			l.pos++
		}
		if l.pos >= len(l.input) {
			return Token{}, l.errorf(start, "unterminated string literal")
		}
		l.pos++
		return l.emit(String, start), nil
	}

	rest := l.input[l.pos:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p.text) {
			l.pos += len(p.text)
			return l.emit(p.kind, start), nil
		}
	}
	return Token{}, l.errorf(start, "unexpected character %q", ch)
}

func (l *Lexer) scanNumber() {
	for l.pos < len(l.input) && isNumberPart(l.input[l.pos]) {
		l.pos++
	}
	// 8'hff, 'b0101, 12'd10
	if l.pos < len(l.input) && l.input[l.pos] == '\'' {
		l.pos++
		for l.pos < len(l.input) && isNumberPart(l.input[l.pos]) {
			l.pos++
		}
	}
}

func (l *Lexer) skipTrivia() error {
	for l.pos < len(l.input) {
		switch {
		case l.input[l.pos] == ' ' || l.input[l.pos] == '\t' || l.input[l.pos] == '\r' || l.input[l.pos] == '\n':
			l.pos++
		case strings.HasPrefix(l.input[l.pos:], "//"):
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.input[l.pos:], "/*"):
			start := l.pos
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				return l.errorf(start, "unterminated block comment")
			}
			l.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) emit(kind TokenKind, start int) Token {
	line, col := l.lineColumn(start)
	return Token{
		ID:     TokenID(nextTokenID.Add(1)),
		Kind:   kind,
		Text:   l.input[start:l.pos],
		File:   l.file,
		Line:   line,
		Column: col,
		Offset: start,
	}
}

// lineColumn advances the cached cursor; offsets are requested in order.
func (l *Lexer) lineColumn(offset int) (int, int) {
	if offset < l.cursor {
		l.cursor, l.line, l.column = 0, 1, 1
	}
	for ; l.cursor < offset && l.cursor < len(l.input); l.cursor++ {
		if l.input[l.cursor] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	return l.line, l.column
}

func (l *Lexer) errorf(offset int, format string, args ...any) error {
	line, col := l.lineColumn(offset)
	return &SyntaxError{
		File:    l.file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberPart(ch byte) bool {
	return isDigit(ch) || ch == '_' || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') ||
		ch == 'x' || ch == 'X' || ch == 'z' || ch == 'Z' || ch == 'h' || ch == 'o'
}
