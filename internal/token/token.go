package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	COLON    TokenType = ":"

	STRING  TokenType = "STRING"
	NUMBER  TokenType = "NUMBER"
	SYMBOL  TokenType = "SYMBOL" // identifier or dotted property access
	UNQUOTE TokenType = "$"
	SPLICE  TokenType = "..."
)

// Location points at the first character of a token or form.
// Line and Column are 1-based.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0 && l.File == ""
}

type Token struct {
	Type   TokenType
	Lexeme string // raw text as it appears in the source
	Value  string // decoded string contents for STRING tokens, Lexeme otherwise
	Location
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
