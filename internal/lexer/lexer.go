package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/token"
)

type Lexer struct {
	file         string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// New creates a lexer whose first line is numbered startLine.
func New(file, input string, startLine int) *Lexer {
	if startLine < 1 {
		startLine = 1
	}
	l := &Lexer{file: file, input: input, line: startLine, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharN(n int) rune {
	pos := l.readPosition
	var r rune
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	return r
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) location() token.Location {
	return token.Location{File: l.file, Line: l.line, Column: l.column}
}

// NextToken returns the next token, or an error for malformed input.
// At the end of input it keeps returning EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespaceAndComments()

	loc := l.location()
	if l.atEnd() {
		return token.Token{Type: token.EOF, Location: loc}, nil
	}

	switch l.ch {
	case '(':
		return l.single(token.LPAREN, loc), nil
	case ')':
		return l.single(token.RPAREN, loc), nil
	case '[':
		return l.single(token.LBRACKET, loc), nil
	case ']':
		return l.single(token.RBRACKET, loc), nil
	case '{':
		return l.single(token.LBRACE, loc), nil
	case '}':
		return l.single(token.RBRACE, loc), nil
	case ':':
		return l.single(token.COLON, loc), nil
	case '$':
		return l.single(token.UNQUOTE, loc), nil
	case '"':
		return l.readString(loc)
	case '.':
		if l.peekChar() == '.' && l.peekCharN(2) == '.' {
			l.readChar()
			l.readChar()
			l.readChar()
			return token.Token{Type: token.SPLICE, Lexeme: "...", Value: "...", Location: loc}, nil
		}
	case '-':
		if isDigit(l.peekChar()) {
			return l.readNumber(loc)
		}
	}

	if isDigit(l.ch) {
		return l.readNumber(loc)
	}
	if isIdentStart(l.ch) {
		return l.readSymbol(loc)
	}

	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Value: lexeme, Location: loc}, nil
}

func (l *Lexer) single(t token.TokenType, loc token.Location) token.Token {
	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Value: lexeme, Location: loc}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch l.ch {
		case ' ', '\t', '\n', '\r':
			l.readChar()
		case ';':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readString(loc token.Location) (token.Token, error) {
	start := l.position
	l.readChar() // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP002, loc, `closing '"'`, "end of input")
		}
		switch l.ch {
		case '"':
			l.readChar()
			lexeme := l.input[start:l.position]
			return token.Token{Type: token.STRING, Lexeme: lexeme, Value: sb.String(), Location: loc}, nil
		case '\\':
			escLoc := l.location()
			l.readChar()
			if l.atEnd() {
				return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP002, loc, `closing '"'`, "end of input")
			}
			switch l.ch {
			case '"', '\\', '/':
				sb.WriteRune(l.ch)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'u':
				var hex strings.Builder
				for i := 0; i < 4; i++ {
					l.readChar()
					if l.atEnd() {
						return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP002, loc, `closing '"'`, "end of input")
					}
					if !isHexDigit(l.ch) {
						return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP005, escLoc, "four hex digits after \\u", strconv.QuoteRune(l.ch))
					}
					hex.WriteRune(l.ch)
				}
				n, _ := strconv.ParseUint(hex.String(), 16, 32)
				sb.WriteRune(rune(n))
			default:
				return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP005, escLoc, "escape sequence", strconv.Quote("\\"+string(l.ch)))
			}
			l.readChar()
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) readNumber(loc token.Location) (token.Token, error) {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharN(2))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	lexeme := l.input[start:l.position]
	if isIdentPart(l.ch) {
		return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP005, loc, "a number", strconv.Quote(lexeme+string(l.ch)))
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Value: lexeme, Location: loc}, nil
}

// readSymbol reads an identifier, optionally followed by `.ident` parts.
func (l *Lexer) readSymbol(loc token.Location) (token.Token, error) {
	start := l.position
	for {
		for isIdentPart(l.ch) {
			l.readChar()
		}
		if l.ch == '.' && isIdentStart(l.peekChar()) {
			l.readChar()
			continue
		}
		break
	}
	if l.ch == '.' && l.peekChar() != '.' {
		lexeme := l.input[start:l.position] + "."
		return token.Token{}, diagnostics.NewParseError(diagnostics.ErrP001, loc, "an identifier after '.'", strconv.Quote(lexeme))
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.SYMBOL, Lexeme: lexeme, Value: lexeme, Location: loc}, nil
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// IsIdentifier reports whether s is a single, undotted symbol.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}
