package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/token"
)

func collect(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New("test.cstd", input, 1)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `(const x [1 -2.5e3 "a\tb"]) ; comment
{k: $v ...rest} a.b.c`

	tests := []struct {
		expectedType   token.TokenType
		expectedValue  string
		expectedLine   int
		expectedColumn int
	}{
		{token.LPAREN, "(", 1, 1},
		{token.SYMBOL, "const", 1, 2},
		{token.SYMBOL, "x", 1, 8},
		{token.LBRACKET, "[", 1, 10},
		{token.NUMBER, "1", 1, 11},
		{token.NUMBER, "-2.5e3", 1, 13},
		{token.STRING, "a\tb", 1, 20},
		{token.RBRACKET, "]", 1, 26},
		{token.RPAREN, ")", 1, 27},
		{token.LBRACE, "{", 2, 1},
		{token.SYMBOL, "k", 2, 2},
		{token.COLON, ":", 2, 3},
		{token.UNQUOTE, "$", 2, 5},
		{token.SYMBOL, "v", 2, 6},
		{token.SPLICE, "...", 2, 8},
		{token.SYMBOL, "rest", 2, 11},
		{token.RBRACE, "}", 2, 15},
		{token.SYMBOL, "a.b.c", 2, 17},
		{token.EOF, "", 2, 22},
	}

	toks := collect(t, input)
	require.Len(t, toks, len(tests))
	for i, tt := range tests {
		tok := toks[i]
		assert.Equal(t, tt.expectedType, tok.Type, "tests[%d] type", i)
		assert.Equal(t, tt.expectedValue, tok.Value, "tests[%d] value", i)
		assert.Equal(t, tt.expectedLine, tok.Line, "tests[%d] line", i)
		assert.Equal(t, tt.expectedColumn, tok.Column, "tests[%d] column", i)
		assert.Equal(t, "test.cstd", tok.File)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"\"\\\/\n\r\b\fé"`)
	assert.Equal(t, "\"\\/\n\r\b\fé", toks[0].Value)
	assert.Equal(t, `"\"\\\/\n\r\b\fé"`, toks[0].Lexeme)
}

func TestLoneMinusIsIllegal(t *testing.T) {
	l := New("", "-", 1)
	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.ILLEGAL, tok.Type)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diagnostics.ErrorCode
	}{
		{`"open`, diagnostics.ErrP002},
		{`"\`, diagnostics.ErrP002},
		{`"\x"`, diagnostics.ErrP005},
		{`"\u12g4"`, diagnostics.ErrP005},
		{`"\u12`, diagnostics.ErrP002},
		{`"\u`, diagnostics.ErrP002},
		{"3x", diagnostics.ErrP005},
		{"a.", diagnostics.ErrP001},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New("", tt.input, 1)
			_, err := l.NextToken()
			require.Error(t, err)
			assert.True(t, diagnostics.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("a_1"))
	assert.True(t, IsIdentifier("_"))
	assert.False(t, IsIdentifier("1a"))
	assert.False(t, IsIdentifier("a.b"))
	assert.False(t, IsIdentifier("a$"))
	assert.False(t, IsIdentifier(""))
}
