package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationString(t *testing.T) {
	assert.Equal(t, "main.cstd:3:7", Location{File: "main.cstd", Line: 3, Column: 7}.String())
	assert.Equal(t, "1:1", Location{Line: 1, Column: 1}.String())

	assert.True(t, Location{}.IsZero())
	assert.False(t, Location{Line: 1}.IsZero())
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "end of input", Token{Type: EOF}.String())
	assert.Equal(t, `"(plusF"`, Token{Type: SYMBOL, Lexeme: "(plusF"}.String())
	assert.Equal(t, `"\"a\\n\""`, Token{Type: STRING, Lexeme: `"a\n"`, Value: "a\n"}.String())
}
