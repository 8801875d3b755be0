package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custard-lang/custard-sub000/internal/token"
)

func TestErrorFormat(t *testing.T) {
	loc := token.Location{File: "a.cstd", Line: 2, Column: 5}

	err := NewParseError(ErrP003, loc, `")" closing "("`, "end of input")
	assert.Equal(t, `ParseError [P003] at a.cstd:2:5: expected ")" closing "(", but got end of input`, err.Error())

	err = NewError(ErrT001, token.Location{}, "`%s` is not defined", "x")
	assert.Equal(t, "TranspileError [T001]: `x` is not defined", err.Error())

	err = Wrap(ErrT011, loc, errors.New("no such file"), "cannot import `%s`", "lib")
	assert.Equal(t, "TranspileError [T011] at a.cstd:2:5: cannot import `lib`: no such file", err.Error())

	err = NewValidationError("custard.yaml", "modules: %q is not a valid identifier", "1x")
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, ErrV001, err.Code)
}

func TestHasCodeFollowsCauses(t *testing.T) {
	inner := NewError(ErrT002, token.Location{}, "`y` is already defined")
	outer := Wrap(ErrT011, token.Location{}, inner, "cannot import `lib`")
	wrapped := fmt.Errorf("compiling: %w", outer)

	assert.True(t, HasCode(wrapped, ErrT011))
	assert.True(t, HasCode(wrapped, ErrT002))
	assert.False(t, HasCode(wrapped, ErrT003))
	assert.False(t, HasCode(errors.New("plain"), ErrT001))
	assert.False(t, HasCode(nil, ErrT001))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTranspile, kind)
	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.ErrorIs(t, outer, inner)
}
