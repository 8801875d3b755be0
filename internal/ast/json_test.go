package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/token"
)

func TestFormJSONKeepsStructureAndLocations(t *testing.T) {
	loc := token.Location{File: "m.cstd", Line: 3, Column: 5}
	form := &List{Loc: loc, Items: []Form{
		&Symbol{Name: "f", Loc: loc},
		&Object{Entries: []Form{
			&KeyValue{Key: &Symbol{Name: "k"}, Value: &Float64{Value: math.Inf(-1)}},
			&Unquote{Inner: &Symbol{Name: "v"}},
		}},
		&Splice{Inner: &PropertyAccess{Parts: []string{"a", "b"}}},
		&Integer32{Value: 0},
		&Bool{Value: false},
		&StringLiteral{Value: ""},
		&None{},
	}}

	data, err := MarshalForm(form)
	require.NoError(t, err)

	fallback := token.Location{Line: 99, Column: 1}
	back, err := UnmarshalForm(data, fallback)
	require.NoError(t, err)
	assert.True(t, Equal(form, back))

	list := back.(*List)
	assert.Equal(t, loc, list.Loc)
	// Items without a location inherit their parent's.
	assert.Equal(t, loc, list.Items[1].GetLocation())
}

func TestUnmarshalFormUsesFallback(t *testing.T) {
	fallback := token.Location{File: "x", Line: 2, Column: 7}
	f, err := UnmarshalForm([]byte(`{"t":"float64","v":"NaN"}`), fallback)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f.(*Float64).Value))
	assert.Equal(t, fallback, f.GetLocation())
}

func TestUnmarshalFormErrors(t *testing.T) {
	for _, input := range []string{
		`{"t":"integer32","v":1.5}`,
		`{"t":"integer32","v":4294967296}`,
		`{"t":"propertyAccess","parts":["a"]}`,
		`{"t":"keyValue","key":{"t":"symbol","v":"k"}}`,
		`{"t":"splice"}`,
		`{"t":"mystery"}`,
		`not json`,
	} {
		_, err := UnmarshalForm([]byte(input), token.Location{})
		assert.Error(t, err, input)
	}
}

func TestHeadName(t *testing.T) {
	assert.Equal(t, "f", HeadName(&Symbol{Name: "f"}))
	assert.Equal(t, "a.b", HeadName(&PropertyAccess{Parts: []string{"a", "b"}}))
}
