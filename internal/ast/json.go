package ast

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/custard-lang/custard-sub000/internal/token"
)

// The JSON shape below is shared with the Form runtime script, which
// decodes macro arguments and encodes macro results with the same tags.
type jsonLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonForm struct {
	T     string        `json:"t"`
	V     interface{}   `json:"v,omitempty"`
	Parts []string      `json:"parts,omitempty"`
	Items []jsonForm    `json:"items,omitempty"`
	Key   *jsonForm     `json:"key,omitempty"`
	Value *jsonForm     `json:"value,omitempty"`
	Inner *jsonForm     `json:"inner,omitempty"`
	Loc   *jsonLocation `json:"loc,omitempty"`
}

type rawForm struct {
	T     string          `json:"t"`
	V     json.RawMessage `json:"v"`
	Parts []string        `json:"parts"`
	Items []rawForm       `json:"items"`
	Key   *rawForm        `json:"key"`
	Value *rawForm        `json:"value"`
	Inner *rawForm        `json:"inner"`
	Loc   *jsonLocation   `json:"loc"`
}

// MarshalForms encodes forms as a JSON array.
func MarshalForms(forms []Form) ([]byte, error) {
	out := make([]jsonForm, 0, len(forms))
	for _, f := range forms {
		jf, err := toJSON(f)
		if err != nil {
			return nil, err
		}
		out = append(out, jf)
	}
	return json.Marshal(out)
}

func MarshalForm(f Form) ([]byte, error) {
	jf, err := toJSON(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jf)
}

// UnmarshalForm decodes a single form. Forms without a location get
// fallback, which is usually the location of the macro call that produced
// them.
func UnmarshalForm(data []byte, fallback token.Location) (Form, error) {
	var rf rawForm
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}
	return fromJSON(&rf, fallback)
}

func toJSONLocation(l token.Location) *jsonLocation {
	if l.IsZero() {
		return nil
	}
	return &jsonLocation{File: l.File, Line: l.Line, Column: l.Column}
}

func toJSONAll(forms []Form) ([]jsonForm, error) {
	out := make([]jsonForm, 0, len(forms))
	for _, f := range forms {
		jf, err := toJSON(f)
		if err != nil {
			return nil, err
		}
		out = append(out, jf)
	}
	return out, nil
}

func toJSON(f Form) (jsonForm, error) {
	loc := toJSONLocation(f.GetLocation())
	switch x := f.(type) {
	case *Integer32:
		return jsonForm{T: "integer32", V: x.Value, Loc: loc}, nil
	case *Float64:
		var v interface{} = x.Value
		switch {
		case math.IsNaN(x.Value):
			v = "NaN"
		case math.IsInf(x.Value, 1):
			v = "Infinity"
		case math.IsInf(x.Value, -1):
			v = "-Infinity"
		}
		return jsonForm{T: "float64", V: v, Loc: loc}, nil
	case *StringLiteral:
		return jsonForm{T: "string", V: x.Value, Loc: loc}, nil
	case *Bool:
		return jsonForm{T: "bool", V: x.Value, Loc: loc}, nil
	case *None:
		return jsonForm{T: "none", Loc: loc}, nil
	case *Symbol:
		return jsonForm{T: "symbol", V: x.Name, Loc: loc}, nil
	case *PropertyAccess:
		return jsonForm{T: "propertyAccess", Parts: x.Parts, Loc: loc}, nil
	case *List:
		items, err := toJSONAll(x.Items)
		return jsonForm{T: "list", Items: items, Loc: loc}, err
	case *Array:
		items, err := toJSONAll(x.Items)
		return jsonForm{T: "array", Items: items, Loc: loc}, err
	case *Object:
		items, err := toJSONAll(x.Entries)
		return jsonForm{T: "object", Items: items, Loc: loc}, err
	case *KeyValue:
		k, err := toJSON(x.Key)
		if err != nil {
			return jsonForm{}, err
		}
		v, err := toJSON(x.Value)
		if err != nil {
			return jsonForm{}, err
		}
		return jsonForm{T: "keyValue", Key: &k, Value: &v, Loc: loc}, nil
	case *Unquote:
		in, err := toJSON(x.Inner)
		return jsonForm{T: "unquote", Inner: &in, Loc: loc}, err
	case *Splice:
		in, err := toJSON(x.Inner)
		return jsonForm{T: "splice", Inner: &in, Loc: loc}, err
	}
	return jsonForm{}, fmt.Errorf("unsupported form %T", f)
}

func fromJSONAll(items []rawForm, fallback token.Location) ([]Form, error) {
	out := make([]Form, 0, len(items))
	for i := range items {
		f, err := fromJSON(&items[i], fallback)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func fromJSON(rf *rawForm, fallback token.Location) (Form, error) {
	loc := fallback
	if rf.Loc != nil {
		loc = token.Location{File: rf.Loc.File, Line: rf.Loc.Line, Column: rf.Loc.Column}
	}
	switch rf.T {
	case "integer32":
		var n float64
		if err := json.Unmarshal(rf.V, &n); err != nil {
			return nil, fmt.Errorf("integer32: %w", err)
		}
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, fmt.Errorf("integer32: %v is not a 32-bit integer", n)
		}
		return &Integer32{Value: int32(n), Loc: loc}, nil
	case "float64":
		var v interface{}
		if err := json.Unmarshal(rf.V, &v); err != nil {
			return nil, fmt.Errorf("float64: %w", err)
		}
		switch x := v.(type) {
		case float64:
			return &Float64{Value: x, Loc: loc}, nil
		case string:
			switch x {
			case "NaN":
				return &Float64{Value: math.NaN(), Loc: loc}, nil
			case "Infinity":
				return &Float64{Value: math.Inf(1), Loc: loc}, nil
			case "-Infinity":
				return &Float64{Value: math.Inf(-1), Loc: loc}, nil
			}
		}
		return nil, fmt.Errorf("float64: unexpected value %s", string(rf.V))
	case "string":
		var s string
		if err := json.Unmarshal(rf.V, &s); err != nil {
			return nil, fmt.Errorf("string: %w", err)
		}
		return &StringLiteral{Value: s, Loc: loc}, nil
	case "bool":
		var b bool
		if err := json.Unmarshal(rf.V, &b); err != nil {
			return nil, fmt.Errorf("bool: %w", err)
		}
		return &Bool{Value: b, Loc: loc}, nil
	case "none":
		return &None{Loc: loc}, nil
	case "symbol":
		var s string
		if err := json.Unmarshal(rf.V, &s); err != nil {
			return nil, fmt.Errorf("symbol: %w", err)
		}
		return &Symbol{Name: s, Loc: loc}, nil
	case "propertyAccess":
		if len(rf.Parts) < 2 {
			return nil, fmt.Errorf("propertyAccess needs at least two parts")
		}
		return &PropertyAccess{Parts: rf.Parts, Loc: loc}, nil
	case "list", "array", "object":
		items, err := fromJSONAll(rf.Items, loc)
		if err != nil {
			return nil, err
		}
		switch rf.T {
		case "list":
			return &List{Items: items, Loc: loc}, nil
		case "array":
			return &Array{Items: items, Loc: loc}, nil
		}
		return &Object{Entries: items, Loc: loc}, nil
	case "keyValue":
		if rf.Key == nil || rf.Value == nil {
			return nil, fmt.Errorf("keyValue needs a key and a value")
		}
		k, err := fromJSON(rf.Key, loc)
		if err != nil {
			return nil, err
		}
		v, err := fromJSON(rf.Value, loc)
		if err != nil {
			return nil, err
		}
		return &KeyValue{Key: k, Value: v, Loc: loc}, nil
	case "unquote", "splice":
		if rf.Inner == nil {
			return nil, fmt.Errorf("%s needs an inner form", rf.T)
		}
		in, err := fromJSON(rf.Inner, loc)
		if err != nil {
			return nil, err
		}
		if rf.T == "unquote" {
			return &Unquote{Inner: in, Loc: loc}, nil
		}
		return &Splice{Inner: in, Loc: loc}, nil
	}
	return nil, fmt.Errorf("unknown form tag %q", rf.T)
}
