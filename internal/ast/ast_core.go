package ast

import (
	"github.com/custard-lang/custard-sub000/internal/token"
)

// Form is a node of the tree produced by the reader. Forms are immutable:
// the compiler reads them and macros build new ones.
type Form interface {
	GetLocation() token.Location
	Accept(v Visitor)
	formNode()
}

// Visitor is implemented by every consumer that walks Forms exhaustively.
type Visitor interface {
	VisitInteger32(f *Integer32)
	VisitFloat64(f *Float64)
	VisitString(f *StringLiteral)
	VisitBool(f *Bool)
	VisitNone(f *None)
	VisitSymbol(f *Symbol)
	VisitPropertyAccess(f *PropertyAccess)
	VisitList(f *List)
	VisitArray(f *Array)
	VisitObject(f *Object)
	VisitKeyValue(f *KeyValue)
	VisitUnquote(f *Unquote)
	VisitSplice(f *Splice)
}

type Integer32 struct {
	Value int32
	Loc   token.Location
}

func (f *Integer32) GetLocation() token.Location { return f.Loc }
func (f *Integer32) Accept(v Visitor)            { v.VisitInteger32(f) }
func (f *Integer32) formNode()                   {}

type Float64 struct {
	Value float64
	Loc   token.Location
}

func (f *Float64) GetLocation() token.Location { return f.Loc }
func (f *Float64) Accept(v Visitor)            { v.VisitFloat64(f) }
func (f *Float64) formNode()                   {}

type StringLiteral struct {
	Value string
	Loc   token.Location
}

func (f *StringLiteral) GetLocation() token.Location { return f.Loc }
func (f *StringLiteral) Accept(v Visitor)            { v.VisitString(f) }
func (f *StringLiteral) formNode()                   {}

type Bool struct {
	Value bool
	Loc   token.Location
}

func (f *Bool) GetLocation() token.Location { return f.Loc }
func (f *Bool) Accept(v Visitor)            { v.VisitBool(f) }
func (f *Bool) formNode()                   {}

// None is the `none` literal, compiled to `undefined`.
type None struct {
	Loc token.Location
}

func (f *None) GetLocation() token.Location { return f.Loc }
func (f *None) Accept(v Visitor)            { v.VisitNone(f) }
func (f *None) formNode()                   {}

type Symbol struct {
	Name string
	Loc  token.Location
}

func (f *Symbol) GetLocation() token.Location { return f.Loc }
func (f *Symbol) Accept(v Visitor)            { v.VisitSymbol(f) }
func (f *Symbol) formNode()                   {}

// PropertyAccess is a dotted symbol such as `a.b.c`. It always has at
// least two parts.
type PropertyAccess struct {
	Parts []string
	Loc   token.Location
}

func (f *PropertyAccess) GetLocation() token.Location { return f.Loc }
func (f *PropertyAccess) Accept(v Visitor)            { v.VisitPropertyAccess(f) }
func (f *PropertyAccess) formNode()                   {}

// List is a parenthesized call form.
type List struct {
	Items []Form
	Loc   token.Location
}

func (f *List) GetLocation() token.Location { return f.Loc }
func (f *List) Accept(v Visitor)            { v.VisitList(f) }
func (f *List) formNode()                   {}

type Array struct {
	Items []Form
	Loc   token.Location
}

func (f *Array) GetLocation() token.Location { return f.Loc }
func (f *Array) Accept(v Visitor)            { v.VisitArray(f) }
func (f *Array) formNode()                   {}

// Object holds entries that are each a *KeyValue, a shorthand *Symbol or
// an *Unquote.
type Object struct {
	Entries []Form
	Loc     token.Location
}

func (f *Object) GetLocation() token.Location { return f.Loc }
func (f *Object) Accept(v Visitor)            { v.VisitObject(f) }
func (f *Object) formNode()                   {}

// KeyValue is a `key: value` entry of an Object. Key is a *Symbol, a
// *StringLiteral or an *Unquote (computed key).
type KeyValue struct {
	Key   Form
	Value Form
	Loc   token.Location
}

func (f *KeyValue) GetLocation() token.Location { return f.Loc }
func (f *KeyValue) Accept(v Visitor)            { v.VisitKeyValue(f) }
func (f *KeyValue) formNode()                   {}

// Unquote is `$inner`.
type Unquote struct {
	Inner Form
	Loc   token.Location
}

func (f *Unquote) GetLocation() token.Location { return f.Loc }
func (f *Unquote) Accept(v Visitor)            { v.VisitUnquote(f) }
func (f *Unquote) formNode()                   {}

// Splice is `...inner`.
type Splice struct {
	Inner Form
	Loc   token.Location
}

func (f *Splice) GetLocation() token.Location { return f.Loc }
func (f *Splice) Accept(v Visitor)            { v.VisitSplice(f) }
func (f *Splice) formNode()                   {}

// Block is the result of reading a whole source text.
type Block struct {
	File  string
	Forms []Form
}

// SymbolName returns the name of f when it is a plain symbol.
func SymbolName(f Form) (string, bool) {
	if s, ok := f.(*Symbol); ok {
		return s.Name, true
	}
	return "", false
}

// HeadName returns the printed head of a call form: the symbol name or the
// dotted property access.
func HeadName(f Form) string {
	switch h := f.(type) {
	case *Symbol:
		return h.Name
	case *PropertyAccess:
		return joinParts(h.Parts)
	}
	return ""
}

func joinParts(parts []string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '.')
		}
		b = append(b, p...)
	}
	return string(b)
}
