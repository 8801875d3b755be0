// Package ktval is the intermediate representation between the compiler
// and the renderers. The compiler decides what a form means; a renderer
// decides how it prints for the REPL or for a static module.
package ktval

type Ktval interface {
	ktval()
}

// Ktvals is a sequence rendered by concatenation.
type Ktvals []Ktval

// Refer reads a top-level binding.
type Refer struct {
	ID string
}

type Decl int

const (
	DeclNone Decl = iota // plain assignment to an existing binding
	DeclConst
	DeclLet
)

func (d Decl) Keyword() string {
	switch d {
	case DeclConst:
		return "const"
	case DeclLet:
		return "let"
	}
	return ""
}

type Assignee interface {
	assignee()
}

type SimpleAssignee struct {
	ID string
}

// DestructuringArray is `[a, b]`.
type DestructuringArray struct {
	IDs []string
}

type ObjectPatternEntry struct {
	Key string
	ID  string
}

// DestructuringObject is `{a, b: c}`.
type DestructuringObject struct {
	Entries []ObjectPatternEntry
}

func (SimpleAssignee) assignee()      {}
func (DestructuringArray) assignee()  {}
func (DestructuringObject) assignee() {}

// Assign declares or assigns. TopLevel marks bindings living in the
// outermost scope, which the REPL keeps in its pseudo-top-level table.
// Destructuring assignees never have TopLevel set: the compiler lowers
// top-level destructuring into one simple Assign per target.
type Assign struct {
	Decl     Decl
	Assignee Assignee
	Exp      Ktvals
	TopLevel bool
}

// FunctionPostlude is a named top-level function. Body is the complete
// function expression, `function id(...) {...}`.
type FunctionPostlude struct {
	ID   string
	Body Ktvals
}

// Import binds selected members of a module.
type Import struct {
	ReplSpecifier   string
	ModuleSpecifier string
	IDs             []string
}

// ImportStarAs binds a whole module namespace to ID.
type ImportStarAs struct {
	ReplSpecifier   string
	ModuleSpecifier string
	ID              string
}

// Export marks the declaration that follows it as exported.
type Export struct{}

// Other is raw JavaScript text.
type Other struct {
	Text string
}

func (Refer) ktval()            {}
func (Assign) ktval()           {}
func (FunctionPostlude) ktval() {}
func (Import) ktval()           {}
func (ImportStarAs) ktval()     {}
func (Export) ktval()           {}
func (Other) ktval()            {}

// Text is shorthand for a single Other.
func Text(s string) Ktvals {
	return Ktvals{Other{Text: s}}
}

// Concat joins sequences without mutating any of them.
func Concat(parts ...Ktvals) Ktvals {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Ktvals, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Join concatenates parts with sep between them.
func Join(parts []Ktvals, sep string) Ktvals {
	out := Ktvals{}
	for i, p := range parts {
		if i > 0 && sep != "" {
			out = append(out, Other{Text: sep})
		}
		out = append(out, p...)
	}
	return out
}

// Wrap surrounds inner with the given texts.
func Wrap(open string, inner Ktvals, close string) Ktvals {
	return Concat(Text(open), inner, Text(close))
}

// IsEmpty reports whether the sequence renders to nothing in every mode.
func (ks Ktvals) IsEmpty() bool {
	for _, k := range ks {
		if o, ok := k.(Other); !ok || o.Text != "" {
			return false
		}
	}
	return true
}
