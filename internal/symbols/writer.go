package symbols

import (
	"context"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// Writer classifies what a bound identifier is to the compiler.
type Writer interface {
	writer()
}

// ContextualKeyword is only meaningful inside its companion form, like
// `else` inside `if`.
type ContextualKeyword struct {
	Companion string
}

// Var is a binding introduced by `let`.
type Var struct{}

// Const is a binding introduced by `const`, a function parameter, or an
// imported runtime value.
type Const struct{}

// RecursiveConst is a placeholder installed by `recursive` so that the
// declarations of the group can refer to each other before they are
// compiled.
type RecursiveConst struct{}

// Namespace is an imported module. Entries may themselves be namespaces.
// A namespace with an empty ReplSpecifier exists only at compile time;
// otherwise it is also a JavaScript module object at run time.
type Namespace struct {
	Name            string
	Entries         map[string]Writer
	ReplSpecifier   string
	ModuleSpecifier string

	// NeedsFormRuntime makes importing the namespace also bind the Form
	// runtime used by quote.
	NeedsFormRuntime bool
}

// DirectCall receives the raw, uncompiled argument forms of a call.
type DirectCall func(env *Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error)

// DirectWriter is a compiler intrinsic.
type DirectWriter struct {
	Call        DirectCall
	IsStatement bool
	// StatementWhen overrides IsStatement for forms whose kind depends on
	// their arguments, like the named and anonymous forms of `fn`.
	StatementWhen func(args []ast.Form) bool
	IsExportable  bool
}

// IsStatementCall reports whether a call with args is a statement.
func (w DirectWriter) IsStatementCall(args []ast.Form) bool {
	if w.StatementWhen != nil {
		return w.StatementWhen(args)
	}
	return w.IsStatement
}

// FunctionWithHostEnv is a runtime function that needs the live host, so
// it can only be called from REPL code or from a macro body.
type FunctionWithHostEnv struct {
	Expression string
}

// ProvidedConst is a host global referenced by its plain name.
type ProvidedConst struct{}

// DynamicVar is recomputed at every reference.
type DynamicVar struct {
	Compute func(env *Env, loc token.Location) (ktval.Ktvals, error)
}

// Macro expands a call's raw argument forms into a new form.
type Macro struct {
	Name     string
	Callable host.Value
}

func (ContextualKeyword) writer()   {}
func (Var) writer()                 {}
func (Const) writer()               {}
func (RecursiveConst) writer()      {}
func (*Namespace) writer()          {}
func (DirectWriter) writer()        {}
func (FunctionWithHostEnv) writer() {}
func (ProvidedConst) writer()       {}
func (DynamicVar) writer()          {}
func (Macro) writer()               {}

// IsRuntimeValue reports whether references to w compile to an ordinary
// JavaScript value.
func IsRuntimeValue(w Writer) bool {
	switch w.(type) {
	case Var, Const, RecursiveConst, ProvidedConst:
		return true
	}
	return false
}

// ModuleLoader is the collaborator that turns an import id into a
// namespace. Implementations cache and detect cycles themselves.
type ModuleLoader interface {
	Load(ctx context.Context, id string) (*Namespace, error)
}

// Describe names the kind of w for error messages.
func Describe(w Writer) string {
	switch w := w.(type) {
	case ContextualKeyword:
		return "a contextual keyword of `" + w.Companion + "`"
	case Var:
		return "a variable"
	case Const:
		return "a constant"
	case RecursiveConst:
		return "a recursive constant"
	case *Namespace:
		return "a namespace"
	case DirectWriter:
		return "a built-in form"
	case FunctionWithHostEnv:
		return "a REPL-only function"
	case ProvidedConst:
		return "a host global"
	case DynamicVar:
		return "a dynamic variable"
	case Macro:
		return "a macro"
	}
	return "unknown"
}
