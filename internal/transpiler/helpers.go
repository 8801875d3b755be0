package transpiler

import (
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/lexer"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// formParts splits a symbol or property access into its parts.
func formParts(f ast.Form) ([]string, bool) {
	switch f := f.(type) {
	case *ast.Symbol:
		return []string{f.Name}, true
	case *ast.PropertyAccess:
		return f.Parts, true
	}
	return nil, false
}

// lookup resolves a symbol or property access without recording a
// reference.
func lookup(env *symbols.Env, f ast.Form) (symbols.Writer, bool) {
	parts, ok := formParts(f)
	if !ok {
		return nil, false
	}
	w, _, ok := env.Find(parts[0])
	if !ok {
		return nil, false
	}
	for _, p := range parts[1:] {
		ns, isNS := w.(*symbols.Namespace)
		if !isNS {
			return nil, false
		}
		if w, ok = ns.Entries[p]; !ok {
			return nil, false
		}
	}
	return w, true
}

// isKeyword reports whether f names the contextual keyword `name`.
func isKeyword(env *symbols.Env, f ast.Form, name string) bool {
	parts, ok := formParts(f)
	if !ok || parts[len(parts)-1] != name {
		return false
	}
	w, ok := lookup(env, f)
	if !ok {
		return false
	}
	_, ok = w.(symbols.ContextualKeyword)
	return ok
}

// headOf returns the last part of a call's head, or "" when the head is
// not a name.
func headOf(f ast.Form) string {
	l, ok := f.(*ast.List)
	if !ok || len(l.Items) == 0 {
		return ""
	}
	parts, ok := formParts(l.Items[0])
	if !ok {
		return ""
	}
	return parts[len(parts)-1]
}

func callName(call *ast.List) string {
	if len(call.Items) == 0 {
		return "()"
	}
	return ast.HeadName(call.Items[0])
}

func arityError(call *ast.List, format string, args ...interface{}) error {
	return diagnostics.NewError(diagnostics.ErrT004, call.Loc, "`"+callName(call)+"` "+format, args...)
}

func expectArgs(call *ast.List, args []ast.Form, n int) error {
	if len(args) != n {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return arityError(call, "expects %d argument%s, got %d", n, plural, len(args))
	}
	return nil
}

func expectMinArgs(call *ast.List, args []ast.Form, n int) error {
	if len(args) < n {
		return arityError(call, "expects at least %d argument(s), got %d", n, len(args))
	}
	return nil
}

func topLevelOnly(env *symbols.Env, call *ast.List) error {
	if !env.IsAtTopLevel() {
		return diagnostics.NewError(diagnostics.ErrT013, call.Loc, "`%s` is only allowed at the top level", callName(call))
	}
	return nil
}

// withScope runs fn inside a fresh scope and always pops it.
func withScope(env *symbols.Env, opts symbols.ScopeOptions, fn func() (ktval.Ktvals, error)) (ktval.Ktvals, error) {
	env.PushScope(opts)
	defer env.PopScope()
	return fn()
}

func withInheritedScope(env *symbols.Env, isLoop bool, fn func() (ktval.Ktvals, error)) (ktval.Ktvals, error) {
	env.PushInheritedScope(isLoop)
	defer env.PopScope()
	return fn()
}

// propertyKey renders an object key. Identifiers stay bare.
func propertyKey(name string) string {
	if lexer.IsIdentifier(name) {
		return name
	}
	return backend.StringLiteral(name)
}

// memberAccess renders the access of key on the expression text obj.
func memberAccess(obj, key string) string {
	if lexer.IsIdentifier(key) {
		return obj + "." + key
	}
	return obj + "[" + backend.StringLiteral(key) + "]"
}

func dotted(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return "." + strings.Join(parts, ".")
}

// joinStatements joins the non-empty parts with `;`.
func joinStatements(parts ...ktval.Ktvals) ktval.Ktvals {
	nonEmpty := make([]ktval.Ktvals, 0, len(parts))
	for _, p := range parts {
		if len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return ktval.Join(nonEmpty, ";\n")
}

func semicolon() ktval.Ktvals {
	return ktval.Text(";\n")
}

func shapeError(loc token.Location, format string, args ...interface{}) error {
	return diagnostics.NewError(diagnostics.ErrT005, loc, format, args...)
}
