// Package transpiler lowers Custard forms to Ktvals. Compilation is a single
// left-to-right pass over the forms: every form is completely compiled,
// including macro expansion and module loading, before the next one starts.
package transpiler

import (
	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// Compile lowers a single form, which may be a statement.
func Compile(env *symbols.Env, form ast.Form) (ktval.Ktvals, error) {
	ks, _, err := compile(env, form)
	return ks, err
}

// CompileModule compiles the top-level forms of a module into a sequence
// of statements.
func CompileModule(env *symbols.Env, forms []ast.Form) (ktval.Ktvals, error) {
	return compileStatements(env, forms)
}

// CompileChunk compiles one REPL input into the body of an async function
// returning the value of the last form.
func CompileChunk(env *symbols.Env, forms []ast.Form) (ktval.Ktvals, error) {
	return compileBody(env, forms, true)
}

// compile is the dispatch over form kinds. It also reports whether the
// result is a statement.
func compile(env *symbols.Env, form ast.Form) (ktval.Ktvals, bool, error) {
	switch f := form.(type) {
	case *ast.Integer32, *ast.Float64, *ast.StringLiteral, *ast.Bool, *ast.None:
		return ktval.Text(literal(form)), false, nil
	case *ast.Symbol, *ast.PropertyAccess:
		ks, err := compileReference(env, form)
		return ks, false, err
	case *ast.Array:
		ks, err := compileArray(env, f)
		return ks, false, err
	case *ast.Object:
		ks, err := compileObject(env, f)
		return ks, false, err
	case *ast.List:
		return compileCall(env, f)
	case *ast.KeyValue:
		return nil, false, shapeError(f.Loc, "a key-value pair is only allowed inside an object")
	case *ast.Unquote:
		return nil, false, shapeError(f.Loc, "unquote is only allowed inside quasiQuote or as an object key")
	case *ast.Splice:
		return nil, false, shapeError(f.Loc, "splice is only allowed inside a call, an array or an object")
	}
	panic("transpiler: unknown form " + form.GetLocation().String())
}

// compileExpression compiles form where a value is required.
func compileExpression(env *symbols.Env, form ast.Form) (ktval.Ktvals, error) {
	ks, isStatement, err := compile(env, form)
	if err != nil {
		return nil, err
	}
	if isStatement {
		return nil, diagnostics.NewError(diagnostics.ErrT006, form.GetLocation(),
			"`%s` is a statement and cannot be used as an expression", ast.HeadName(form.(*ast.List).Items[0]))
	}
	return ks, nil
}

// compileExpressions compiles forms as a comma expression.
func compileExpressions(env *symbols.Env, forms []ast.Form) (ktval.Ktvals, error) {
	parts := make([]ktval.Ktvals, 0, len(forms))
	for _, f := range forms {
		ks, err := compileExpression(env, f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ks)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return ktval.Wrap("(", ktval.Join(parts, ", "), ")"), nil
}

// compileStatements compiles forms in order, each terminated by `;`.
func compileStatements(env *symbols.Env, forms []ast.Form) (ktval.Ktvals, error) {
	return compileBody(env, forms, false)
}

// compileBody compiles the body of a function or a scope. With
// implicitReturn the value of the last form is returned, unless that form
// is a statement.
func compileBody(env *symbols.Env, forms []ast.Form, implicitReturn bool) (ktval.Ktvals, error) {
	out := ktval.Ktvals{}
	for i, f := range forms {
		ks, isStatement, err := compile(env, f)
		if err != nil {
			return nil, err
		}
		if i == len(forms)-1 && implicitReturn && !isStatement {
			out = ktval.Concat(out, ktval.Text("return "), ks, semicolon())
			continue
		}
		if ks.IsEmpty() {
			continue
		}
		out = ktval.Concat(out, ks, semicolon())
	}
	return out, nil
}
