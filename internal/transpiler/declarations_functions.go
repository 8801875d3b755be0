package transpiler

import (
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// fnKind distinguishes the flavours of fn and procedure.
type fnKind struct {
	async     bool
	generator bool
	// procedure bodies have no implicit return.
	procedure bool
}

// isNamedFunction reports whether the arguments of a fn-like call start
// with a name, which makes the call a declaration.
func isNamedFunction(args []ast.Form) bool {
	if len(args) == 0 {
		return false
	}
	_, ok := args[0].(*ast.Symbol)
	return ok
}

func fnCall(kind fnKind) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if isNamedFunction(args) {
			return namedFunction(env, kind, call, args)
		}
		if err := expectMinArgs(call, args, 1); err != nil {
			return nil, err
		}
		params, body, err := buildFunction(env, kind, args[0], args[1:])
		if err != nil {
			return nil, err
		}
		var open string
		switch {
		case kind.generator:
			open = functionKeyword(kind) + " (" + params + ") {\n"
		case kind.async:
			open = "async (" + params + ") => {\n"
		default:
			open = "(" + params + ") => {\n"
		}
		return ktval.Wrap("("+open, body, "})"), nil
	}
}

func functionKeyword(kind fnKind) string {
	kw := "function"
	if kind.generator {
		kw += "*"
	}
	if kind.async {
		kw = "async " + kw
	}
	return kw
}

// namedFunction declares the function in the current scope. At the top
// level it becomes a FunctionPostlude so the REPL can keep it in its table.
func namedFunction(env *symbols.Env, kind fnKind, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	name := args[0].(*ast.Symbol)
	if len(args) < 2 {
		return nil, arityError(call, "expects a parameter list after the name `%s`", name.Name)
	}
	topLevel := env.IsAtTopLevel()
	params, body, err := buildFunction(env, kind, args[1], args[2:])
	if err != nil {
		return nil, err
	}
	if err := env.Define(name.Loc, name.Name, symbols.Const{}); err != nil {
		return nil, err
	}
	fn := ktval.Wrap(functionKeyword(kind)+" "+name.Name+"("+params+") {\n", body, "}")
	if topLevel {
		return ktval.Ktvals{ktval.FunctionPostlude{ID: name.Name, Body: fn}}, nil
	}
	return ktval.Ktvals{ktval.Assign{Decl: ktval.DeclConst, Assignee: ktval.SimpleAssignee{ID: name.Name}, Exp: fn}}, nil
}

// buildFunction compiles the parameters and the body of a function in a
// new function scope.
func buildFunction(env *symbols.Env, kind fnKind, paramList ast.Form, body []ast.Form) (string, ktval.Ktvals, error) {
	pl, ok := paramList.(*ast.List)
	if !ok {
		return "", nil, shapeError(paramList.GetLocation(), "expected a parameter list")
	}
	var params []string
	ks, err := withScope(env, symbols.ScopeOptions{IsAsync: kind.async, IsGenerator: kind.generator, IsFunction: true}, func() (ktval.Ktvals, error) {
		for i, p := range pl.Items {
			switch p := p.(type) {
			case *ast.Symbol:
				if err := env.Define(p.Loc, p.Name, symbols.Const{}); err != nil {
					return nil, err
				}
				params = append(params, p.Name)
			case *ast.Splice:
				rest, ok := p.Inner.(*ast.Symbol)
				if !ok || i != len(pl.Items)-1 {
					return nil, shapeError(p.Loc, "only the last parameter may be `...rest`")
				}
				if err := env.Define(rest.Loc, rest.Name, symbols.Const{}); err != nil {
					return nil, err
				}
				params = append(params, "..."+rest.Name)
			default:
				return nil, shapeError(p.GetLocation(), "a parameter must be a symbol")
			}
		}
		return compileBody(env, body, !kind.procedure)
	})
	if err != nil {
		return "", nil, err
	}
	return strings.Join(params, ", "), ks, nil
}

func awaitCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectArgs(call, args, 1); err != nil {
		return nil, err
	}
	if !env.IsInAsync() {
		return nil, diagnostics.NewError(diagnostics.ErrT007, call.Loc, "`await` is only allowed inside an async function")
	}
	v, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	return ktval.Wrap("(await ", v, ")"), nil
}

func yieldCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if len(args) > 1 {
		return nil, arityError(call, "expects at most one argument")
	}
	if !env.IsInGenerator() {
		return nil, diagnostics.NewError(diagnostics.ErrT007, call.Loc, "`yield` is only allowed inside a generator function")
	}
	if len(args) == 0 {
		return ktval.Text("(yield)"), nil
	}
	v, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	return ktval.Wrap("(yield ", v, ")"), nil
}
