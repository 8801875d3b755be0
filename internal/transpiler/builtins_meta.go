package transpiler

import (
	"strconv"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/token"
)

func metaNamespace() *symbols.Namespace {
	return &symbols.Namespace{
		Name:             "meta",
		NeedsFormRuntime: true,
		Entries: map[string]symbols.Writer{
			"quote":      symbols.DirectWriter{Call: quoteCall(false)},
			"quasiQuote": symbols.DirectWriter{Call: quoteCall(true)},
			"macro":      symbols.DirectWriter{Call: macroCall, IsStatement: true},
			"readString": symbols.DirectWriter{Call: readStringCall},
			"evaluate":   symbols.FunctionWithHostEnv{Expression: config.EvaluateID},
			"filePath": symbols.DynamicVar{Compute: func(env *symbols.Env, loc token.Location) (ktval.Ktvals, error) {
				return ktval.Text(backend.StringLiteral(env.FilePath)), nil
			}},
			"line": symbols.DynamicVar{Compute: func(env *symbols.Env, loc token.Location) (ktval.Ktvals, error) {
				return ktval.Text(strconv.Itoa(loc.Line)), nil
			}},
		},
	}
}

// macroCall compiles `(macro name (params) body...)` into an async
// function, evaluates it in the host right away and binds name to the
// resulting callable. The function is always rendered for the REPL table,
// so in module mode a macro body sees only what the compile-time host
// holds.
func macroCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := topLevelOnly(env, call); err != nil {
		return nil, err
	}
	if err := expectMinArgs(call, args, 2); err != nil {
		return nil, err
	}
	name, ok := args[0].(*ast.Symbol)
	if !ok {
		return nil, shapeError(args[0].GetLocation(), "a macro needs a name")
	}
	if env.Host == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT010, call.Loc, "cannot define macro `%s`: no host to run it", name.Name)
	}

	leave := env.EnterMacroDefinition()
	params, body, err := buildFunction(env, fnKind{async: true}, args[1], args[2:])
	leave()
	if err != nil {
		return nil, err
	}
	js, err := backend.NewREPLRenderer().Render(ktval.Wrap("(async ("+params+") => {\n", body, "})"))
	if err != nil {
		return nil, err
	}
	callable, err := env.Host.Evaluate(env.Context(), js)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrT010, call.Loc, err, "defining macro `%s`", name.Name)
	}
	if err := env.Define(name.Loc, name.Name, symbols.Macro{Name: name.Name, Callable: callable}); err != nil {
		return nil, err
	}
	env.Logger.Debug().Str("macro", name.Name).Str("location", call.Loc.String()).Msg("macro defined")
	return nil, nil
}

// readStringCall parses its string literal at compile time and quotes the
// resulting form.
func readStringCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectArgs(call, args, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].(*ast.StringLiteral)
	if !ok {
		return nil, shapeError(args[0].GetLocation(), "`%s` expects a string literal", callName(call))
	}
	form, err := parser.ReadStr(parser.Input{Path: s.Loc.File, Contents: s.Value, StartLine: s.Loc.Line})
	if err != nil {
		return nil, err
	}
	q, err := newQuoter(env, call.Loc, false)
	if err != nil {
		return nil, err
	}
	return q.quote(form)
}
