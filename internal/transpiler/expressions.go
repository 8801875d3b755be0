package transpiler

import (
	"math"
	"strconv"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/token"
)

func literal(form ast.Form) string {
	switch f := form.(type) {
	case *ast.Integer32:
		if f.Value < 0 {
			return "(" + strconv.Itoa(int(f.Value)) + ")"
		}
		return strconv.Itoa(int(f.Value))
	case *ast.Float64:
		return floatLiteral(f.Value)
	case *ast.StringLiteral:
		return backend.StringLiteral(f.Value)
	case *ast.Bool:
		return strconv.FormatBool(f.Value)
	case *ast.None:
		return "undefined"
	}
	return ""
}

func floatLiteral(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "(-Infinity)"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v < 0 || (v == 0 && math.Signbit(v)) {
		return "(" + s + ")"
	}
	return s
}

func compileReference(env *symbols.Env, form ast.Form) (ktval.Ktvals, error) {
	res, err := env.ReferTo(form)
	if err != nil {
		return nil, err
	}
	return valueOf(env, res, form.GetLocation(), ast.HeadName(form))
}

// valueOf renders a resolved reference used as a value.
func valueOf(env *symbols.Env, res symbols.Resolved, loc token.Location, name string) (ktval.Ktvals, error) {
	switch w := res.Writer.(type) {
	case symbols.Var, symbols.Const, symbols.RecursiveConst:
		return runtimePath(env, res), nil
	case symbols.ProvidedConst:
		if len(res.Path) == 0 {
			return ktval.Text(res.RootID + dotted(res.Rest)), nil
		}
		return ktval.Text(res.Path[len(res.Path)-1] + dotted(res.Rest)), nil
	case *symbols.Namespace:
		if w.ReplSpecifier == "" {
			return nil, shapeError(loc, "`%s` is a namespace available only at compile time, not a value", name)
		}
		return runtimePath(env, res), nil
	case symbols.DynamicVar:
		return w.Compute(env, loc)
	case symbols.FunctionWithHostEnv:
		if err := checkHostEnv(env, loc, name); err != nil {
			return nil, err
		}
		return ktval.Text(w.Expression + dotted(res.Rest)), nil
	case symbols.ContextualKeyword:
		return nil, diagnostics.NewError(diagnostics.ErrT008, loc, "`%s` must be used inside `%s`", name, w.Companion)
	}
	return nil, shapeError(loc, "`%s` is %s and cannot be used as a value", name, symbols.Describe(res.Writer))
}

// runtimePath renders a runtime binding followed by its property chain.
// Top-level bindings go through Refer so the REPL can redirect them to its
// table.
func runtimePath(env *symbols.Env, res symbols.Resolved) ktval.Ktvals {
	var head ktval.Ktval = ktval.Other{Text: res.RootID}
	if res.IsTopLevel(env) {
		head = ktval.Refer{ID: res.RootID}
	}
	rest := dotted(append(append([]string{}, res.Path...), res.Rest...))
	if rest == "" {
		return ktval.Ktvals{head}
	}
	return ktval.Ktvals{head, ktval.Other{Text: rest}}
}

func checkHostEnv(env *symbols.Env, loc token.Location, name string) error {
	if env.Mode == symbols.ModeREPL || env.IsInMacroDefinition() {
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrT009, loc, "`%s` is not available except in REPL or macro definition", name)
}

// compileSpreadable compiles an element of a call, an array or an object
// where `...x` spreads x.
func compileSpreadable(env *symbols.Env, form ast.Form) (ktval.Ktvals, error) {
	if s, ok := form.(*ast.Splice); ok {
		inner, err := compileExpression(env, s.Inner)
		if err != nil {
			return nil, err
		}
		return ktval.Concat(ktval.Text("..."), inner), nil
	}
	return compileExpression(env, form)
}

func compileElements(env *symbols.Env, forms []ast.Form) (ktval.Ktvals, error) {
	parts := make([]ktval.Ktvals, 0, len(forms))
	for _, f := range forms {
		ks, err := compileSpreadable(env, f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ks)
	}
	return ktval.Join(parts, ", "), nil
}

func compileArray(env *symbols.Env, arr *ast.Array) (ktval.Ktvals, error) {
	items, err := compileElements(env, arr.Items)
	if err != nil {
		return nil, err
	}
	return ktval.Wrap("[", items, "]"), nil
}

func compileObject(env *symbols.Env, obj *ast.Object) (ktval.Ktvals, error) {
	parts := make([]ktval.Ktvals, 0, len(obj.Entries))
	for _, e := range obj.Entries {
		ks, err := compileObjectEntry(env, e)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ks)
	}
	return ktval.Wrap("({", ktval.Join(parts, ", "), "})"), nil
}

func compileObjectEntry(env *symbols.Env, entry ast.Form) (ktval.Ktvals, error) {
	switch e := entry.(type) {
	case *ast.Symbol:
		v, err := compileReference(env, e)
		if err != nil {
			return nil, err
		}
		return ktval.Concat(ktval.Text(propertyKey(e.Name)+": "), v), nil
	case *ast.Splice:
		return compileSpreadable(env, e)
	case *ast.KeyValue:
		key, err := compileObjectKey(env, e.Key)
		if err != nil {
			return nil, err
		}
		v, err := compileExpression(env, e.Value)
		if err != nil {
			return nil, err
		}
		return ktval.Concat(key, ktval.Text(": "), v), nil
	}
	return nil, shapeError(entry.GetLocation(), "an object entry must be `key: value`, a symbol or a spread")
}

func compileObjectKey(env *symbols.Env, key ast.Form) (ktval.Ktvals, error) {
	switch k := key.(type) {
	case *ast.Symbol:
		return ktval.Text(propertyKey(k.Name)), nil
	case *ast.StringLiteral:
		return ktval.Text(backend.StringLiteral(k.Value)), nil
	case *ast.Integer32:
		return ktval.Text(strconv.Itoa(int(k.Value))), nil
	case *ast.Unquote:
		inner, err := compileExpression(env, k.Inner)
		if err != nil {
			return nil, err
		}
		return ktval.Wrap("[", inner, "]"), nil
	}
	return nil, shapeError(key.GetLocation(), "an object key must be a symbol, a string, an integer or an unquoted expression")
}

func compileCall(env *symbols.Env, call *ast.List) (ktval.Ktvals, bool, error) {
	if len(call.Items) == 0 {
		return nil, false, shapeError(call.Loc, "an empty list cannot be compiled; quote it to build a list form")
	}
	head, args := call.Items[0], call.Items[1:]

	var fn ktval.Ktvals
	switch head.(type) {
	case *ast.Symbol, *ast.PropertyAccess:
		res, err := env.ReferTo(head)
		if err != nil {
			return nil, false, err
		}
		switch w := res.Writer.(type) {
		case symbols.DirectWriter:
			ks, err := w.Call(env, call, args)
			return ks, w.IsStatementCall(args), err
		case symbols.Macro:
			return expandMacro(env, w, call, args)
		case *symbols.Namespace:
			return nil, false, shapeError(head.GetLocation(), "`%s` is a namespace and cannot be called", ast.HeadName(head))
		}
		fn, err = valueOf(env, res, head.GetLocation(), ast.HeadName(head))
		if err != nil {
			return nil, false, err
		}
	default:
		v, err := compileExpression(env, head)
		if err != nil {
			return nil, false, err
		}
		fn = ktval.Wrap("(", v, ")")
	}

	argv, err := compileElements(env, args)
	if err != nil {
		return nil, false, err
	}
	return ktval.Concat(fn, ktval.Wrap("(", argv, ")")), false, nil
}

// expandMacro runs the macro on the raw argument forms and compiles the
// form it returns in place of the call.
func expandMacro(env *symbols.Env, m symbols.Macro, call *ast.List, args []ast.Form) (ktval.Ktvals, bool, error) {
	if env.Host == nil {
		return nil, false, diagnostics.NewError(diagnostics.ErrT010, call.Loc, "cannot expand macro `%s`: no host to run it", m.Name)
	}
	expanded, err := env.Host.Invoke(env.Context(), m.Callable, args, call.Loc)
	if err != nil {
		return nil, false, diagnostics.Wrap(diagnostics.ErrT010, call.Loc, err, "expanding macro `%s`", m.Name)
	}
	env.Logger.Debug().Str("macro", m.Name).Str("location", call.Loc.String()).Msg("macro expanded")
	return compile(env, expanded)
}
