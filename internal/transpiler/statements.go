package transpiler

import (
	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// scopeCall compiles a block expression into an immediately invoked
// function whose result is the last expression of the block.
func scopeCall(async bool) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if async && !env.IsInAsync() {
			return nil, diagnostics.NewError(diagnostics.ErrT007, call.Loc, "`%s` is only allowed inside an async function", callName(call))
		}
		body, err := withScope(env, symbols.ScopeOptions{IsAsync: async, IsFunction: true}, func() (ktval.Ktvals, error) {
			return compileBody(env, args, true)
		})
		if err != nil {
			return nil, err
		}
		if async {
			return ktval.Wrap("(await (async () => {\n", body, "})())"), nil
		}
		return ktval.Wrap("(() => {\n", body, "})()"), nil
	}
}

func ifCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	elseAt := -1
	for i, a := range args {
		if isKeyword(env, a, "else") {
			if elseAt >= 0 {
				return nil, shapeError(a.GetLocation(), "`else` is specified more than once")
			}
			elseAt = i
		}
	}
	if len(args) == 0 || elseAt == 0 {
		return nil, arityError(call, "needs a condition")
	}
	if elseAt < 0 {
		return nil, shapeError(call.Loc, "`else` not specified")
	}
	thenForms, elseForms := args[1:elseAt], args[elseAt+1:]
	if len(thenForms) == 0 {
		return nil, arityError(call, "needs at least one expression before `else`")
	}
	if len(elseForms) == 0 {
		return nil, arityError(call, "needs at least one expression after `else`")
	}

	cond, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	branch := func(forms []ast.Form) (ktval.Ktvals, error) {
		return withInheritedScope(env, false, func() (ktval.Ktvals, error) {
			return compileExpressions(env, forms)
		})
	}
	thenKs, err := branch(thenForms)
	if err != nil {
		return nil, err
	}
	elseKs, err := branch(elseForms)
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("("), cond, ktval.Text(" ? "), thenKs, ktval.Text(" : "), elseKs, ktval.Text(")")), nil
}

// block renders the statements of forms inside braces, in a block scope.
func block(env *symbols.Env, isLoop bool, forms []ast.Form, prologue func() (ktval.Ktvals, error)) (ktval.Ktvals, ktval.Ktvals, error) {
	var head ktval.Ktvals
	body, err := withInheritedScope(env, isLoop, func() (ktval.Ktvals, error) {
		if prologue != nil {
			var err error
			if head, err = prologue(); err != nil {
				return nil, err
			}
		}
		return compileStatements(env, forms)
	})
	if err != nil {
		return nil, nil, err
	}
	return head, ktval.Wrap("{\n", body, "}"), nil
}

func whenCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectMinArgs(call, args, 1); err != nil {
		return nil, err
	}
	cond, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	_, body, err := block(env, false, args[1:], nil)
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("if ("), cond, ktval.Text(") "), body), nil
}

func whileCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectMinArgs(call, args, 1); err != nil {
		return nil, err
	}
	cond, body, err := block(env, true, args[1:], func() (ktval.Ktvals, error) {
		return compileExpression(env, args[0])
	})
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("while ("), cond, ktval.Text(") "), body), nil
}

// forCall is the C-style loop `(for init condition update body...)`.
func forCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectMinArgs(call, args, 3); err != nil {
		return nil, err
	}
	head, body, err := block(env, true, args[3:], func() (ktval.Ktvals, error) {
		initKs, err := Compile(env, args[0])
		if err != nil {
			return nil, err
		}
		cond, err := compileExpression(env, args[1])
		if err != nil {
			return nil, err
		}
		update, err := compileExpression(env, args[2])
		if err != nil {
			return nil, err
		}
		return ktval.Concat(initKs, ktval.Text("; "), cond, ktval.Text("; "), update), nil
	})
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("for ("), head, ktval.Text(") "), body), nil
}

// forEachCall is `(forEach x iterable body...)`, a for-of loop.
func forEachCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectMinArgs(call, args, 2); err != nil {
		return nil, err
	}
	iterable, err := compileExpression(env, args[1])
	if err != nil {
		return nil, err
	}
	head, body, err := block(env, true, args[2:], func() (ktval.Ktvals, error) {
		if s, ok := args[0].(*ast.Symbol); ok {
			if err := env.Define(s.Loc, s.Name, symbols.Const{}); err != nil {
				return nil, err
			}
			return ktval.Text("const " + s.Name), nil
		}
		pattern, targets, err := parsePattern(args[0])
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if err := env.Define(args[0].GetLocation(), t.ID, symbols.Const{}); err != nil {
				return nil, err
			}
		}
		text, err := backend.RenderAssignee(pattern)
		if err != nil {
			return nil, err
		}
		return ktval.Text("const " + text), nil
	})
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("for ("), head, ktval.Text(" of "), iterable, ktval.Text(") "), body), nil
}

func jumpCall(keyword string) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectArgs(call, args, 0); err != nil {
			return nil, err
		}
		if !env.IsInLoop() {
			return nil, diagnostics.NewError(diagnostics.ErrT007, call.Loc, "`%s` is only allowed inside a loop", keyword)
		}
		return ktval.Text(keyword), nil
	}
}

func returnCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if len(args) > 1 {
		return nil, arityError(call, "expects at most one argument")
	}
	if !env.IsInFunction() {
		return nil, diagnostics.NewError(diagnostics.ErrT007, call.Loc, "`return` is only allowed inside a function")
	}
	if len(args) == 0 {
		return ktval.Text("return"), nil
	}
	v, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("return "), v), nil
}

func throwCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectArgs(call, args, 1); err != nil {
		return nil, err
	}
	v, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("throw "), v), nil
}

type tryState int

const (
	tryInitial tryState = iota
	tryCatchFound
	tryFinallyFound
)

// tryCall is `(try body... catch e handler... finally cleanup...)`.
func tryCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	var (
		state                           = tryInitial
		tryForms, catchForms, finForms  []ast.Form
		catchVar                        *ast.Symbol
		hasCatch, hasFinally, needsName bool
	)
	for _, a := range args {
		switch {
		case isKeyword(env, a, "catch"):
			if state != tryInitial {
				return nil, shapeError(a.GetLocation(), "`catch` must come once, before `finally`")
			}
			state, hasCatch, needsName = tryCatchFound, true, true
		case isKeyword(env, a, "finally"):
			if state == tryFinallyFound {
				return nil, shapeError(a.GetLocation(), "`finally` is specified more than once")
			}
			if needsName {
				return nil, shapeError(a.GetLocation(), "`catch` needs a variable name")
			}
			state, hasFinally = tryFinallyFound, true
		case needsName:
			s, ok := a.(*ast.Symbol)
			if !ok {
				return nil, shapeError(a.GetLocation(), "`catch` needs a variable name")
			}
			catchVar, needsName = s, false
		case state == tryInitial:
			tryForms = append(tryForms, a)
		case state == tryCatchFound:
			catchForms = append(catchForms, a)
		default:
			finForms = append(finForms, a)
		}
	}
	if needsName {
		return nil, shapeError(call.Loc, "`catch` needs a variable name")
	}
	if !hasCatch && !hasFinally {
		return nil, shapeError(call.Loc, "`try` needs `catch` or `finally`")
	}

	_, tryBlock, err := block(env, false, tryForms, nil)
	if err != nil {
		return nil, err
	}
	out := ktval.Concat(ktval.Text("try "), tryBlock)
	if hasCatch {
		_, catchBlock, err := block(env, false, catchForms, func() (ktval.Ktvals, error) {
			return nil, env.Define(catchVar.Loc, catchVar.Name, symbols.Const{})
		})
		if err != nil {
			return nil, err
		}
		out = ktval.Concat(out, ktval.Text(" catch ("+catchVar.Name+") "), catchBlock)
	}
	if hasFinally {
		_, finBlock, err := block(env, false, finForms, nil)
		if err != nil {
			return nil, err
		}
		out = ktval.Concat(out, ktval.Text(" finally "), finBlock)
	}
	return out, nil
}
