package transpiler

import (
	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

func jsNamespace() *symbols.Namespace {
	return &symbols.Namespace{
		Name: "js",
		Entries: map[string]symbols.Writer{
			"new":        symbols.DirectWriter{Call: newCall},
			"typeof":     symbols.DirectWriter{Call: prefix("typeof ")},
			"instanceof": symbols.DirectWriter{Call: binary("instanceof")},
			"index":      symbols.DirectWriter{Call: indexCall},
			"undefined":  symbols.ProvidedConst{},
			"null":       symbols.ProvidedConst{},
		},
	}
}

// newCall is `(new Class args...)`.
func newCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectMinArgs(call, args, 1); err != nil {
		return nil, err
	}
	class, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	argv, err := compileElements(env, args[1:])
	if err != nil {
		return nil, err
	}
	return ktval.Concat(ktval.Text("new ("), class, ktval.Text(")("), argv, ktval.Text(")")), nil
}

// indexCall is `(index object key)`, that is `object[key]`.
func indexCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := expectArgs(call, args, 2); err != nil {
		return nil, err
	}
	obj, err := compileExpression(env, args[0])
	if err != nil {
		return nil, err
	}
	key, err := compileExpression(env, args[1])
	if err != nil {
		return nil, err
	}
	return ktval.Concat(obj, ktval.Text("["), key, ktval.Text("]")), nil
}
