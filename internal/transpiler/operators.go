package transpiler

import (
	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

func compileOperands(env *symbols.Env, args []ast.Form) ([]ktval.Ktvals, error) {
	out := make([]ktval.Ktvals, 0, len(args))
	for _, a := range args {
		ks, err := compileExpression(env, a)
		if err != nil {
			return nil, err
		}
		out = append(out, ks)
	}
	return out, nil
}

// infix joins at least min operands with op.
func infix(op string, min int) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectMinArgs(call, args, min); err != nil {
			return nil, err
		}
		operands, err := compileOperands(env, args)
		if err != nil {
			return nil, err
		}
		return ktval.Wrap("(", ktval.Join(operands, " "+op+" "), ")"), nil
	}
}

func binary(op string) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectArgs(call, args, 2); err != nil {
			return nil, err
		}
		return infix(op, 2)(env, call, args)
	}
}

func prefix(op string) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectArgs(call, args, 1); err != nil {
			return nil, err
		}
		v, err := compileExpression(env, args[0])
		if err != nil {
			return nil, err
		}
		return ktval.Wrap("("+op, v, ")"), nil
	}
}

// minusF negates a single operand and subtracts otherwise.
func minusCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if len(args) == 1 {
		return prefix("-")(env, call, args)
	}
	return infix("-", 2)(env, call, args)
}

// step is incrementF and decrementF. A top-level target lives in the REPL
// table, where `++` cannot reach, so it is rewritten as an assignment.
func step(op string) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectArgs(call, args, 1); err != nil {
			return nil, err
		}
		s, ok := args[0].(*ast.Symbol)
		if !ok {
			return nil, shapeError(args[0].GetLocation(), "`%s` expects a variable", callName(call))
		}
		res, err := resolveVar(env, s)
		if err != nil {
			return nil, err
		}
		if res.IsTopLevel(env) {
			return ktval.Ktvals{ktval.Assign{
				Assignee: ktval.SimpleAssignee{ID: s.Name},
				Exp:      ktval.Ktvals{ktval.Refer{ID: s.Name}, ktval.Other{Text: " " + op[:1] + " 1"}},
				TopLevel: true,
			}}, nil
		}
		return ktval.Text("(" + op + s.Name + ")"), nil
	}
}
