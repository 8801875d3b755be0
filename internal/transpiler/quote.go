package transpiler

import (
	"strconv"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// quoter renders a form as calls to the Form runtime constructors that
// rebuild it at run time.
type quoter struct {
	env     *symbols.Env
	runtime ktval.Ktvals
	// quasi compiles unquoted forms instead of quoting them.
	quasi bool
}

func newQuoter(env *symbols.Env, loc token.Location, quasi bool) (*quoter, error) {
	_, depth, ok := env.Find(config.FormRuntimeID)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT001, loc, "quoting needs the Form runtime: import `meta` first")
	}
	var rt ktval.Ktval = ktval.Other{Text: config.FormRuntimeID}
	if env.IsTopLevelDepth(depth) {
		rt = ktval.Refer{ID: config.FormRuntimeID}
	}
	return &quoter{env: env, runtime: ktval.Ktvals{rt}, quasi: quasi}, nil
}

func (q *quoter) construct(name string, args ...ktval.Ktvals) ktval.Ktvals {
	return ktval.Concat(q.runtime, ktval.Text("."+name+"("), ktval.Join(args, ", "), ktval.Text(")"))
}

func (q *quoter) quote(form ast.Form) (ktval.Ktvals, error) {
	switch f := form.(type) {
	case *ast.Integer32:
		return q.construct("integer32", ktval.Text(strconv.Itoa(int(f.Value)))), nil
	case *ast.Float64:
		return q.construct("float64", ktval.Text(floatLiteral(f.Value))), nil
	case *ast.StringLiteral:
		return q.construct("string", ktval.Text(backend.StringLiteral(f.Value))), nil
	case *ast.Bool:
		return q.construct("reservedSymbol", ktval.Text(strconv.FormatBool(f.Value))), nil
	case *ast.None:
		return q.construct("reservedSymbol", ktval.Text("undefined")), nil
	case *ast.Symbol:
		return q.construct("symbol", ktval.Text(backend.StringLiteral(f.Name))), nil
	case *ast.PropertyAccess:
		parts := make([]ktval.Ktvals, len(f.Parts))
		for i, p := range f.Parts {
			parts[i] = ktval.Text(backend.StringLiteral(p))
		}
		return q.construct("propertyAccess", parts...), nil
	case *ast.List:
		return q.sequence("list", f.Items)
	case *ast.Array:
		return q.sequence("array", f.Items)
	case *ast.Object:
		return q.sequence("object", f.Entries)
	case *ast.KeyValue:
		k, err := q.quote(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := q.quote(f.Value)
		if err != nil {
			return nil, err
		}
		return q.construct("keyValue", k, v), nil
	case *ast.Unquote:
		if q.quasi {
			return compileExpression(q.env, f.Inner)
		}
		inner, err := q.quote(f.Inner)
		if err != nil {
			return nil, err
		}
		return q.construct("unquote", inner), nil
	case *ast.Splice:
		if _, ok := f.Inner.(*ast.Unquote); ok && q.quasi {
			return nil, shapeError(f.Loc, "a splice must be inside a list, an array or an object")
		}
		inner, err := q.quote(f.Inner)
		if err != nil {
			return nil, err
		}
		return q.construct("splice", inner), nil
	}
	return nil, shapeError(form.GetLocation(), "cannot quote this form")
}

// sequence quotes the items of a list, an array or an object. Inside
// quasiQuote `...$xs` splices the elements of xs in place.
func (q *quoter) sequence(constructor string, items []ast.Form) (ktval.Ktvals, error) {
	args := make([]ktval.Ktvals, 0, len(items))
	for _, item := range items {
		if s, ok := item.(*ast.Splice); ok && q.quasi {
			if u, ok := s.Inner.(*ast.Unquote); ok {
				v, err := compileExpression(q.env, u.Inner)
				if err != nil {
					return nil, err
				}
				args = append(args, q.construct("spread", v))
				continue
			}
		}
		ks, err := q.quote(item)
		if err != nil {
			return nil, err
		}
		args = append(args, ks)
	}
	return q.construct(constructor, args...), nil
}

func quoteCall(quasi bool) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if err := expectArgs(call, args, 1); err != nil {
			return nil, err
		}
		q, err := newQuoter(env, call.Loc, quasi)
		if err != nil {
			return nil, err
		}
		return q.quote(args[0])
	}
}
