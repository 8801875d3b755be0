package transpiler

import (
	"strconv"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// patternTarget is one binding of a destructuring pattern: the id and how
// to read it off the destructured value.
type patternTarget struct {
	ID       string
	accessor func(obj string) string
}

// parsePattern turns an array or object form into a destructuring
// assignee.
func parsePattern(form ast.Form) (ktval.Assignee, []patternTarget, error) {
	switch p := form.(type) {
	case *ast.Array:
		ids := make([]string, 0, len(p.Items))
		targets := make([]patternTarget, 0, len(p.Items))
		for i, item := range p.Items {
			idx := i
			switch it := item.(type) {
			case *ast.Symbol:
				ids = append(ids, it.Name)
				targets = append(targets, patternTarget{ID: it.Name, accessor: func(obj string) string {
					return obj + "[" + strconv.Itoa(idx) + "]"
				}})
			case *ast.Splice:
				rest, ok := it.Inner.(*ast.Symbol)
				if !ok || i != len(p.Items)-1 {
					return nil, nil, shapeError(it.Loc, "only the last element of an array pattern may be `...rest`")
				}
				ids = append(ids, "..."+rest.Name)
				targets = append(targets, patternTarget{ID: rest.Name, accessor: func(obj string) string {
					return obj + ".slice(" + strconv.Itoa(idx) + ")"
				}})
			default:
				return nil, nil, shapeError(item.GetLocation(), "an array pattern may only contain symbols")
			}
		}
		return ktval.DestructuringArray{IDs: ids}, targets, nil
	case *ast.Object:
		entries := make([]ktval.ObjectPatternEntry, 0, len(p.Entries))
		targets := make([]patternTarget, 0, len(p.Entries))
		for _, e := range p.Entries {
			var key, id string
			switch en := e.(type) {
			case *ast.Symbol:
				key, id = en.Name, en.Name
			case *ast.KeyValue:
				v, ok := en.Value.(*ast.Symbol)
				if !ok {
					return nil, nil, shapeError(en.Value.GetLocation(), "the value of an object pattern entry must be a symbol")
				}
				switch k := en.Key.(type) {
				case *ast.Symbol:
					key = k.Name
				case *ast.StringLiteral:
					key = k.Value
				default:
					return nil, nil, shapeError(en.Key.GetLocation(), "the key of an object pattern entry must be a symbol or a string")
				}
				id = v.Name
			default:
				return nil, nil, shapeError(e.GetLocation(), "an object pattern may only contain symbols and `key: symbol` entries")
			}
			k := key
			entries = append(entries, ktval.ObjectPatternEntry{Key: propertyKey(key), ID: id})
			targets = append(targets, patternTarget{ID: id, accessor: func(obj string) string {
				return memberAccess(obj, k)
			}})
		}
		return ktval.DestructuringObject{Entries: entries}, targets, nil
	}
	return nil, nil, shapeError(form.GetLocation(), "expected a symbol, an array pattern or an object pattern")
}

// declare is the body of const and let.
func declare(decl ktval.Decl, w symbols.Writer) symbols.DirectCall {
	return func(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
		if len(args) != 2 {
			return nil, arityError(call, "expects an assignee and an expression")
		}
		exp, err := compileExpression(env, args[1])
		if err != nil {
			return nil, err
		}
		return bindTo(env, decl, w, args[0], exp)
	}
}

// bindTo declares target in the current scope and assigns exp to it.
// Top-level destructuring is lowered through a temporary because the REPL
// table cannot be the target of a JavaScript destructuring assignment.
func bindTo(env *symbols.Env, decl ktval.Decl, w symbols.Writer, target ast.Form, exp ktval.Ktvals) (ktval.Ktvals, error) {
	topLevel := env.IsAtTopLevel()
	if s, ok := target.(*ast.Symbol); ok {
		if err := env.Define(s.Loc, s.Name, w); err != nil {
			return nil, err
		}
		return ktval.Ktvals{ktval.Assign{Decl: decl, Assignee: ktval.SimpleAssignee{ID: s.Name}, Exp: exp, TopLevel: topLevel}}, nil
	}

	pattern, targets, err := parsePattern(target)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if err := env.Define(target.GetLocation(), t.ID, w); err != nil {
			return nil, err
		}
	}
	if !topLevel {
		return ktval.Ktvals{ktval.Assign{Decl: decl, Assignee: pattern, Exp: exp}}, nil
	}

	tmp := env.NextTempID()
	out := ktval.Ktvals{ktval.Assign{Decl: ktval.DeclConst, Assignee: ktval.SimpleAssignee{ID: tmp}, Exp: exp}}
	for _, t := range targets {
		out = ktval.Concat(out, semicolon(), ktval.Ktvals{ktval.Assign{
			Decl:     decl,
			Assignee: ktval.SimpleAssignee{ID: t.ID},
			Exp:      ktval.Text(t.accessor(tmp)),
			TopLevel: true,
		}})
	}
	return out, nil
}

// resolveVar resolves an assignment target that must be a `let` binding.
func resolveVar(env *symbols.Env, s *ast.Symbol) (symbols.Resolved, error) {
	res, err := env.ReferTo(s)
	if err != nil {
		return res, err
	}
	if _, ok := res.Writer.(symbols.Var); !ok {
		return res, diagnostics.NewError(diagnostics.ErrT012, s.Loc, "`%s` is %s and cannot be assigned", s.Name, symbols.Describe(res.Writer))
	}
	return res, nil
}

func assignCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if len(args) != 2 {
		return nil, arityError(call, "expects an assignee and an expression")
	}
	exp, err := compileExpression(env, args[1])
	if err != nil {
		return nil, err
	}

	switch t := args[0].(type) {
	case *ast.Symbol:
		res, err := resolveVar(env, t)
		if err != nil {
			return nil, err
		}
		return ktval.Ktvals{ktval.Assign{Assignee: ktval.SimpleAssignee{ID: t.Name}, Exp: exp, TopLevel: res.IsTopLevel(env)}}, nil
	case *ast.PropertyAccess:
		res, err := env.ReferTo(t)
		if err != nil {
			return nil, err
		}
		if len(res.Rest) == 0 {
			return nil, diagnostics.NewError(diagnostics.ErrT012, t.Loc, "`%s` is %s and cannot be assigned", ast.HeadName(t), symbols.Describe(res.Writer))
		}
		obj, err := valueOf(env, res, t.Loc, ast.HeadName(t))
		if err != nil {
			return nil, err
		}
		return ktval.Wrap("(", ktval.Concat(obj, ktval.Text(" = "), exp), ")"), nil
	case *ast.Array, *ast.Object:
		_, targets, err := parsePattern(t)
		if err != nil {
			return nil, err
		}
		tmp := env.NextTempID()
		parts := make([]ktval.Ktvals, 0, len(targets)+1)
		for _, target := range targets {
			res, err := resolveVar(env, &ast.Symbol{Name: target.ID, Loc: t.GetLocation()})
			if err != nil {
				return nil, err
			}
			parts = append(parts, ktval.Ktvals{ktval.Assign{
				Assignee: ktval.SimpleAssignee{ID: target.ID},
				Exp:      ktval.Text(target.accessor(tmp)),
				TopLevel: res.IsTopLevel(env),
			}})
		}
		parts = append(parts, ktval.Text(tmp))
		// ((tmp) => (a = tmp[0], b = tmp[1], tmp))(exp)
		return ktval.Concat(
			ktval.Text("(("+tmp+") => ("),
			ktval.Join(parts, ", "),
			ktval.Text("))("),
			exp,
			ktval.Text(")"),
		), nil
	}
	return nil, shapeError(args[0].GetLocation(), "expected a symbol, a property access or a pattern to assign to")
}

// recursiveCall pre-declares the ids of its declarations as placeholders
// so the declarations can refer to each other.
func recursiveCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if len(args) == 0 {
		return nil, arityError(call, "expects at least one declaration")
	}
	ids := make([]*ast.Symbol, 0, len(args))
	for _, a := range args {
		l, ok := a.(*ast.List)
		head := headOf(a)
		if !ok || len(l.Items) < 2 || (head != "const" && head != "fn" && head != "procedure") {
			return nil, shapeError(a.GetLocation(), "`recursive` only accepts `const`, `fn` and `procedure` declarations")
		}
		id, ok := l.Items[1].(*ast.Symbol)
		if !ok {
			return nil, shapeError(l.Items[1].GetLocation(), "a recursive declaration must declare a single symbol")
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		if err := env.Define(id.Loc, id.Name, symbols.RecursiveConst{}); err != nil {
			return nil, err
		}
	}

	parts := make([]ktval.Ktvals, 0, len(args))
	for _, a := range args {
		ks, err := Compile(env, a)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ks)
	}
	for _, id := range ids {
		if w, _, _ := env.Find(id.Name); w == (symbols.RecursiveConst{}) {
			return nil, diagnostics.NewError(diagnostics.ErrT001, id.Loc, "`%s` was declared recursive but never defined", id.Name)
		}
	}
	return ktval.Join(parts, ";\n"), nil
}

// exportCall prefixes each top-level declaration of its arguments with
// Export and records the exported ids.
func exportCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	if err := topLevelOnly(env, call); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, arityError(call, "expects at least one declaration")
	}
	parts := make([]ktval.Ktvals, 0, len(args))
	for _, a := range args {
		l, ok := a.(*ast.List)
		var w symbols.Writer
		if ok && len(l.Items) > 0 {
			w, ok = lookup(env, l.Items[0])
		}
		dw, isDirect := w.(symbols.DirectWriter)
		if !ok || !isDirect || !dw.IsExportable {
			return nil, diagnostics.NewError(diagnostics.ErrT014, a.GetLocation(), "only declarations can be exported")
		}
		ks, err := Compile(env, a)
		if err != nil {
			return nil, err
		}
		exported, ids := markExports(ks)
		if len(ids) == 0 {
			return nil, diagnostics.NewError(diagnostics.ErrT014, a.GetLocation(), "`%s` declares nothing to export", callName(l))
		}
		for _, id := range ids {
			env.AddExport(id)
		}
		parts = append(parts, exported)
	}
	return ktval.Join(parts, ";\n"), nil
}

func markExports(ks ktval.Ktvals) (ktval.Ktvals, []string) {
	out := make(ktval.Ktvals, 0, len(ks)+1)
	var ids []string
	for _, k := range ks {
		switch k := k.(type) {
		case ktval.Assign:
			s, ok := k.Assignee.(ktval.SimpleAssignee)
			if ok && k.TopLevel && k.Decl != ktval.DeclNone && !strings.HasPrefix(s.ID, config.TempIDPrefix) {
				out = append(out, ktval.Export{})
				ids = append(ids, s.ID)
			}
		case ktval.FunctionPostlude:
			out = append(out, ktval.Export{})
			ids = append(ids, k.ID)
		}
		out = append(out, k)
	}
	return out, ids
}
