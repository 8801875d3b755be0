package transpiler

import (
	"sort"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

func loadNamespace(env *symbols.Env, call *ast.List, args []ast.Form) (*symbols.Namespace, *ast.Symbol, error) {
	if err := topLevelOnly(env, call); err != nil {
		return nil, nil, err
	}
	if err := expectArgs(call, args, 1); err != nil {
		return nil, nil, err
	}
	id, ok := args[0].(*ast.Symbol)
	if !ok {
		return nil, nil, shapeError(args[0].GetLocation(), "`%s` expects a module id", callName(call))
	}
	if env.Loader == nil {
		return nil, nil, diagnostics.NewError(diagnostics.ErrT011, id.Loc, "cannot import `%s`: no module loader", id.Name)
	}
	ns, err := env.Loader.Load(env.Context(), id.Name)
	if err != nil {
		return nil, nil, diagnostics.Wrap(diagnostics.ErrT011, id.Loc, err, "cannot import `%s`", id.Name)
	}
	return ns, id, nil
}

// importCall binds a whole module to its id: `(import lib)`.
func importCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	ns, id, err := loadNamespace(env, call, args)
	if err != nil {
		return nil, err
	}
	if err := env.Define(id.Loc, id.Name, ns); err != nil {
		return nil, err
	}
	var star ktval.Ktvals
	if ns.ReplSpecifier != "" {
		star = ktval.Ktvals{ktval.ImportStarAs{
			ReplSpecifier:   ns.ReplSpecifier,
			ModuleSpecifier: ns.ModuleSpecifier,
			ID:              id.Name,
		}}
	}
	return joinStatements(ensureFormRuntime(env, ns), star), nil
}

// importAnyOfCall binds every member of a module: `(importAnyOf base)`.
func importAnyOfCall(env *symbols.Env, call *ast.List, args []ast.Form) (ktval.Ktvals, error) {
	ns, id, err := loadNamespace(env, call, args)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ns.Entries))
	for name := range ns.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var runtimeIDs []string
	for _, name := range names {
		w := ns.Entries[name]
		if env.IsSeededFrom(name, ns) {
			continue
		}
		if err := env.Define(id.Loc, name, w); err != nil {
			return nil, err
		}
		if ns.ReplSpecifier != "" && symbols.IsRuntimeValue(w) {
			runtimeIDs = append(runtimeIDs, name)
		}
	}
	var members ktval.Ktvals
	if len(runtimeIDs) > 0 {
		members = ktval.Ktvals{ktval.Import{
			ReplSpecifier:   ns.ReplSpecifier,
			ModuleSpecifier: ns.ModuleSpecifier,
			IDs:             runtimeIDs,
		}}
	}
	return joinStatements(ensureFormRuntime(env, ns), members), nil
}

// ensureFormRuntime binds the Form runtime at the top level the first time
// a namespace that needs it is imported.
func ensureFormRuntime(env *symbols.Env, ns *symbols.Namespace) ktval.Ktvals {
	if !ns.NeedsFormRuntime || env.FormRuntimeLoaded() {
		return nil
	}
	env.Set(config.FormRuntimeID, symbols.Const{})
	env.MarkFormRuntimeLoaded()
	return ktval.Ktvals{ktval.ImportStarAs{
		ReplSpecifier:   env.Config.FormRuntime.Repl,
		ModuleSpecifier: env.Config.FormRuntime.Module,
		ID:              config.FormRuntimeID,
	}}
}
