package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/token"
)

func sym(name string) *ast.Symbol {
	return &ast.Symbol{Name: name, Loc: token.Location{Line: 1, Column: 1}}
}

func TestDefineTwiceInSameScope(t *testing.T) {
	env := NewEnv(EnvOptions{})
	require.NoError(t, env.Define(token.Location{}, "y", Var{}))
	err := env.Define(token.Location{}, "y", Var{})
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT002), "got %v", err)
}

func TestShadowingAfterReferenceIsRejected(t *testing.T) {
	env := NewEnv(EnvOptions{})
	require.NoError(t, env.Define(token.Location{}, "v0", Const{}))

	env.PushScope(ScopeOptions{})
	_, err := env.ReferTo(sym("v0"))
	require.NoError(t, err)
	err = env.Define(token.Location{}, "v0", Const{})
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT003), "got %v", err)

	// A nested scope that referred to the outer binding blocks its parent too.
	env.PopScope()
	env.PushScope(ScopeOptions{})
	env.PushScope(ScopeOptions{})
	_, err = env.ReferTo(sym("v0"))
	require.NoError(t, err)
	env.PopScope()
	err = env.Define(token.Location{}, "v0", Const{})
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT003), "got %v", err)
}

func TestShadowingInSiblingScopeIsAllowed(t *testing.T) {
	env := NewEnv(EnvOptions{})
	require.NoError(t, env.Define(token.Location{}, "v0", Const{}))

	env.PushScope(ScopeOptions{})
	_, err := env.ReferTo(sym("v0"))
	require.NoError(t, err)
	env.PopScope()

	env.PushScope(ScopeOptions{})
	assert.NoError(t, env.Define(token.Location{}, "v0", Const{}))
	env.PopScope()
}

func TestScopePaths(t *testing.T) {
	assert.True(t, ScopePath{0, 1}.IsDeeperThanOrEqual(ScopePath{1}))
	assert.True(t, ScopePath{1}.IsDeeperThanOrEqual(ScopePath{1}))
	assert.False(t, ScopePath{1}.IsDeeperThanOrEqual(ScopePath{0, 1}))
	assert.True(t, ScopePath{}.IsShallowerThan(ScopePath{0}))
	assert.False(t, ScopePath{0}.IsShallowerThan(ScopePath{0}))
	assert.False(t, ScopePath{1}.IsShallowerThan(ScopePath{0, 2}))
}

func TestRecursivePlaceholder(t *testing.T) {
	env := NewEnv(EnvOptions{})
	require.NoError(t, env.Define(token.Location{}, "f", RecursiveConst{}))
	require.NoError(t, env.Define(token.Location{}, "f", Const{}))
	w, _, ok := env.Find("f")
	require.True(t, ok)
	assert.Equal(t, Const{}, w)
}

func TestReferToThroughNamespaces(t *testing.T) {
	env := NewEnv(EnvOptions{})
	inner := &Namespace{Name: "async", Entries: map[string]Writer{"fn": DirectWriter{}}}
	env.Set("base", &Namespace{Name: "base", Entries: map[string]Writer{"async": inner}})
	require.NoError(t, env.Define(token.Location{}, "obj", Const{}))

	res, err := env.ReferTo(&ast.PropertyAccess{Parts: []string{"base", "async", "fn"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"async", "fn"}, res.Path)
	assert.IsType(t, DirectWriter{}, res.Writer)

	res, err = env.ReferTo(&ast.PropertyAccess{Parts: []string{"obj", "a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Rest)
	assert.True(t, res.IsTopLevel(env))

	_, err = env.ReferTo(&ast.PropertyAccess{Parts: []string{"base", "nope"}})
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT001))

	_, err = env.ReferTo(&ast.PropertyAccess{Parts: []string{"base", "async", "fn", "x"}})
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT005))

	_, err = env.ReferTo(sym("missing"))
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT001))
}

func TestHostGlobalsAreProvided(t *testing.T) {
	env := NewEnv(EnvOptions{})
	w, depth, ok := env.Find("console")
	require.True(t, ok)
	assert.Equal(t, ProvidedConst{}, w)
	assert.True(t, env.IsTopLevelDepth(depth))
}

func TestContextFlags(t *testing.T) {
	env := NewEnv(EnvOptions{})
	assert.True(t, env.IsInAsync())
	assert.False(t, env.IsInFunction())

	env.PushScope(ScopeOptions{IsLoop: true})
	assert.True(t, env.IsInLoop())

	env.PushScope(ScopeOptions{IsFunction: true, IsGenerator: true})
	assert.False(t, env.IsInLoop())
	assert.False(t, env.IsInAsync())
	assert.True(t, env.IsInFunction())

	env.PushInheritedScope(false)
	assert.True(t, env.IsInGenerator())
	assert.Equal(t, 4, env.Depth())
	assert.Equal(t, "__cu$tmp3_0", env.NextTempID())
	assert.Equal(t, "__cu$tmp3_1", env.NextTempID())
}

func TestSnapshotRestore(t *testing.T) {
	env := NewEnv(EnvOptions{})
	require.NoError(t, env.Define(token.Location{}, "a", Const{}))
	snap := env.Snapshot()

	require.NoError(t, env.Define(token.Location{}, "b", Var{}))
	env.AddExport("b")
	env.MarkFormRuntimeLoaded()
	env.PushScope(ScopeOptions{})
	_, err := env.ReferTo(sym("a"))
	require.NoError(t, err)

	env.Restore(snap)
	assert.True(t, env.IsAtTopLevel())
	_, _, ok := env.Find("b")
	assert.False(t, ok)
	assert.Empty(t, env.Exports())
	assert.False(t, env.FormRuntimeLoaded())

	// The reference recorded before the rollback is gone, so `a` can be
	// shadowed in a new scope.
	env.PushScope(ScopeOptions{})
	assert.NoError(t, env.Define(token.Location{}, "a", Const{}))
	env.PopScope()

	// The snapshot can be restored again.
	require.NoError(t, env.Define(token.Location{}, "b", Var{}))
	env.Restore(snap)
	_, _, ok = env.Find("b")
	assert.False(t, ok)
}
