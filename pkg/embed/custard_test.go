package custard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/diagnostics"
)

func TestCompile(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	out, err := c.Compile(context.Background(), "main.cstd", "(export (const answer (timesF 6 7)))\n(console.log answer)\n")
	require.NoError(t, err)
	assert.Equal(t, "export const answer = (6 * 7);\nconsole.log(answer);\n", out.JS)
	assert.Equal(t, []string{"answer"}, out.Exports)
	assert.Empty(t, out.Dependencies)
}

func TestCompileReportsDiagnostics(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.Compile(context.Background(), "main.cstd", "(const y 1)\n(const y 2)\n")
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT002), "got %v", err)

	_, err = c.Compile(context.Background(), "main.cstd", "(const y")
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrP003), "got %v", err)
}

func TestCompileExpandsMacros(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	src := "(import meta)\n(meta.macro twice (x) (meta.quasiQuote (plusF $x $x)))\n(console.log (twice 21))\n"
	out, err := c.Compile(context.Background(), "main.cstd", src)
	require.NoError(t, err)
	assert.Contains(t, out.JS, "console.log((21 + 21));")
	assert.NotContains(t, out.JS, "twice")
}

func TestCompileWithConfiguredModules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.cstd"), []byte("(export (fn double (n) (timesF n 2)))\n"), 0o644))
	cfgPath := filepath.Join(dir, "custard.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("modules:\n  lib: lib.cstd\n"), 0o644))
	mainPath := filepath.Join(dir, "main.cstd")
	require.NoError(t, os.WriteFile(mainPath, []byte("(importAnyOf lib)\n(console.log (double 4))\n"), 0o644))

	c, err := New(WithConfigFile(cfgPath), WithMinify(false))
	require.NoError(t, err)
	out, err := c.CompileFile(context.Background(), mainPath)
	require.NoError(t, err)
	assert.Equal(t, "import { double } from \"./lib.mjs\";\nconsole.log(double(4));\n", out.JS)

	lib, err := filepath.Abs(filepath.Join(dir, "lib.cstd"))
	require.NoError(t, err)
	assert.Equal(t, []string{lib}, out.Dependencies)

	assert.NoError(t, c.Check(context.Background(), mainPath, "(importAnyOf lib)\n(double 1)\n"))
}

func TestWithConfigRejectsInvalidConfig(t *testing.T) {
	_, err := New(WithConfig([]byte("hostGlobals: [console, console]\n"), "custard.yaml"))
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrV001), "got %v", err)
}

func TestMinify(t *testing.T) {
	c, err := New(WithMinify(true))
	require.NoError(t, err)
	out, err := c.Compile(context.Background(), "main.cstd", "(export (const value (plusF 1 2)))\n")
	require.NoError(t, err)
	assert.Contains(t, out.JS, "export")
	assert.Contains(t, out.JS, "value")
	assert.NotContains(t, out.JS, "\n\n")
}

func TestREPL(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	r, err := c.NewREPL(context.Background())
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Eval(context.Background(), "(let x 40)")
	require.NoError(t, err)
	got, err := r.Eval(context.Background(), "(plusF x 2)")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	_, err = r.Eval(context.Background(), "(let x 1)")
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT002), "got %v", err)
	assert.NotEmpty(t, r.Session().ID)
}

func TestFormRuntime(t *testing.T) {
	js := FormRuntime()
	assert.Contains(t, js, "export const spread = form.spread;\n")
	assert.Contains(t, js, "export default form;\n")
}
