package transpiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/pipeline"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// builtinLoader resolves only the built-in modules of a config.
type builtinLoader struct {
	cfg *config.ProvidedSymbolsConfig
}

func (l builtinLoader) Load(_ context.Context, id string) (*symbols.Namespace, error) {
	p, ok := l.cfg.Modules[id]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", id)
	}
	ns, ok := Builtin(p)
	if !ok {
		return nil, fmt.Errorf("%s is not a built-in module", p)
	}
	return ns, nil
}

func newTestEnv(t *testing.T, mode symbols.RenderMode) *symbols.Env {
	t.Helper()
	cfg := config.DefaultProvidedSymbols()
	env := symbols.NewEnv(symbols.EnvOptions{
		Mode:     mode,
		Config:   cfg,
		Loader:   builtinLoader{cfg: cfg},
		FilePath: "test.cstd",
	})
	_, err := ApplyPrelude(env)
	require.NoError(t, err)
	return env
}

func compileWith(env *symbols.Env, src string) (string, error) {
	block, err := parser.ReadBlock(parser.Input{Path: "test.cstd", Contents: src, StartLine: 1})
	if err != nil {
		return "", err
	}
	ks, err := CompileModule(env, block.Forms)
	if err != nil {
		return "", err
	}
	if env.Mode == symbols.ModeREPL {
		return backend.NewREPLRenderer().Render(ks)
	}
	return backend.NewModuleRenderer().Render(ks)
}

func compileModule(t *testing.T, src string) (string, error) {
	t.Helper()
	return compileWith(newTestEnv(t, symbols.ModeModule), src)
}

func TestModuleOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"const", `(const x 1)`, "const x = 1;\n"},
		{"let and assign", `(let x 1) (assign x 2)`, "let x = 1;\n(x = 2);\n"},
		{"assignment as operand", `(let x 0) (plusF 1 (incrementF x))`, "let x = 0;\n(1 + (x = x + 1));\n"},
		{"negative literal", `(const n -3)`, "const n = (-3);\n"},
		{"none", `(const n none)`, "const n = undefined;\n"},
		{"infix", `(plusF 1 2 3)`, "(1 + 2 + 3);\n"},
		{"nested operators", `(plusF 2 (timesF 3 4))`, "(2 + (3 * 4));\n"},
		{"comparison", `(isLessThan 1 2)`, "(1 < 2);\n"},
		{"equality", `(equals 1 2)`, "(1 === 2);\n"},
		{"not", `(not true)`, "(!true);\n"},
		{"if", `(const x (if true 1 else 2))`, "const x = (true ? 1 : 2);\n"},
		{"host global call", `(console.log "hi")`, "console.log(\"hi\");\n"},
		{"array", `(const xs [1 2])`, "const xs = [1, 2];\n"},
		{"anonymous fn", `(const f (fn (a) (plusF a 1)))`, "const f = ((a) => {\nreturn (a + 1);\n});\n"},
		{"named fn", `(fn add (a b) (plusF a b))`, "function add(a, b) {\nreturn (a + b);\n};\n"},
		{"procedure", `(procedure p () (console.log 1))`, "function p() {\nconsole.log(1);\n};\n"},
		{"scope", `(scope (const y 1) y)`, "(() => {\nconst y = 1;\nreturn y;\n})();\n"},
		{"import meta binds the form runtime", `(import meta)`, "import * as __cu$form from \"@custard-lang/form\";\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileModule(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleOutputIsValidJavaScript(t *testing.T) {
	sources := []string{
		`(let i 0) (while (isLessThan i 3) (assign i (plusF i 1)))`,
		`(for (let i 0) (isLessThan i 3) (incrementF i) (console.log i))`,
		`(forEach x [1 2 3] (console.log x))`,
		`(when true (console.log 1))`,
		`(try (throw (new Error "x")) catch e (console.log e) finally (console.log 2))`,
		`(const f (async.fn (p) (async.await p)))`,
		`(const g (generator.fn () (generator.yield 1)))`,
		`(recursive (fn fact (n) (if (isLessThan n 2) 1 else (timesF n (fact (minusF n 1))))))`,
		`(const {a b: c} {a: 1 b: 2})`,
		`(const [h ...t] [1 2 3])`,
		`(const f (fn () (let a 0) (plusF 1 (assign a 2))))`,
		`(let x 0) (plusF 1 (incrementF x))`,
		`(let x false) (not (assign x true))`,
		`(let p 0) (let q 0) (assign [p q] [1 2])`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			got, err := compileModule(t, `(importAnyOf js) `+src)
			require.NoError(t, err)
			assert.NoError(t, backend.CheckSyntax(got), "generated:\n%s", got)
		})
	}
}

func TestREPLOutput(t *testing.T) {
	env := newTestEnv(t, symbols.ModeREPL)
	got, err := compileWith(env, `(const x 1) (plusF x 2)`)
	require.NoError(t, err)
	assert.Equal(t, "void __cu$table.set(\"x\", 1);\n(__cu$table.get(\"x\") + 2);\n", got)
}

func TestCompileChunkReturnsLastValue(t *testing.T) {
	env := newTestEnv(t, symbols.ModeModule)
	block, err := parser.ReadBlock(parser.Input{Path: "test.cstd", Contents: `(const x 1) x`, StartLine: 1})
	require.NoError(t, err)
	ks, err := CompileChunk(env, block.Forms)
	require.NoError(t, err)
	got, err := backend.NewModuleRenderer().Render(ks)
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;\nreturn x;\n", got)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, symbols.ModeModule)
	got, err := compileWith(env, `(export (const x 1) (fn f () x))`)
	require.NoError(t, err)
	assert.Contains(t, got, "export const x = 1")
	assert.Contains(t, got, "export function f()")
	assert.Equal(t, []string{"x", "f"}, env.Exports())
}

func TestQuote(t *testing.T) {
	got, err := compileModule(t, `(import meta) (const q (meta.quote (f 1 "s")))`)
	require.NoError(t, err)
	assert.Contains(t, got,
		`const q = __cu$form.list(__cu$form.symbol("f"), __cu$form.integer32(1), __cu$form.string("s"));`)

	got, err = compileModule(t, `(import meta) (const n 2) (const q (meta.quasiQuote [1 $n ...$[3]]))`)
	require.NoError(t, err)
	assert.Contains(t, got, `__cu$form.array(__cu$form.integer32(1), n, __cu$form.spread([3]))`)
}

func TestQuoteKeepsUnquoteAsData(t *testing.T) {
	decls := "(import meta) (const xs []) (const y 10)\n"

	got, err := compileModule(t, decls+`(const q (meta.quote (plusF 4.1 $y ...$xs a.b.c)))`)
	require.NoError(t, err)
	assert.Contains(t, got, `const q = __cu$form.list(__cu$form.symbol("plusF"), __cu$form.float64(4.1), `+
		`__cu$form.unquote(__cu$form.symbol("y")), __cu$form.splice(__cu$form.unquote(__cu$form.symbol("xs"))), `+
		`__cu$form.propertyAccess("a", "b", "c"));`)

	got, err = compileModule(t, decls+`(const q (meta.quasiQuote (plusF 4.1 $y ...$xs a.b.c)))`)
	require.NoError(t, err)
	assert.Contains(t, got, `const q = __cu$form.list(__cu$form.symbol("plusF"), __cu$form.float64(4.1), `+
		`y, __cu$form.spread(xs), __cu$form.propertyAccess("a", "b", "c"));`)
}

// A module is compiled before any of it runs, so a macro reading a
// variable sees nothing of the assignments above its call.
func TestMacroExpansionSeesCompileTimeState(t *testing.T) {
	h, err := host.NewV8Host(host.V8Options{})
	require.NoError(t, err)
	defer h.Close()

	cfg := config.DefaultProvidedSymbols()
	env := symbols.NewEnv(symbols.EnvOptions{
		Mode:     symbols.ModeModule,
		Config:   cfg,
		Loader:   builtinLoader{cfg: cfg},
		Host:     h,
		FilePath: "test.cstd",
	})
	_, err = ApplyPrelude(env)
	require.NoError(t, err)

	got, err := compileWith(env, "(import meta)\n(let n 1)\n(assign n 5)\n(meta.macro readN () n)\n(console.log (readN))\n")
	require.NoError(t, err)
	assert.Contains(t, got, "(n = 5);\nconsole.log(undefined);\n")
}

func TestMetaDynamicVars(t *testing.T) {
	got, err := compileModule(t, "(import meta)\n(const p meta.filePath)\n(const l meta.line)")
	require.NoError(t, err)
	assert.Contains(t, got, `const p = "test.cstd";`)
	assert.Contains(t, got, `const l = 3;`)
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diagnostics.ErrorCode
	}{
		{"unresolved", `(console.log undefinedThing)`, diagnostics.ErrT001},
		{"quote without meta", `(quote x)`, diagnostics.ErrT001},
		{"redefinition", `(const y 1) (const y 2)`, diagnostics.ErrT002},
		{"shadowing after reference", `(const v0 1) (scope v0 (const v0 2))`, diagnostics.ErrT003},
		{"binary arity", `(dividedByF 1)`, diagnostics.ErrT004},
		{"infix arity", `(and true)`, diagnostics.ErrT004},
		{"missing else", `(if true 1)`, diagnostics.ErrT005},
		{"empty list", `()`, diagnostics.ErrT005},
		{"statement as expression", `(plusF 1 (when true 1))`, diagnostics.ErrT006},
		{"break outside loop", `(break)`, diagnostics.ErrT007},
		{"return at top level", `(return 1)`, diagnostics.ErrT007},
		{"await outside async", `(const f (fn () (async.await 1)))`, diagnostics.ErrT007},
		{"yield outside generator", `(const f (fn () (generator.yield 1)))`, diagnostics.ErrT007},
		{"else alone", `(const x else)`, diagnostics.ErrT008},
		{"evaluate in a module", `(import meta) (meta.evaluate "1")`, diagnostics.ErrT009},
		{"macro without host", `(import meta) (meta.macro m () 1)`, diagnostics.ErrT010},
		{"unknown module", `(import nothing)`, diagnostics.ErrT011},
		{"assign to const", `(const x 1) (assign x 2)`, diagnostics.ErrT012},
		{"import inside scope", `(scope (import meta))`, diagnostics.ErrT013},
		{"export a statement", `(export (when true 1))`, diagnostics.ErrT014},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileModule(t, tt.src)
			require.Error(t, err)
			assert.True(t, diagnostics.HasCode(err, tt.code), "want %s, got %v", tt.code, err)
		})
	}
}

func TestRecursiveAllowsSelfReference(t *testing.T) {
	_, err := compileModule(t, `(fn fact (n) (fact n))`)
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT001), "got %v", err)

	_, err = compileModule(t, `(recursive (fn fact (n) (fact n)))`)
	assert.NoError(t, err)
}

func TestPreludeIsConfigurable(t *testing.T) {
	cfg := config.DefaultProvidedSymbols()
	cfg.ImplicitPrelude = ""
	env := symbols.NewEnv(symbols.EnvOptions{Config: cfg, Loader: builtinLoader{cfg: cfg}})
	ks, err := ApplyPrelude(env)
	require.NoError(t, err)
	assert.True(t, ks.IsEmpty())

	_, err = compileWith(env, `(const x 1)`)
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT001), "got %v", err)

	// The import intrinsics are bound even without a prelude.
	got, err := compileWith(env, `(import base) (base.const x 1)`)
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;\n", got)
}

func TestDefaultPreludeThroughPipeline(t *testing.T) {
	cfg := config.DefaultProvidedSymbols()
	env := symbols.NewEnv(symbols.EnvOptions{Config: cfg, Loader: builtinLoader{cfg: cfg}, FilePath: "main.cstd"})
	ctx := pipeline.New(
		&parser.ParserProcessor{},
		&TranspileProcessor{},
		backend.NewRenderProcessor(backend.NewModuleRenderer()),
	).Run(&pipeline.PipelineContext{
		FilePath:   "main.cstd",
		SourceCode: "(importAnyOf js) (const e (new Error \"x\")) (let n 0) (incrementF n)",
		StartLine:  1,
		Env:        env,
	})
	require.NoError(t, ctx.Err)
	assert.Equal(t, "const e = new (Error)(\"x\");\nlet n = 0;\n(n = n + 1);\n", ctx.Output)

	w, _, ok := env.Find("importAnyOf")
	require.True(t, ok)
	assert.IsType(t, symbols.DirectWriter{}, w)

	_, err := compileWith(env, `(importAnyOf base)`)
	assert.True(t, diagnostics.HasCode(err, diagnostics.ErrT002), "got %v", err)
}
