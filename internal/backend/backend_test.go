package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/ktval"
)

func render(t *testing.T, r Renderer, ks ktval.Ktvals) string {
	t.Helper()
	out, err := r.Render(ks)
	require.NoError(t, err)
	return out
}

func TestRenderers(t *testing.T) {
	tests := []struct {
		name   string
		ks     ktval.Ktvals
		repl   string
		module string
	}{
		{
			name:   "refer",
			ks:     ktval.Concat(ktval.Text("("), ktval.Ktvals{ktval.Refer{ID: "x"}}, ktval.Text(" + 1)")),
			repl:   `(__cu$table.get("x") + 1)`,
			module: "(x + 1)",
		},
		{
			name:   "top_level_const",
			ks:     ktval.Ktvals{ktval.Assign{Decl: ktval.DeclConst, Assignee: ktval.SimpleAssignee{ID: "x"}, Exp: ktval.Text("1"), TopLevel: true}},
			repl:   `void __cu$table.set("x", 1)`,
			module: "const x = 1",
		},
		{
			name:   "top_level_assignment",
			ks:     ktval.Ktvals{ktval.Assign{Assignee: ktval.SimpleAssignee{ID: "x"}, Exp: ktval.Text("2"), TopLevel: true}},
			repl:   `(__cu$table.set("x", 2), __cu$table.get("x"))`,
			module: "(x = 2)",
		},
		{
			name:   "local_let",
			ks:     ktval.Ktvals{ktval.Assign{Decl: ktval.DeclLet, Assignee: ktval.DestructuringArray{IDs: []string{"a", "...b"}}, Exp: ktval.Text("xs")}},
			repl:   "let [a, ...b] = xs",
			module: "let [a, ...b] = xs",
		},
		{
			name:   "local_assignment",
			ks:     ktval.Ktvals{ktval.Assign{Assignee: ktval.SimpleAssignee{ID: "a"}, Exp: ktval.Text("2")}},
			repl:   "(a = 2)",
			module: "(a = 2)",
		},
		{
			name:   "local_object_assignment",
			ks:     ktval.Ktvals{ktval.Assign{Assignee: ktval.DestructuringObject{Entries: []ktval.ObjectPatternEntry{{Key: "a", ID: "a"}, {Key: "b", ID: "c"}}}, Exp: ktval.Text("o")}},
			repl:   "({a, b: c} = o)",
			module: "({a, b: c} = o)",
		},
		{
			name:   "function",
			ks:     ktval.Ktvals{ktval.FunctionPostlude{ID: "f", Body: ktval.Text("function f() {}")}},
			repl:   `(__cu$table.set("f", function f() {}), __cu$table.get("f"))`,
			module: "function f() {}",
		},
		{
			name:   "import",
			ks:     ktval.Ktvals{ktval.Import{ReplSpecifier: "/abs/lib.cstd", ModuleSpecifier: "./lib.mjs", IDs: []string{"a", "b"}}},
			repl:   `(({a, b}) => { __cu$table.set("a", a); __cu$table.set("b", b); })(await __cu$import("/abs/lib.cstd"))`,
			module: `import { a, b } from "./lib.mjs"`,
		},
		{
			name:   "import_star",
			ks:     ktval.Ktvals{ktval.ImportStarAs{ReplSpecifier: "custard:form", ModuleSpecifier: "@custard-lang/form", ID: "__cu$form"}},
			repl:   `void __cu$table.set("__cu$form", await __cu$import("custard:form"))`,
			module: `import * as __cu$form from "@custard-lang/form"`,
		},
		{
			name:   "export",
			ks:     ktval.Ktvals{ktval.Export{}, ktval.Assign{Decl: ktval.DeclConst, Assignee: ktval.SimpleAssignee{ID: "x"}, Exp: ktval.Text("1"), TopLevel: true}},
			repl:   `void __cu$table.set("x", 1)`,
			module: "export const x = 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.repl, render(t, NewREPLRenderer(), tt.ks))
			assert.Equal(t, tt.module, render(t, NewModuleRenderer(), tt.ks))
		})
	}
}

func TestREPLRejectsTopLevelDestructuring(t *testing.T) {
	_, err := NewREPLRenderer().Render(ktval.Ktvals{ktval.Assign{
		Decl:     ktval.DeclConst,
		Assignee: ktval.DestructuringArray{IDs: []string{"a"}},
		Exp:      ktval.Text("xs"),
		TopLevel: true,
	}})
	assert.Error(t, err)
}

func TestSuppressImports(t *testing.T) {
	r := &ModuleRenderer{SuppressImports: true}
	out := render(t, r, ktval.Ktvals{ktval.Import{ModuleSpecifier: "./a.mjs", IDs: []string{"a"}}, ktval.Other{Text: "a"}})
	assert.Equal(t, "a", out)
}

func TestFor(t *testing.T) {
	for _, name := range []string{"repl", "module"} {
		r, err := For(name)
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}
	_, err := For("bytecode")
	assert.Error(t, err)
}

func TestStringLiteral(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\n<>&"`, StringLiteral("a\"b\\c\n<>&"))
}

func TestCheckSyntaxAndMinify(t *testing.T) {
	src := "export const answer = (1 + 2) * 14;\nconst unused = answer;\n"
	require.NoError(t, CheckSyntax(src))
	assert.Error(t, CheckSyntax("const = 1;"))

	min, err := Minify(src)
	require.NoError(t, err)
	assert.Less(t, len(min), len(src))
	assert.Contains(t, min, "answer")
	require.NoError(t, CheckSyntax(min))
}

func TestWrapChunk(t *testing.T) {
	assert.Equal(t, "(async () => {\nreturn 1;\n})()", WrapChunk("return 1;"))
}
