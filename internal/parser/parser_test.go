package parser_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/pipeline"
	"github.com/custard-lang/custard-sub000/internal/prettyprinter"
)

var update = flag.Bool("update", false, "update snapshot files")

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"list_call", "(plusF 1 2.5)"},
		{"array_object", `[a "s\n" {k: 1 v $w}]`},
		{"quasi_quote", "(quasiQuote (f $x ...xs))"},
		{"literals_and_comments", "(console.log true none -3)\n; comment\n1e3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := (&parser.ParserProcessor{}).Process(&pipeline.PipelineContext{SourceCode: tc.input, StartLine: 1})
			require.NoError(t, ctx.Err)

			treeOutput := prettyprinter.PrintTree(ctx.Block.Forms)
			codeOutput := prettyprinter.PrintBlock(ctx.Block.Forms, 0)

			// Combine outputs — include original input so snapshots show what was parsed
			actual := "--- Input ---\n" + tc.input + "\n\n--- AST Tree ---\n" + treeOutput + "\n--- Source Code ---\n" + codeOutput

			snapshotFile := filepath.Join("testdata", tc.name+".snap")
			if *update {
				require.NoError(t, os.WriteFile(snapshotFile, []byte(actual), 0644))
				return
			}
			expected, err := os.ReadFile(snapshotFile)
			require.NoError(t, err, "Run with -update flag to create it.")
			assert.Equal(t, string(expected), actual)
		})
	}
}

func TestReadStr(t *testing.T) {
	f, err := parser.ReadStr(parser.Input{Contents: "  (f a.b) ; trailing comment\n"})
	require.NoError(t, err)
	list, ok := f.(*ast.List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	assert.Equal(t, []string{"a", "b"}, list.Items[1].(*ast.PropertyAccess).Parts)
	assert.Equal(t, 1, list.Loc.Line)
	assert.Equal(t, 3, list.Loc.Column)
}

func TestStartLine(t *testing.T) {
	block, err := parser.ReadBlock(parser.Input{Path: "<repl>", Contents: "a\nb", StartLine: 7})
	require.NoError(t, err)
	require.Len(t, block.Forms, 2)
	assert.Equal(t, 8, block.Forms[1].GetLocation().Line)
	assert.Equal(t, "<repl>", block.Forms[1].GetLocation().File)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Form
	}{
		{"42", &ast.Integer32{Value: 42}},
		{"-7", &ast.Integer32{Value: -7}},
		{"2147483647", &ast.Integer32{Value: 2147483647}},
		{"1.5", &ast.Float64{Value: 1.5}},
		{"2e-2", &ast.Float64{Value: 0.02}},
		{"-1.0", &ast.Float64{Value: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := parser.ReadStr(parser.Input{Contents: tt.input})
			require.NoError(t, err)
			assert.True(t, ast.Equal(tt.want, f), "got %#v", f)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"unexpected_close", ")", diagnostics.ErrP001},
		{"empty", "", diagnostics.ErrP001},
		{"unterminated_string", `"abc`, diagnostics.ErrP002},
		{"unclosed_list", "(f 1", diagnostics.ErrP003},
		{"mismatched_closer", "(f 1]", diagnostics.ErrP001},
		{"unclosed_object", "{a: 1", diagnostics.ErrP003},
		{"trailing", "1 2", diagnostics.ErrP004},
		{"integer_overflow", "2147483648", diagnostics.ErrP005},
		{"bad_escape", `"\q"`, diagnostics.ErrP005},
		{"number_then_letter", "12ab", diagnostics.ErrP005},
		{"dangling_dot", "a.", diagnostics.ErrP001},
		{"sigil_at_end", "$", diagnostics.ErrP001},
		{"string_key_without_value", `{"k"}`, diagnostics.ErrP001},
		{"missing_value", "{k:}", diagnostics.ErrP001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ReadStr(parser.Input{Contents: tt.input})
			require.Error(t, err)
			assert.True(t, diagnostics.HasCode(err, tt.code), "got %v", err)
			kind, ok := diagnostics.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, diagnostics.KindParse, kind)
		})
	}
}

func TestDepthLimit(t *testing.T) {
	src := ""
	for i := 0; i <= parser.MaxRecursionDepth; i++ {
		src += "("
	}
	_, err := parser.ReadStr(parser.Input{Contents: src})
	require.Error(t, err)
}
