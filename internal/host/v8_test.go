package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/token"
)

func newTestHost(t *testing.T, opts V8Options) *V8Host {
	t.Helper()
	h, err := NewV8Host(opts)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func evalString(t *testing.T, h Host, js string) string {
	t.Helper()
	v, err := h.Evaluate(context.Background(), js)
	require.NoError(t, err)
	return v.String()
}

func TestEvaluateInspectsResults(t *testing.T) {
	h := newTestHost(t, V8Options{})

	tests := []struct {
		js   string
		want string
	}{
		{"1 + 2", "3"},
		{`"top-level strings are bare"`, "top-level strings are bare"},
		{`({a: [1, "x"], b: null})`, `{ a: [ 1, "x" ], b: null }`},
		{"undefined", "undefined"},
		{"(function named() {})", "[Function: named]"},
		{"new Map([[1, 2]])", "Map(1) { 1 => 2 }"},
		{"Promise.resolve(5)", "5"},
		{"(async () => 6)()", "6"},
		{`__cu$form.list(__cu$form.symbol("f"), __cu$form.integer32(1), __cu$form.float64(2))`, "(f 1 2.0)"},
	}
	for _, tt := range tests {
		t.Run(tt.js, func(t *testing.T) {
			assert.Equal(t, tt.want, evalString(t, h, tt.js))
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	h := newTestHost(t, V8Options{})
	ctx := context.Background()

	_, err := h.Evaluate(ctx, `throw new Error("bad")`)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "bad")

	_, err = h.Evaluate(ctx, `Promise.reject(new Error("boom"))`)
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "boom")

	_, err = h.Evaluate(ctx, "new Promise(() => {})")
	assert.ErrorIs(t, err, ErrUnsettled)

	_, err = h.Evaluate(ctx, "(")
	assert.ErrorAs(t, err, &evalErr)
}

func TestEvaluateIsInterruptedByContext(t *testing.T) {
	h := newTestHost(t, V8Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Evaluate(ctx, "while (true) {}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestTableSurvivesBetweenScripts(t *testing.T) {
	h := newTestHost(t, V8Options{})
	evalString(t, h, `__cu$table.set("x", 41)`)
	assert.Equal(t, "42", evalString(t, h, `__cu$table.get("x") + 1`))
}

func TestRegisterModule(t *testing.T) {
	h := newTestHost(t, V8Options{})
	ctx := context.Background()

	require.NoError(t, h.RegisterModule(ctx, "/lib.cstd", `(async () => ({ x: 42 }))()`))
	assert.Equal(t, "42", evalString(t, h, `(async () => (await __cu$import("/lib.cstd")).x)()`))

	_, err := h.Evaluate(ctx, `__cu$import("/missing.cstd")`)
	assert.ErrorContains(t, err, "Cannot find module")

	assert.Equal(t, "true", evalString(t, h, `(async () => (await __cu$import("custard:form")) === __cu$form)()`))
}

func TestInvoke(t *testing.T) {
	h := newTestHost(t, V8Options{})
	ctx := context.Background()

	fn, err := h.Evaluate(ctx, `(async (a) => __cu$form.list(__cu$form.symbol("f"), a))`)
	require.NoError(t, err)

	loc := token.Location{File: "m.cstd", Line: 3, Column: 1}
	got, err := h.Invoke(ctx, fn, []ast.Form{&ast.Integer32{Value: 7, Loc: token.Location{Line: 1, Column: 5}}}, loc)
	require.NoError(t, err)

	list, ok := got.(*ast.List)
	require.True(t, ok, "got %T", got)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "f", list.Items[0].(*ast.Symbol).Name)
	assert.Equal(t, int32(7), list.Items[1].(*ast.Integer32).Value)
	assert.Equal(t, loc, list.Loc)

	other := newTestHost(t, V8Options{})
	_, err = other.Invoke(ctx, fn, nil, loc)
	assert.ErrorContains(t, err, "does not belong to this host")
}

func TestEvaluateFunction(t *testing.T) {
	ctx := context.Background()

	h := newTestHost(t, V8Options{Transpile: func(_ context.Context, source string) (string, error) {
		if source == "fail" {
			return "", errors.New("cannot compile")
		}
		return "Promise.resolve(" + source + " * 2)", nil
	}})
	assert.Equal(t, "14", evalString(t, h, `__cu$evaluate("7")`))
	_, err := h.Evaluate(ctx, `__cu$evaluate("fail")`)
	assert.ErrorContains(t, err, "cannot compile")

	bare := newTestHost(t, V8Options{})
	_, err = bare.Evaluate(ctx, `__cu$evaluate("7")`)
	assert.ErrorContains(t, err, "not available")
}

func TestClosedHost(t *testing.T) {
	h, err := NewV8Host(V8Options{})
	require.NoError(t, err)
	h.Close()
	h.Close()

	_, err = h.Evaluate(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.RegisterModule(context.Background(), "x", "1"), ErrClosed)
}
