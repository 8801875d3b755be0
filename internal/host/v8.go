package host

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tommie/v8go"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/runtime"
	"github.com/custard-lang/custard-sub000/internal/token"
)

//go:embed prelude.js
var preludeJS string

// TranspileFunc compiles Custard source into a script evaluating to a
// promise. It backs the evaluate function of custard:meta.
type TranspileFunc func(ctx context.Context, source string) (string, error)

// V8Options configures NewV8Host.
type V8Options struct {
	// FormRuntimeSpecifier is the specifier the Form runtime is importable
	// under. Defaults to config.FormRuntimeRepl.
	FormRuntimeSpecifier string
	Transpile            TranspileFunc
	Logger               *zerolog.Logger
}

// V8Host is a Host backed by an embedded V8 isolate. It has no event loop:
// a promise settles only through microtasks. A V8Host must not be used from
// more than one goroutine at a time.
type V8Host struct {
	iso       *v8go.Isolate
	ctx       *v8go.Context
	logger    zerolog.Logger
	transpile TranspileFunc
	callCtx   context.Context
	scripts   int
	closed    bool
}

// NewV8Host creates an isolate with the Custard runtime globals installed.
func NewV8Host(opts V8Options) (*V8Host, error) {
	h := &V8Host{
		iso:       v8go.NewIsolate(),
		transpile: opts.Transpile,
		callCtx:   context.Background(),
	}
	if opts.Logger != nil {
		h.logger = opts.Logger.With().Str("component", "host").Logger()
	} else {
		h.logger = zerolog.Nop()
	}

	global := v8go.NewObjectTemplate(h.iso)
	if h.transpile != nil {
		fn := v8go.NewFunctionTemplate(h.iso, h.transpileCallback)
		if err := global.Set(config.TranspileID, fn, v8go.ReadOnly); err != nil {
			h.iso.Dispose()
			return nil, fmt.Errorf("installing %s: %w", config.TranspileID, err)
		}
	}
	h.ctx = v8go.NewContext(h.iso, global)

	spec := opts.FormRuntimeSpecifier
	if spec == "" {
		spec = config.FormRuntimeRepl
	}
	boot := []struct{ name, src string }{
		{"form.js", "globalThis." + config.FormRuntimeID + " = " + strings.TrimSpace(runtime.FormScript) + ";"},
		{"prelude.js", preludeJS},
		{"register.js", fmt.Sprintf("%s.set(%s, %s); %s.set(%s, %s);",
			config.ModulesID, jsString(spec), config.FormRuntimeID,
			config.TableID, jsString(config.FormRuntimeID), config.FormRuntimeID)},
	}
	for _, b := range boot {
		if _, err := h.ctx.RunScript(b.src, b.name); err != nil {
			h.Close()
			return nil, fmt.Errorf("booting host (%s): %w", b.name, convertError(err))
		}
	}
	return h, nil
}

func (h *V8Host) transpileCallback(info *v8go.FunctionCallbackInfo) *v8go.Value {
	args := info.Args()
	if len(args) < 1 {
		return h.throw("transpile expects a source string")
	}
	js, err := h.transpile(h.callCtx, args[0].String())
	if err != nil {
		return h.throw(err.Error())
	}
	v, err := v8go.NewValue(h.iso, js)
	if err != nil {
		return h.throw(err.Error())
	}
	return v
}

func (h *V8Host) throw(msg string) *v8go.Value {
	v, err := v8go.NewValue(h.iso, msg)
	if err != nil {
		return v8go.Undefined(h.iso)
	}
	return h.iso.ThrowException(v)
}

// Evaluate implements Host.
func (h *V8Host) Evaluate(ctx context.Context, js string) (Value, error) {
	if h.closed {
		return nil, ErrClosed
	}
	defer h.watch(ctx)()

	h.scripts++
	origin := fmt.Sprintf("custard-%d.js", h.scripts)
	h.logger.Trace().Str("origin", origin).Str("js", js).Msg("evaluating")

	val, err := h.ctx.RunScript(js, origin)
	if err != nil {
		return nil, h.interrupted(ctx, convertError(err))
	}
	val, err = h.await(ctx, val)
	if err != nil {
		return nil, h.interrupted(ctx, err)
	}
	return &v8Value{h: h, v: val}, nil
}

// Invoke implements Host.
func (h *V8Host) Invoke(ctx context.Context, fn Value, args []ast.Form, loc token.Location) (ast.Form, error) {
	if h.closed {
		return nil, ErrClosed
	}
	callee, ok := fn.(*v8Value)
	if !ok || callee.h != h {
		return nil, errors.New("invoke: value does not belong to this host")
	}
	argsJSON, err := ast.MarshalForms(args)
	if err != nil {
		return nil, fmt.Errorf("invoke: %w", err)
	}

	defer h.watch(ctx)()

	call, err := h.global(config.CallMacroID)
	if err != nil {
		return nil, err
	}
	jsArgs, err := v8go.NewValue(h.iso, string(argsJSON))
	if err != nil {
		return nil, err
	}
	res, err := call.Call(v8go.Undefined(h.iso), callee.v, jsArgs)
	if err != nil {
		return nil, h.interrupted(ctx, convertError(err))
	}
	res, err = h.await(ctx, res)
	if err != nil {
		return nil, h.interrupted(ctx, err)
	}
	if !res.IsString() {
		return nil, fmt.Errorf("invoke: expected form JSON, got %s", res.String())
	}
	return ast.UnmarshalForm([]byte(res.String()), loc)
}

// RegisterModule implements Host.
func (h *V8Host) RegisterModule(ctx context.Context, specifier, script string) error {
	if h.closed {
		return ErrClosed
	}
	js := fmt.Sprintf("%s.set(%s, () => (%s));", config.ModulesID, jsString(specifier), script)
	h.logger.Debug().Str("specifier", specifier).Msg("registering module")
	_, err := h.ctx.RunScript(js, specifier)
	if err != nil {
		return convertError(err)
	}
	return nil
}

// Close implements Host.
func (h *V8Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	if h.ctx != nil {
		h.ctx.Close()
	}
	h.iso.Dispose()
}

func (h *V8Host) global(name string) (*v8go.Function, error) {
	v, err := h.ctx.Global().Get(name)
	if err != nil {
		return nil, err
	}
	return v.AsFunction()
}

// watch terminates execution once ctx is done. The returned func stops
// watching.
func (h *V8Host) watch(ctx context.Context) func() {
	prev := h.callCtx
	h.callCtx = ctx
	done := make(chan struct{})
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.iso.TerminateExecution()
			case <-done:
			}
		}()
	}
	return func() {
		close(done)
		h.callCtx = prev
	}
}

func (h *V8Host) interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("execution terminated: %w", ctxErr)
	}
	return err
}

func (h *V8Host) await(ctx context.Context, val *v8go.Value) (*v8go.Value, error) {
	if !val.IsPromise() {
		return val, nil
	}
	p, err := val.AsPromise()
	if err != nil {
		return nil, err
	}
	for p.State() == v8go.Pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.ctx.PerformMicrotaskCheckpoint()
		if p.State() == v8go.Pending {
			return nil, ErrUnsettled
		}
	}
	if p.State() == v8go.Rejected {
		return nil, rejection(p.Result())
	}
	return p.Result(), nil
}

func rejection(reason *v8go.Value) error {
	e := &EvalError{Message: reason.String()}
	if reason.IsNativeError() {
		if obj, err := reason.AsObject(); err == nil {
			if stack, err := obj.Get("stack"); err == nil && !stack.IsUndefined() {
				e.Stack = stack.String()
			}
		}
	}
	return e
}

func convertError(err error) error {
	var jsErr *v8go.JSError
	if errors.As(err, &jsErr) {
		return &EvalError{Message: jsErr.Message, Stack: jsErr.StackTrace}
	}
	return err
}

type v8Value struct {
	h *V8Host
	v *v8go.Value
}

// String calls the runtime's inspect function.
func (v *v8Value) String() string {
	if v.h.closed {
		return v.v.String()
	}
	inspect, err := v.h.global(config.InspectID)
	if err != nil {
		return v.v.String()
	}
	s, err := inspect.Call(v8go.Undefined(v.h.iso), v.v)
	if err != nil {
		return v.v.String()
	}
	return s.String()
}

func jsString(s string) string {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}
