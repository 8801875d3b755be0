// Package host evaluates generated JavaScript. The transpiler needs it at
// compile time to run macros and the REPL needs it to run each chunk.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// Value is an opaque handle to a value living inside the host.
type Value interface {
	// String renders the value for display, the way the REPL prints results.
	String() string
}

// Host is a JavaScript evaluator.
type Host interface {
	// Evaluate runs js as a script and awaits the result when it is a promise.
	Evaluate(ctx context.Context, js string) (Value, error)
	// Invoke calls fn with args converted to runtime forms and converts the
	// (awaited) result back into a form. Forms created by the call carry loc.
	Invoke(ctx context.Context, fn Value, args []ast.Form, loc token.Location) (ast.Form, error)
	// RegisterModule makes script, an expression evaluating to the module's
	// namespace object (or a promise of it), importable under specifier.
	RegisterModule(ctx context.Context, specifier, script string) error
	// Close releases the host. It must not be used afterwards.
	Close()
}

// ErrClosed is returned by every operation on a closed host.
var ErrClosed = errors.New("host is closed")

// ErrUnsettled is returned when a promise can never settle because nothing
// is left to run and the host has no event loop.
var ErrUnsettled = errors.New("promise did not settle: the host has no event loop")

// EvalError is an exception thrown by evaluated code.
type EvalError struct {
	Message string
	Stack   string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("uncaught %s", e.Message)
}
