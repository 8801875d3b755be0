package host

import (
	"context"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// Lazy is a Host created on first use. Compiling modules only needs a host
// when a macro is defined, so most compilations never start one.
type Lazy struct {
	New func() (Host, error)

	h   Host
	err error
}

func NewLazy(newHost func() (Host, error)) *Lazy {
	return &Lazy{New: newHost}
}

func (l *Lazy) get() (Host, error) {
	if l.h == nil && l.err == nil {
		l.h, l.err = l.New()
	}
	return l.h, l.err
}

// Started reports whether the underlying host was created.
func (l *Lazy) Started() bool {
	return l.h != nil
}

func (l *Lazy) Evaluate(ctx context.Context, js string) (Value, error) {
	h, err := l.get()
	if err != nil {
		return nil, err
	}
	return h.Evaluate(ctx, js)
}

func (l *Lazy) Invoke(ctx context.Context, fn Value, args []ast.Form, loc token.Location) (ast.Form, error) {
	h, err := l.get()
	if err != nil {
		return nil, err
	}
	return h.Invoke(ctx, fn, args, loc)
}

func (l *Lazy) RegisterModule(ctx context.Context, specifier, script string) error {
	h, err := l.get()
	if err != nil {
		return err
	}
	return h.RegisterModule(ctx, specifier, script)
}

func (l *Lazy) Close() {
	if l.h != nil {
		l.h.Close()
	}
	l.err = ErrClosed
}
