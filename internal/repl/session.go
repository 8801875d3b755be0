// Package repl runs Custard interactively: every input is compiled in one
// long-lived environment and executed in one long-lived host.
package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/modules"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/token"
	"github.com/custard-lang/custard-sub000/internal/transpiler"
)

// InputPath names REPL input in locations.
const InputPath = "<repl>"

// EvaluatePath names source passed to meta's evaluate.
const EvaluatePath = "<evaluate>"

type Options struct {
	Config *config.ProvidedSymbolsConfig
	Logger *zerolog.Logger
}

// Session holds the state shared by all inputs: the environment, the host
// and the module loader. A Session is not safe for concurrent use.
type Session struct {
	ID string

	cfg    *config.ProvidedSymbolsConfig
	env    *symbols.Env
	host   *host.V8Host
	loader *modules.Loader
	logger zerolog.Logger
	line   int
}

// Result is the outcome of one successful input.
type Result struct {
	// JS is the script that was evaluated.
	JS string
	// Value is the inspected value of the last form, empty when the input
	// had no forms.
	Value string
}

// NewSession starts a host and compiles and runs the implicit prelude.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultProvidedSymbols()
	}
	id := uuid.NewString()
	base := zerolog.Nop()
	if opts.Logger != nil {
		base = *opts.Logger
	}
	s := &Session{
		ID:     id,
		cfg:    cfg,
		logger: base.With().Str("session", id).Logger(),
	}
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) start(ctx context.Context) error {
	h, err := host.NewV8Host(host.V8Options{
		FormRuntimeSpecifier: s.cfg.FormRuntime.Repl,
		Transpile:            s.transpile,
		Logger:               &s.logger,
	})
	if err != nil {
		return err
	}
	s.host = h
	s.loader = modules.NewLoader(modules.Options{
		Config: s.cfg,
		Mode:   symbols.ModeREPL,
		Host:   h,
		Logger: &s.logger,
	})
	s.env = symbols.NewEnv(symbols.EnvOptions{
		Mode:     symbols.ModeREPL,
		Config:   s.cfg,
		Loader:   s.loader,
		Host:     h,
		FilePath: InputPath,
		Logger:   &s.logger,
	})
	s.line = 1

	restore := s.env.WithContext(ctx)
	defer restore()
	prelude, err := transpiler.ApplyPrelude(s.env)
	if err != nil {
		h.Close()
		return fmt.Errorf("prelude: %w", err)
	}
	if len(prelude) > 0 {
		js, err := render(prelude)
		if err != nil {
			h.Close()
			return err
		}
		if _, err := h.Evaluate(ctx, js); err != nil {
			h.Close()
			return fmt.Errorf("prelude: %w", err)
		}
	}
	s.logger.Debug().Msg("session started")
	return nil
}

// Reset discards every definition by replacing the host and environment.
func (s *Session) Reset(ctx context.Context) error {
	s.host.Close()
	return s.start(ctx)
}

// Close releases the host.
func (s *Session) Close() {
	s.host.Close()
}

// Env exposes the environment, mainly for inspection in tests.
func (s *Session) Env() *symbols.Env {
	return s.env
}

// Eval compiles and runs one input. On any error the environment is rolled
// back to its state before the input; side effects already performed by
// the host are not undone.
func (s *Session) Eval(ctx context.Context, input string) (*Result, error) {
	startLine := s.line
	s.line += strings.Count(strings.TrimSuffix(input, "\n"), "\n") + 1

	snap := s.env.Snapshot()
	res, err := s.eval(ctx, input, startLine)
	if err != nil {
		s.env.Restore(snap)
		s.logger.Debug().Err(err).Int("line", startLine).Msg("input rejected")
		return nil, err
	}
	return res, nil
}

func (s *Session) eval(ctx context.Context, input string, startLine int) (*Result, error) {
	block, err := parser.ReadBlock(parser.Input{Path: InputPath, Contents: input, StartLine: startLine})
	if err != nil {
		return nil, err
	}
	if len(block.Forms) == 0 {
		return &Result{}, nil
	}
	js, err := s.compileChunk(ctx, block.Forms)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int("bytes", len(js)).Msg("chunk compiled")
	val, err := s.host.Evaluate(ctx, js)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Msg("chunk executed")
	return &Result{JS: js, Value: val.String()}, nil
}

func (s *Session) compileChunk(ctx context.Context, forms []ast.Form) (string, error) {
	restore := s.env.WithContext(ctx)
	defer restore()
	ks, err := transpiler.CompileChunk(s.env, forms)
	if err != nil {
		return "", err
	}
	body, err := render(ks)
	if err != nil {
		return "", err
	}
	return backend.WrapChunk(body), nil
}

// transpile backs meta's evaluate. It runs while a chunk is executing, so
// its definitions are rolled back together with the chunk's.
func (s *Session) transpile(ctx context.Context, source string) (string, error) {
	block, err := parser.ReadBlock(parser.Input{Path: EvaluatePath, Contents: source, StartLine: 1})
	if err != nil {
		return "", err
	}
	if len(block.Forms) == 0 {
		return "undefined", nil
	}
	return s.compileChunk(ctx, block.Forms)
}

func render(ks ktval.Ktvals) (string, error) {
	return backend.NewREPLRenderer().Render(ks)
}

// IsIncomplete reports whether err means the input ended inside a form, so
// that more lines could complete it.
func IsIncomplete(err error) bool {
	var diag *diagnostics.DiagnosticError
	if !errors.As(err, &diag) || diag.Kind != diagnostics.KindParse {
		return false
	}
	return diag.Code == diagnostics.ErrP002 || diag.Actual == token.Token{Type: token.EOF}.String()
}
