// Package custard is the Go API of the Custard compiler: compile source
// text to ES modules or run it interactively.
package custard

import (
	"context"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/modules"
	"github.com/custard-lang/custard-sub000/internal/repl"
	"github.com/custard-lang/custard-sub000/internal/runtime"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// Compiler compiles Custard programs with one configuration.
type Compiler struct {
	cfg    *config.ProvidedSymbolsConfig
	logger zerolog.Logger
	minify bool
}

type Option func(*Compiler) error

// WithConfigFile loads the provided symbols config from a YAML file.
func WithConfigFile(path string) Option {
	return func(c *Compiler) error {
		cfg, err := config.LoadProvidedSymbols(path)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}
}

// WithConfig parses the provided symbols config from YAML. Relative module
// paths resolve against the directory of path.
func WithConfig(data []byte, path string) Option {
	return func(c *Compiler) error {
		cfg, err := config.ParseProvidedSymbols(data, path)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) error {
		c.logger = logger
		return nil
	}
}

// WithMinify minifies compiled modules.
func WithMinify(minify bool) Option {
	return func(c *Compiler) error {
		c.minify = minify
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{cfg: config.DefaultProvidedSymbols(), logger: zerolog.Nop()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Output is a compiled module.
type Output struct {
	JS      string
	Exports []string
	// Dependencies are the absolute paths of the source modules imported
	// directly or indirectly.
	Dependencies []string
}

// Compile compiles source, the contents of the file at path, into an ES
// module. Source modules it imports are compiled too but not emitted.
func (c *Compiler) Compile(ctx context.Context, path, source string) (*Output, error) {
	h := host.NewLazy(func() (host.Host, error) {
		return host.NewV8Host(host.V8Options{
			FormRuntimeSpecifier: c.cfg.FormRuntime.Repl,
			Logger:               &c.logger,
		})
	})
	defer h.Close()

	loader := modules.NewLoader(modules.Options{
		Config: c.cfg,
		Mode:   symbols.ModeModule,
		Host:   h,
		Logger: &c.logger,
	})
	mod, err := loader.CompileSource(ctx, path, source)
	if err != nil {
		return nil, err
	}
	js := mod.Output
	if c.minify {
		if js, err = backend.Minify(js); err != nil {
			return nil, err
		}
	}

	var deps []string
	for key, m := range loader.LoadedModules {
		if !m.IsVirtual {
			deps = append(deps, key)
		}
	}
	sort.Strings(deps)
	return &Output{JS: js, Exports: mod.Exports, Dependencies: deps}, nil
}

// CompileFile reads and compiles the file at path.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, path, string(src))
}

// Check compiles source and parses the result as JavaScript.
func (c *Compiler) Check(ctx context.Context, path, source string) error {
	out, err := c.Compile(ctx, path, source)
	if err != nil {
		return err
	}
	return backend.CheckSyntax(out.JS)
}

// REPL is an interactive session.
type REPL struct {
	s *repl.Session
}

// NewREPL starts a session with its own JavaScript host. Close it when
// done.
func (c *Compiler) NewREPL(ctx context.Context) (*REPL, error) {
	s, err := repl.NewSession(ctx, repl.Options{Config: c.cfg, Logger: &c.logger})
	if err != nil {
		return nil, err
	}
	return &REPL{s: s}, nil
}

// Eval runs one input and returns the printed value of its last form. A
// failed input leaves no definitions behind.
func (r *REPL) Eval(ctx context.Context, input string) (string, error) {
	res, err := r.s.Eval(ctx, input)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// Session exposes the underlying session, e.g. for Run.
func (r *REPL) Session() *repl.Session {
	return r.s
}

func (r *REPL) Close() {
	r.s.Close()
}

// FormRuntime returns the ES module implementing the Form constructors
// that quoted code imports.
func FormRuntime() string {
	return runtime.FormModule()
}
