package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/custard-lang/custard-sub000/internal/backend"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/pipeline"
	"github.com/custard-lang/custard-sub000/internal/symbols"
	"github.com/custard-lang/custard-sub000/internal/transpiler"
)

// Loader handles loading modules and their dependencies. It implements
// symbols.ModuleLoader.
type Loader struct {
	Config *config.ProvidedSymbolsConfig
	// Mode is the mode source modules are compiled in. In REPL mode each
	// loaded source module is registered with Host so that REPL code can
	// import it.
	Mode   symbols.RenderMode
	Host   host.Host
	Logger zerolog.Logger

	LoadedModules map[string]*Module // Cache of loaded modules by path
	Processing    map[string]bool    // Cycle detection during loading
	stack         []string
}

type Options struct {
	Config *config.ProvidedSymbolsConfig
	Mode   symbols.RenderMode
	Host   host.Host
	Logger *zerolog.Logger
}

func NewLoader(opts Options) *Loader {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultProvidedSymbols()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "modules").Logger()
	}
	return &Loader{
		Config:        cfg,
		Mode:          opts.Mode,
		Host:          opts.Host,
		Logger:        logger,
		LoadedModules: make(map[string]*Module),
		Processing:    make(map[string]bool),
	}
}

// Load resolves an import id through the config and returns the module's
// namespace.
func (l *Loader) Load(ctx context.Context, id string) (*symbols.Namespace, error) {
	path, ok := l.Config.Modules[id]
	if !ok {
		return nil, fmt.Errorf("module `%s` is not configured", id)
	}
	mod, err := l.GetModule(ctx, id, path)
	if err != nil {
		return nil, err
	}
	return mod.Namespace, nil
}

// GetModule loads the module at the configured path, from the cache when
// possible.
func (l *Loader) GetModule(ctx context.Context, name, path string) (*Module, error) {
	if IsVirtualPath(path) {
		key := "virtual:" + path
		if mod, ok := l.LoadedModules[key]; ok {
			return mod, nil
		}
		mod, ok := virtualModule(name, path)
		if !ok {
			return nil, fmt.Errorf("unknown built-in module %s", path)
		}
		l.LoadedModules[key] = mod
		return mod, nil
	}

	// Normalize path to absolute for lookup
	absPath, err := filepath.Abs(l.Config.ResolveModulePath(path))
	if err != nil {
		return nil, err
	}

	// Check cache
	if mod, ok := l.LoadedModules[absPath]; ok {
		return mod, nil
	}

	if l.Processing[absPath] {
		return nil, fmt.Errorf("import cycle: %s -> %s", strings.Join(l.stack, " -> "), absPath)
	}
	l.Processing[absPath] = true
	l.stack = append(l.stack, absPath)
	defer func() {
		delete(l.Processing, absPath)
		l.stack = l.stack[:len(l.stack)-1]
	}()

	mod, err := l.loadSource(ctx, name, path, absPath)
	if err != nil {
		return nil, err
	}
	l.LoadedModules[absPath] = mod
	return mod, nil
}

func (l *Loader) loadSource(ctx context.Context, name, configured, absPath string) (*Module, error) {
	if !config.IsSourcePath(absPath) {
		return nil, fmt.Errorf("%s is not a Custard source file", absPath)
	}
	src, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	return l.compileSource(ctx, name, configured, absPath, string(src))
}

// CompileSource compiles src, the contents of the file at path, as an entry
// module. The result is not cached; the modules it imports are.
func (l *Loader) CompileSource(ctx context.Context, path, src string) (*Module, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(config.TrimSourceExt(path))
	return l.compileSource(ctx, name, path, absPath, src)
}

func (l *Loader) compileSource(ctx context.Context, name, configured, absPath, src string) (*Module, error) {
	env := symbols.NewEnv(symbols.EnvOptions{
		Mode:     l.Mode,
		Config:   l.Config,
		Loader:   l,
		Host:     l.Host,
		FilePath: absPath,
		Logger:   &l.Logger,
	})
	renderer, err := backend.For(l.Mode.String())
	if err != nil {
		return nil, err
	}
	pctx := pipeline.New(
		&parser.ParserProcessor{},
		&transpiler.TranspileProcessor{},
		backend.NewRenderProcessor(renderer),
	).Run(&pipeline.PipelineContext{
		Context:    ctx,
		FilePath:   absPath,
		SourceCode: src,
		StartLine:  1,
		Env:        env,
	})
	if pctx.Err != nil {
		return nil, pctx.Err
	}

	exports := env.Exports()
	mod := &Module{
		Name:      name,
		Path:      absPath,
		Namespace: namespaceOf(name, absPath, configured, exports),
		Exports:   exports,
		Output:    pctx.Output,
	}
	if l.Mode == symbols.ModeREPL {
		mod.Output = replScript(pctx.Output, exports)
		if l.Host != nil {
			if err := l.Host.RegisterModule(ctx, absPath, mod.Output); err != nil {
				return nil, fmt.Errorf("registering %s: %w", absPath, err)
			}
		}
	}
	l.Logger.Debug().Str("module", name).Str("path", absPath).Strs("exports", exports).Msg("module loaded")
	return mod, nil
}
