package symbols

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/host"
	"github.com/custard-lang/custard-sub000/internal/token"
)

type RenderMode int

const (
	ModeModule RenderMode = iota
	ModeREPL
)

func (m RenderMode) String() string {
	if m == ModeREPL {
		return "repl"
	}
	return "module"
}

// Scope is one level of the scope stack.
type Scope struct {
	Definitions map[string]Writer
	IsAsync     bool
	IsGenerator bool

	// IsFunction marks a function body: `return` targets the nearest one
	// and loop/async context does not cross it.
	IsFunction bool
	IsLoop     bool

	TempVarCounter int
}

type ScopeOptions struct {
	IsAsync     bool
	IsGenerator bool
	IsFunction  bool
	IsLoop      bool
}

// Env is the mutable state of one compilation run. It is never shared
// between runs.
type Env struct {
	scopes     []*Scope // innermost first
	references *References

	Mode     RenderMode
	Config   *config.ProvidedSymbolsConfig
	Loader   ModuleLoader
	Host     host.Host
	FilePath string
	Logger   zerolog.Logger

	ctx               context.Context
	macroDefinitions  int
	formRuntimeLoaded bool
	exports           []string
	seeded            map[string]*Namespace
}

type EnvOptions struct {
	Mode     RenderMode
	Config   *config.ProvidedSymbolsConfig
	Loader   ModuleLoader
	Host     host.Host
	FilePath string
	Logger   *zerolog.Logger
}

// NewEnv creates an environment with a single top-level scope holding the
// configured host globals. Top-level code may use `await`: ES modules allow
// it and REPL chunks run inside async functions.
func NewEnv(opts EnvOptions) *Env {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultProvidedSymbols()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	env := &Env{
		references: NewReferences(),
		Mode:       opts.Mode,
		Config:     cfg,
		Loader:     opts.Loader,
		Host:       opts.Host,
		FilePath:   opts.FilePath,
		Logger:     logger,
		ctx:        context.Background(),
	}
	root := &Scope{Definitions: make(map[string]Writer), IsAsync: true}
	for _, g := range cfg.HostGlobals {
		root.Definitions[g] = ProvidedConst{}
	}
	env.scopes = []*Scope{root}
	return env
}

// Context returns the context of the compilation in progress.
func (e *Env) Context() context.Context {
	return e.ctx
}

// WithContext sets the context used by host calls and module loads until
// the returned function restores the previous one.
func (e *Env) WithContext(ctx context.Context) func() {
	prev := e.ctx
	e.ctx = ctx
	return func() { e.ctx = prev }
}

func (e *Env) Current() *Scope {
	return e.scopes[0]
}

// Depth is the number of scopes on the stack; 1 at top level.
func (e *Env) Depth() int {
	return len(e.scopes)
}

func (e *Env) IsAtTopLevel() bool {
	return len(e.scopes) == 1
}

func (e *Env) CurrentScopePath() ScopePath {
	return e.references.CurrentScope()
}

// PushScope enters a fresh child scope.
func (e *Env) PushScope(opts ScopeOptions) {
	s := &Scope{
		Definitions: make(map[string]Writer),
		IsAsync:     opts.IsAsync,
		IsGenerator: opts.IsGenerator,
		IsFunction:  opts.IsFunction,
		IsLoop:      opts.IsLoop,
	}
	e.scopes = append([]*Scope{s}, e.scopes...)
	e.references.enterScope()
}

// PushInheritedScope enters a block scope that keeps the async and
// generator flags of the enclosing scope.
func (e *Env) PushInheritedScope(isLoop bool) {
	cur := e.Current()
	e.PushScope(ScopeOptions{IsAsync: cur.IsAsync, IsGenerator: cur.IsGenerator, IsLoop: isLoop})
}

func (e *Env) PopScope() {
	if len(e.scopes) == 1 {
		panic("symbols: popping the top-level scope")
	}
	e.scopes = e.scopes[1:]
	e.references.leaveScope()
}

// IsInAsync reports whether `await` is legal here.
func (e *Env) IsInAsync() bool {
	return e.Current().IsAsync
}

func (e *Env) IsInGenerator() bool {
	return e.Current().IsGenerator
}

// IsInFunction reports whether a function body encloses the current scope.
func (e *Env) IsInFunction() bool {
	for _, s := range e.scopes {
		if s.IsFunction {
			return true
		}
	}
	return false
}

// IsInLoop reports whether a loop body encloses the current scope without
// a function boundary in between.
func (e *Env) IsInLoop() bool {
	for _, s := range e.scopes {
		if s.IsLoop {
			return true
		}
		if s.IsFunction {
			return false
		}
	}
	return false
}

// Find looks id up without recording a reference. The returned depth is 0
// for the innermost scope.
func (e *Env) Find(id string) (Writer, int, bool) {
	for i, s := range e.scopes {
		if w, ok := s.Definitions[id]; ok {
			return w, i, true
		}
	}
	return nil, -1, false
}

// IsTopLevelDepth reports whether a binding found at depth lives in the
// outermost scope.
func (e *Env) IsTopLevelDepth(depth int) bool {
	return depth == len(e.scopes)-1
}

// Resolved is the result of referTo.
type Resolved struct {
	Writer Writer
	// Depth is where the first part of the symbol was found.
	Depth int
	// RootID is the first part of the symbol.
	RootID string
	// Rest holds the parts following the last namespace traversed, which
	// are plain JavaScript property accesses.
	Rest []string
	// Path holds the namespace parts traversed after RootID.
	Path []string
}

// IsTopLevel reports whether the root of the reference is a top-level
// binding.
func (r Resolved) IsTopLevel(e *Env) bool {
	return e.IsTopLevelDepth(r.Depth)
}

// ReferTo resolves a symbol or property access and records the reference.
func (e *Env) ReferTo(form ast.Form) (Resolved, error) {
	var parts []string
	switch f := form.(type) {
	case *ast.Symbol:
		parts = []string{f.Name}
	case *ast.PropertyAccess:
		parts = f.Parts
	default:
		return Resolved{}, diagnostics.NewError(diagnostics.ErrT005, form.GetLocation(), "expected a symbol or a property access")
	}
	loc := form.GetLocation()

	id := parts[0]
	w, depth, ok := e.Find(id)
	if !ok {
		return Resolved{}, diagnostics.NewError(diagnostics.ErrT001, loc, "no variable `%s` is defined", id)
	}
	e.references.add(id, depth)

	res := Resolved{Writer: w, Depth: depth, RootID: id}
	for i := 1; i < len(parts); i++ {
		ns, isNS := res.Writer.(*Namespace)
		if !isNS {
			if IsRuntimeValue(res.Writer) {
				res.Rest = parts[i:]
				return res, nil
			}
			return Resolved{}, diagnostics.NewError(diagnostics.ErrT005, loc, "`%s` is %s and has no property `%s`", joinParts(parts[:i]), Describe(res.Writer), parts[i])
		}
		member, ok := ns.Entries[parts[i]]
		if !ok {
			return Resolved{}, diagnostics.NewError(diagnostics.ErrT001, loc, "namespace `%s` has no member `%s`", joinParts(parts[:i]), parts[i])
		}
		res.Path = append(res.Path, parts[i])
		res.Writer = member
	}
	return res, nil
}

// Define installs id in the current scope.
func (e *Env) Define(loc token.Location, id string, w Writer) error {
	cur := e.Current()
	if existing, ok := cur.Definitions[id]; ok {
		if _, isPlaceholder := existing.(RecursiveConst); isPlaceholder {
			if _, isConst := w.(Const); isConst {
				cur.Definitions[id] = w
				return nil
			}
		}
		return diagnostics.NewError(diagnostics.ErrT002, loc, "`%s` is already defined", id)
	}
	if e.references.conflicts(id) {
		return diagnostics.NewError(diagnostics.ErrT003, loc,
			"no variable `%s` is defined at the point where it was referred to. NOTE: if you want to define `%s` recursively, wrap the declaration(s) with `recursive`", id, id)
	}
	cur.Definitions[id] = w
	return nil
}

// Set replaces a binding of the current scope without any checks. Used to
// seed environments with built-in definitions.
func (e *Env) Set(id string, w Writer) {
	e.Current().Definitions[id] = w
}

// Seed binds a member of ns at the top level before any code is compiled,
// so that the prelude has something to import with.
func (e *Env) Seed(id string, ns *Namespace) {
	w, ok := ns.Entries[id]
	if !ok {
		return
	}
	if e.seeded == nil {
		e.seeded = make(map[string]*Namespace)
	}
	e.scopes[len(e.scopes)-1].Definitions[id] = w
	e.seeded[id] = ns
}

// IsSeededFrom reports whether id was bound by Seed with a member of ns.
func (e *Env) IsSeededFrom(id string, ns *Namespace) bool {
	return e.seeded[id] == ns
}

// NextTempID returns a generated identifier unique within the current
// scope and its ancestors.
func (e *Env) NextTempID() string {
	cur := e.Current()
	n := cur.TempVarCounter
	cur.TempVarCounter++
	return config.TempIDPrefix + strconv.Itoa(len(e.scopes)-1) + "_" + strconv.Itoa(n)
}

// EnterMacroDefinition marks that a macro body is being compiled.
func (e *Env) EnterMacroDefinition() func() {
	e.macroDefinitions++
	return func() { e.macroDefinitions-- }
}

func (e *Env) IsInMacroDefinition() bool {
	return e.macroDefinitions > 0
}

// FormRuntimeLoaded reports whether the Form runtime is bound at top level.
func (e *Env) FormRuntimeLoaded() bool {
	return e.formRuntimeLoaded
}

func (e *Env) MarkFormRuntimeLoaded() {
	e.formRuntimeLoaded = true
}

// AddExport records an exported top-level id.
func (e *Env) AddExport(id string) {
	e.exports = append(e.exports, id)
}

// Exports returns the exported ids in declaration order.
func (e *Env) Exports() []string {
	return append([]string(nil), e.exports...)
}

func (e *Env) String() string {
	return fmt.Sprintf("Env{mode: %s, depth: %d, scope: %v}", e.Mode, len(e.scopes), e.references.currentScope)
}

func joinParts(parts []string) string {
	return ast.HeadName(&ast.PropertyAccess{Parts: parts})
}
