package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/custard-lang/custard-sub000/internal/diagnostics"
)

// ProvidedSymbolsConfig seeds the Environment of every compilation: the
// prelude compiled before user code, where `import` finds modules, and
// which host globals may be referenced without definition.
type ProvidedSymbolsConfig struct {
	// ImplicitPrelude is Custard source compiled before each program,
	// typically `(importAnyOf base)`.
	ImplicitPrelude string `yaml:"implicitPrelude"`

	// Modules maps import ids to module paths. Paths are either built-in
	// (`custard:base`) or source files relative to the config file.
	Modules map[string]string `yaml:"modules"`

	// HostGlobals are JavaScript globals referenced as plain identifiers.
	HostGlobals []string `yaml:"hostGlobals"`

	// FormRuntime locates the Form constructors used by quote.
	FormRuntime FormRuntimeConfig `yaml:"formRuntime"`

	// Dir is the directory relative module paths are resolved against.
	Dir string `yaml:"-"`
}

type FormRuntimeConfig struct {
	Repl   string `yaml:"repl"`
	Module string `yaml:"module"`
}

// DefaultProvidedSymbols is used when no config file is found.
func DefaultProvidedSymbols() *ProvidedSymbolsConfig {
	cfg := &ProvidedSymbolsConfig{
		ImplicitPrelude: DefaultPrelude,
		Modules: map[string]string{
			"base": BaseModulePath,
			"meta": MetaModulePath,
			"js":   JSModulePath,
		},
		HostGlobals: []string{
			"console", "Math", "JSON", "Object", "Array", "String", "Number",
			"Boolean", "Promise", "Error", "Map", "Set", "Symbol", "Date",
			"RegExp", "globalThis",
		},
		FormRuntime: FormRuntimeConfig{Repl: FormRuntimeRepl, Module: FormRuntimeNPM},
		Dir:         ".",
	}
	return cfg
}

// LoadProvidedSymbols reads and validates a config file.
func LoadProvidedSymbols(path string) (*ProvidedSymbolsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseProvidedSymbols(data, path)
}

// ParseProvidedSymbols parses config content. Missing sections fall back
// to the defaults; the path is used for error messages and as the base
// directory of relative module paths.
func ParseProvidedSymbols(data []byte, path string) (*ProvidedSymbolsConfig, error) {
	var cfg ProvidedSymbolsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &diagnostics.DiagnosticError{
			Kind:    diagnostics.KindValidation,
			Code:    diagnostics.ErrV001,
			Message: fmt.Sprintf("parsing %s", path),
			Cause:   err,
		}
	}
	cfg.Dir = filepath.Dir(path)
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ProvidedSymbolsConfig) setDefaults() {
	def := DefaultProvidedSymbols()
	if c.ImplicitPrelude == "" {
		c.ImplicitPrelude = def.ImplicitPrelude
	}
	if c.Modules == nil {
		c.Modules = map[string]string{}
	}
	for id, p := range def.Modules {
		if _, ok := c.Modules[id]; !ok {
			c.Modules[id] = p
		}
	}
	if c.HostGlobals == nil {
		c.HostGlobals = def.HostGlobals
	}
	if c.FormRuntime.Repl == "" {
		c.FormRuntime.Repl = def.FormRuntime.Repl
	}
	if c.FormRuntime.Module == "" {
		c.FormRuntime.Module = def.FormRuntime.Module
	}
}

func (c *ProvidedSymbolsConfig) validate(path string) error {
	ids := make([]string, 0, len(c.Modules))
	for id := range c.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !isIdentifier(id) {
			return diagnostics.NewValidationError(path, "modules: %q is not a valid identifier", id)
		}
		if c.Modules[id] == "" {
			return diagnostics.NewValidationError(path, "modules.%s: path is required", id)
		}
	}

	seen := make(map[string]bool, len(c.HostGlobals))
	for i, g := range c.HostGlobals {
		if !isIdentifier(g) {
			return diagnostics.NewValidationError(path, "hostGlobals[%d]: %q is not a valid identifier", i, g)
		}
		if seen[g] {
			return diagnostics.NewValidationError(path, "hostGlobals[%d]: %q is listed twice", i, g)
		}
		if _, ok := c.Modules[g]; ok {
			return diagnostics.NewValidationError(path, "hostGlobals[%d]: %q is also a module id", i, g)
		}
		seen[g] = true
	}
	return nil
}

// ResolveModulePath turns a configured module path into a filesystem path
// for source modules; built-in paths are returned unchanged.
func (c *ProvidedSymbolsConfig) ResolveModulePath(p string) string {
	if len(p) >= len(BuiltinScheme) && p[:len(BuiltinScheme)] == BuiltinScheme {
		return p
	}
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// FindProvidedSymbols searches for custard.yaml starting from dir and
// walking up to parent directories, then in the user config directory.
// Returns "" and nil when no config exists.
func FindProvidedSymbols(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{ConfigFileName, ConfigFileNameYm} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if p, err := xdg.SearchConfigFile(filepath.Join("custard", ConfigFileName)); err == nil {
		return p, nil
	}
	return "", nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
