package modules

import (
	"strings"

	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/transpiler"
)

// IsVirtualPath reports whether path names a built-in module.
func IsVirtualPath(path string) bool {
	return strings.HasPrefix(path, config.BuiltinScheme)
}

// virtualModule wraps a built-in namespace. Built-in modules exist only at
// compile time, so they have no output.
func virtualModule(name, path string) (*Module, bool) {
	ns, ok := transpiler.Builtin(path)
	if !ok {
		return nil, false
	}
	return &Module{Name: name, Path: path, IsVirtual: true, Namespace: ns}, true
}
