package modules

import (
	"path/filepath"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// Module is a loaded module: either a built-in namespace or a compiled
// Custard source file.
type Module struct {
	Name      string // import id
	Path      string // absolute path, or the built-in path
	IsVirtual bool   // True if this is a built-in module without source

	Namespace *symbols.Namespace
	Exports   []string

	// Output is the JavaScript the source compiled to: an ES module in
	// module mode, a script evaluating to the exports in REPL mode.
	Output string
}

// moduleSpecifier is the specifier emitted ES modules import a source
// module with: its configured path with the output extension.
func moduleSpecifier(configured string) string {
	spec := filepath.ToSlash(config.TrimSourceExt(configured)) + config.ModuleFileExt
	if strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return spec
	}
	return "./" + spec
}

// namespaceOf turns the exports of a source module into a runtime
// namespace whose members are constants.
func namespaceOf(name, absPath, configured string, exports []string) *symbols.Namespace {
	entries := make(map[string]symbols.Writer, len(exports))
	for _, id := range exports {
		entries[id] = symbols.Const{}
	}
	return &symbols.Namespace{
		Name:            name,
		Entries:         entries,
		ReplSpecifier:   absPath,
		ModuleSpecifier: moduleSpecifier(configured),
	}
}

// replScript wraps a chunk rendered for the REPL so that it runs with its
// own top-level table and evaluates to an object of its exports.
func replScript(body string, exports []string) string {
	var sb strings.Builder
	sb.WriteString("(async () => {\nconst ")
	sb.WriteString(config.TableID)
	sb.WriteString(" = new Map();\n")
	sb.WriteString(body)
	sb.WriteString("return {")
	for i, id := range exports {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(id)
		sb.WriteString(": ")
		sb.WriteString(config.TableID)
		sb.WriteString(`.get("`)
		sb.WriteString(id)
		sb.WriteString(`")`)
	}
	sb.WriteString(" };\n})()")
	return sb.String()
}
