package config

const Version = "0.1.0"

const SourceFileExt = ".cstd"

// ModuleFileExt is the extension of files emitted in module mode.
const ModuleFileExt = ".mjs"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".cstd", ".custard"}

// Names reserved for generated code. Custard identifiers cannot contain
// `$`, so none of these can collide with user bindings.
const (
	TableID       = "__cu$table"
	ImportFuncID  = "__cu$import"
	ModulesID     = "__cu$modules"
	FormRuntimeID = "__cu$form"
	InspectID     = "__cu$inspect"
	EvaluateID    = "__cu$evaluate"
	TranspileID   = "__cu$transpile"
	CallMacroID   = "__cu$callMacro"
	TempIDPrefix  = "__cu$tmp"
)

// Built-in module specifiers.
const (
	BuiltinScheme    = "custard:"
	BaseModulePath   = "custard:base"
	MetaModulePath   = "custard:meta"
	JSModulePath     = "custard:js"
	FormRuntimeRepl  = "custard:form"
	FormRuntimeNPM   = "@custard-lang/form"
	DefaultPrelude   = "(importAnyOf base)"
	ConfigFileName   = "custard.yaml"
	ConfigFileNameYm = "custard.yml"
)

// IsSourcePath reports whether path names a Custard source file.
func IsSourcePath(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension.
func TrimSourceExt(path string) string {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}
