package transpiler

import (
	"sync"

	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

var (
	builtinsOnce sync.Once
	builtins     map[string]*symbols.Namespace
)

// Builtin returns the namespace of a built-in module path such as
// `custard:base`. Built-in namespaces exist only at compile time.
func Builtin(path string) (*symbols.Namespace, bool) {
	builtinsOnce.Do(func() {
		builtins = map[string]*symbols.Namespace{
			config.BaseModulePath: baseNamespace(),
			config.MetaModulePath: metaNamespace(),
			config.JSModulePath:   jsNamespace(),
		}
	})
	ns, ok := builtins[path]
	return ns, ok
}

func statement(call symbols.DirectCall) symbols.DirectWriter {
	return symbols.DirectWriter{Call: call, IsStatement: true}
}

func declaration(call symbols.DirectCall) symbols.DirectWriter {
	return symbols.DirectWriter{Call: call, IsStatement: true, IsExportable: true}
}

func expression(call symbols.DirectCall) symbols.DirectWriter {
	return symbols.DirectWriter{Call: call}
}

// function is fn and procedure: a declaration when named, a value otherwise.
func function(kind fnKind) symbols.DirectWriter {
	return symbols.DirectWriter{Call: fnCall(kind), StatementWhen: isNamedFunction, IsExportable: true}
}

func baseNamespace() *symbols.Namespace {
	entries := map[string]symbols.Writer{
		"const":     declaration(declare(ktval.DeclConst, symbols.Const{})),
		"let":       declaration(declare(ktval.DeclLet, symbols.Var{})),
		"assign":    expression(assignCall),
		"recursive": declaration(recursiveCall),

		"scope":    expression(scopeCall(false)),
		"if":       expression(ifCall),
		"else":     symbols.ContextualKeyword{Companion: "if"},
		"when":     statement(whenCall),
		"while":    statement(whileCall),
		"for":      statement(forCall),
		"forEach":  statement(forEachCall),
		"break":    statement(jumpCall("break")),
		"continue": statement(jumpCall("continue")),
		"return":   statement(returnCall),
		"throw":    statement(throwCall),
		"try":      statement(tryCall),
		"catch":    symbols.ContextualKeyword{Companion: "try"},
		"finally":  symbols.ContextualKeyword{Companion: "try"},

		"fn":        function(fnKind{}),
		"procedure": function(fnKind{procedure: true}),
		"async": &symbols.Namespace{
			Name: "async",
			Entries: map[string]symbols.Writer{
				"fn":        function(fnKind{async: true}),
				"procedure": function(fnKind{async: true, procedure: true}),
				"scope":     expression(scopeCall(true)),
				"await":     expression(awaitCall),
			},
		},
		"generator": &symbols.Namespace{
			Name: "generator",
			Entries: map[string]symbols.Writer{
				"fn":        function(fnKind{generator: true}),
				"procedure": function(fnKind{generator: true, procedure: true}),
				"yield":     expression(yieldCall),
			},
		},

		"plusF":                 expression(infix("+", 1)),
		"minusF":                expression(minusCall),
		"timesF":                expression(infix("*", 1)),
		"dividedByF":            expression(binary("/")),
		"remainderF":            expression(binary("%")),
		"isLessThan":            expression(binary("<")),
		"isLessThanOrEquals":    expression(binary("<=")),
		"isGreaterThan":         expression(binary(">")),
		"isGreaterThanOrEquals": expression(binary(">=")),
		"equals":                expression(binary("===")),
		"notEquals":             expression(binary("!==")),
		"and":                   expression(infix("&&", 2)),
		"or":                    expression(infix("||", 2)),
		"not":                   expression(prefix("!")),
		"any":                   expression(prefix("!!")),
		"incrementF":            expression(step("++")),
		"decrementF":            expression(step("--")),

		"import":      statement(importCall),
		"importAnyOf": statement(importAnyOfCall),
		"export":      statement(exportCall),
	}
	return &symbols.Namespace{Name: "base", Entries: entries}
}
