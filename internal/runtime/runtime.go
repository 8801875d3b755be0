// Package runtime holds the JavaScript that generated code depends on at
// run time.
package runtime

import (
	_ "embed"
	"strings"
)

// FormScript is a JavaScript expression evaluating to the frozen object of
// Form constructors used by quote and quasiQuote.
//
//go:embed form.js
var FormScript string

// FormExports lists the members of the Form runtime, in declaration order.
var FormExports = []string{
	"list", "array", "object", "keyValue", "symbol", "propertyAccess",
	"integer32", "float64", "string", "reservedSymbol", "unquote", "splice",
	"spread", "isForm", "toForm", "toJSON", "fromJSON", "show",
}

// FormModule renders the Form runtime as an ES module, the file module-mode
// output imports through the configured form runtime specifier.
func FormModule() string {
	var sb strings.Builder
	sb.WriteString("const form = ")
	sb.WriteString(strings.TrimSpace(FormScript))
	sb.WriteString(";\n")
	for _, name := range FormExports {
		sb.WriteString("export const ")
		sb.WriteString(name)
		sb.WriteString(" = form.")
		sb.WriteString(name)
		sb.WriteString(";\n")
	}
	sb.WriteString("export default form;\n")
	return sb.String()
}
