package backend

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/tdewolff/minify/v2"
	minjs "github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

const jsMediaType = "application/javascript"

// StringLiteral renders s as a JavaScript string literal. JSON strings are
// valid JavaScript string literals; HTML characters stay unescaped.
func StringLiteral(s string) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// CheckSyntax parses src as a JavaScript program and returns the first
// syntax error, if any.
func CheckSyntax(src string) error {
	_, err := js.Parse(parse.NewInputString(src), js.Options{})
	return err
}

// Minify shrinks emitted module text. Top-level names are kept because
// other modules import them.
func Minify(src string) (string, error) {
	m := minify.New()
	m.Add(jsMediaType, &minjs.Minifier{KeepVarNames: true})
	return m.String(jsMediaType, src)
}
