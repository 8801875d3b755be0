package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
)

// --- Tree Printer (Debugging) ---

// TreePrinter prints one node per line with its location.
type TreePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) line(f ast.Form, format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.buf, format, args...)
	if loc := f.GetLocation(); !loc.IsZero() {
		fmt.Fprintf(&p.buf, " @%d:%d", loc.Line, loc.Column)
	}
	p.buf.WriteByte('\n')
}

func (p *TreePrinter) children(items []ast.Form) {
	p.indent++
	for _, item := range items {
		item.Accept(p)
	}
	p.indent--
}

func (p *TreePrinter) VisitInteger32(n *ast.Integer32) { p.line(n, "Integer32 %d", n.Value) }
func (p *TreePrinter) VisitFloat64(n *ast.Float64)     { p.line(n, "Float64 %s", FormatFloat(n.Value)) }
func (p *TreePrinter) VisitString(n *ast.StringLiteral) {
	p.line(n, "String %s", Quote(n.Value))
}
func (p *TreePrinter) VisitBool(n *ast.Bool)     { p.line(n, "Bool %t", n.Value) }
func (p *TreePrinter) VisitNone(n *ast.None)     { p.line(n, "None") }
func (p *TreePrinter) VisitSymbol(n *ast.Symbol) { p.line(n, "Symbol %s", n.Name) }
func (p *TreePrinter) VisitPropertyAccess(n *ast.PropertyAccess) {
	p.line(n, "PropertyAccess %s", strings.Join(n.Parts, "."))
}

func (p *TreePrinter) VisitList(n *ast.List) {
	p.line(n, "List")
	p.children(n.Items)
}

func (p *TreePrinter) VisitArray(n *ast.Array) {
	p.line(n, "Array")
	p.children(n.Items)
}

func (p *TreePrinter) VisitObject(n *ast.Object) {
	p.line(n, "Object")
	p.children(n.Entries)
}

func (p *TreePrinter) VisitKeyValue(n *ast.KeyValue) {
	p.line(n, "KeyValue")
	p.children([]ast.Form{n.Key, n.Value})
}

func (p *TreePrinter) VisitUnquote(n *ast.Unquote) {
	p.line(n, "Unquote")
	p.children([]ast.Form{n.Inner})
}

func (p *TreePrinter) VisitSplice(n *ast.Splice) {
	p.line(n, "Splice")
	p.children([]ast.Form{n.Inner})
}

// PrintTree renders forms as an indented tree.
func PrintTree(forms []ast.Form) string {
	p := NewTreePrinter()
	for _, f := range forms {
		f.Accept(p)
	}
	return p.String()
}
