// Package prettyprinter prints forms back as Custard source and as an
// indented tree for debugging.
package prettyprinter

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter prints forms in canonical syntax: reading the output yields
// an equal form. Sequences longer than the line width are broken one item
// per line.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: 0}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("  ", p.indent))
}

// Print renders a single form.
func Print(f ast.Form) string {
	p := NewCodePrinter()
	f.Accept(p)
	return p.String()
}

// PrintBlock renders top-level forms one per line.
func PrintBlock(forms []ast.Form, width int) string {
	var sb strings.Builder
	for _, f := range forms {
		p := NewCodePrinterWithWidth(width)
		f.Accept(p)
		sb.WriteString(p.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *CodePrinter) VisitInteger32(n *ast.Integer32) {
	p.write(strconv.FormatInt(int64(n.Value), 10))
}

func (p *CodePrinter) VisitFloat64(n *ast.Float64) {
	p.write(FormatFloat(n.Value))
}

func (p *CodePrinter) VisitString(n *ast.StringLiteral) {
	p.write(Quote(n.Value))
}

func (p *CodePrinter) VisitBool(n *ast.Bool) {
	p.write(strconv.FormatBool(n.Value))
}

func (p *CodePrinter) VisitNone(n *ast.None) {
	p.write("none")
}

func (p *CodePrinter) VisitSymbol(n *ast.Symbol) {
	p.write(n.Name)
}

func (p *CodePrinter) VisitPropertyAccess(n *ast.PropertyAccess) {
	p.write(strings.Join(n.Parts, "."))
}

func (p *CodePrinter) VisitList(n *ast.List) {
	p.printSequence("(", n.Items, ")")
}

func (p *CodePrinter) VisitArray(n *ast.Array) {
	p.printSequence("[", n.Items, "]")
}

func (p *CodePrinter) VisitObject(n *ast.Object) {
	p.printSequence("{", n.Entries, "}")
}

func (p *CodePrinter) VisitKeyValue(n *ast.KeyValue) {
	n.Key.Accept(p)
	p.write(": ")
	n.Value.Accept(p)
}

func (p *CodePrinter) VisitUnquote(n *ast.Unquote) {
	p.write("$")
	n.Inner.Accept(p)
}

func (p *CodePrinter) VisitSplice(n *ast.Splice) {
	p.write("...")
	n.Inner.Accept(p)
}

func (p *CodePrinter) printSequence(open string, items []ast.Form, close string) {
	flat := make([]string, len(items))
	width := len(open) + len(close)
	for i, item := range items {
		flat[i] = Print(item)
		width += len(flat[i]) + 1
	}
	if p.lineWidth == 0 || width <= p.lineWidth || len(items) < 2 {
		p.write(open + strings.Join(flat, " ") + close)
		return
	}
	p.write(open)
	items[0].Accept(p)
	p.indent++
	for _, item := range items[1:] {
		p.writeln()
		item.Accept(p)
	}
	p.indent--
	p.write(close)
}

// FormatFloat prints v so that it reads back as a Float64.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Quote renders s as a Custard string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
