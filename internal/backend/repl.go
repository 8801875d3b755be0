package backend

import (
	"fmt"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/ktval"
)

// REPLRenderer keeps every top-level binding in the pseudo-top-level table
// so that separately evaluated chunks can see each other's definitions.
type REPLRenderer struct {
	// Table is the identifier of the runtime Map holding top-level values.
	Table string
	// ImportFunc is the identifier of the dynamic import function.
	ImportFunc string
}

func NewREPLRenderer() *REPLRenderer {
	return &REPLRenderer{Table: config.TableID, ImportFunc: config.ImportFuncID}
}

func (r *REPLRenderer) Name() string { return "repl" }

func (r *REPLRenderer) Render(ks ktval.Ktvals) (string, error) {
	var sb strings.Builder
	for _, k := range ks {
		if err := r.renderOne(&sb, k); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (r *REPLRenderer) renderOne(sb *strings.Builder, k ktval.Ktval) error {
	done, err := renderCommon(sb, k, r.Render)
	if done || err != nil {
		return err
	}
	switch k := k.(type) {
	case ktval.Refer:
		fmt.Fprintf(sb, "%s.get(%s)", r.Table, StringLiteral(k.ID))
	case ktval.Assign:
		s, ok := k.Assignee.(ktval.SimpleAssignee)
		if !ok {
			return fmt.Errorf("top-level destructuring of %T must be lowered before rendering", k.Assignee)
		}
		exp, err := r.Render(k.Exp)
		if err != nil {
			return err
		}
		id := StringLiteral(s.ID)
		if k.Decl == ktval.DeclNone {
			// An assignment is an expression yielding the new value.
			fmt.Fprintf(sb, "(%s.set(%s, %s), %s.get(%s))", r.Table, id, exp, r.Table, id)
			return nil
		}
		fmt.Fprintf(sb, "void %s.set(%s, %s)", r.Table, id, exp)
	case ktval.FunctionPostlude:
		body, err := r.Render(k.Body)
		if err != nil {
			return err
		}
		id := StringLiteral(k.ID)
		fmt.Fprintf(sb, "(%s.set(%s, %s), %s.get(%s))", r.Table, id, body, r.Table, id)
	case ktval.Import:
		fmt.Fprintf(sb, "(({%s}) => {", strings.Join(k.IDs, ", "))
		for _, id := range k.IDs {
			fmt.Fprintf(sb, " %s.set(%s, %s);", r.Table, StringLiteral(id), id)
		}
		fmt.Fprintf(sb, " })(await %s(%s))", r.ImportFunc, StringLiteral(k.ReplSpecifier))
	case ktval.ImportStarAs:
		fmt.Fprintf(sb, "void %s.set(%s, await %s(%s))", r.Table, StringLiteral(k.ID), r.ImportFunc, StringLiteral(k.ReplSpecifier))
	case ktval.Export:
		// Nothing to export from a REPL chunk.
	default:
		return fmt.Errorf("unknown ktval %T", k)
	}
	return nil
}

// WrapChunk turns a rendered chunk body into a script whose completion
// value is a promise of the chunk's result.
func WrapChunk(body string) string {
	return "(async () => {\n" + body + "\n})()"
}
