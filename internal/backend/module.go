package backend

import (
	"fmt"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ktval"
)

// ModuleRenderer prints a static ES module with real declarations and
// static imports.
type ModuleRenderer struct {
	// SuppressImports drops import statements, for callers that provide
	// the imported bindings some other way.
	SuppressImports bool
}

func NewModuleRenderer() *ModuleRenderer {
	return &ModuleRenderer{}
}

func (r *ModuleRenderer) Name() string { return "module" }

func (r *ModuleRenderer) Render(ks ktval.Ktvals) (string, error) {
	var sb strings.Builder
	for _, k := range ks {
		if err := r.renderOne(&sb, k); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (r *ModuleRenderer) renderOne(sb *strings.Builder, k ktval.Ktval) error {
	done, err := renderCommon(sb, k, r.Render)
	if done || err != nil {
		return err
	}
	switch k := k.(type) {
	case ktval.Refer:
		sb.WriteString(k.ID)
	case ktval.Assign:
		exp, err := r.Render(k.Exp)
		if err != nil {
			return err
		}
		pattern, err := RenderAssignee(k.Assignee)
		if err != nil {
			return err
		}
		if k.Decl == ktval.DeclNone {
			fmt.Fprintf(sb, "(%s = %s)", pattern, exp)
			return nil
		}
		fmt.Fprintf(sb, "%s %s = %s", k.Decl.Keyword(), pattern, exp)
	case ktval.FunctionPostlude:
		body, err := r.Render(k.Body)
		if err != nil {
			return err
		}
		sb.WriteString(body)
	case ktval.Import:
		if r.SuppressImports {
			return nil
		}
		fmt.Fprintf(sb, "import { %s } from %s", strings.Join(k.IDs, ", "), StringLiteral(k.ModuleSpecifier))
	case ktval.ImportStarAs:
		if r.SuppressImports {
			return nil
		}
		fmt.Fprintf(sb, "import * as %s from %s", k.ID, StringLiteral(k.ModuleSpecifier))
	case ktval.Export:
		sb.WriteString("export ")
	default:
		return fmt.Errorf("unknown ktval %T", k)
	}
	return nil
}
