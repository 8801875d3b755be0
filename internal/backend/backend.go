// Package backend renders Ktval sequences to JavaScript text. The same
// sequence renders differently for the REPL, where top-level bindings live
// in a runtime table, and for a static ES module.
package backend

import (
	"fmt"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ktval"
)

// Renderer turns a compiled Ktval sequence into JavaScript text.
type Renderer interface {
	Render(ks ktval.Ktvals) (string, error)
	// Name returns the renderer name for display
	Name() string
}

// For returns the renderer used in the given mode name ("repl" or "module").
func For(name string) (Renderer, error) {
	switch name {
	case "repl":
		return NewREPLRenderer(), nil
	case "module":
		return NewModuleRenderer(), nil
	}
	return nil, fmt.Errorf("unknown renderer %q", name)
}

// renderCommon handles the variants both renderers print the same way.
// It reports false for the variants the caller must handle itself.
func renderCommon(sb *strings.Builder, k ktval.Ktval, sub func(ktval.Ktvals) (string, error)) (bool, error) {
	switch k := k.(type) {
	case ktval.Other:
		sb.WriteString(k.Text)
		return true, nil
	case ktval.Assign:
		if k.TopLevel {
			return false, nil
		}
		exp, err := sub(k.Exp)
		if err != nil {
			return true, err
		}
		pattern, err := RenderAssignee(k.Assignee)
		if err != nil {
			return true, err
		}
		if k.Decl == ktval.DeclNone {
			// An assignment may appear as an operand.
			fmt.Fprintf(sb, "(%s = %s)", pattern, exp)
			return true, nil
		}
		fmt.Fprintf(sb, "%s %s = %s", k.Decl.Keyword(), pattern, exp)
		return true, nil
	}
	return false, nil
}

// RenderAssignee renders the target of a declaration or assignment.
func RenderAssignee(a ktval.Assignee) (string, error) {
	switch a := a.(type) {
	case ktval.SimpleAssignee:
		return a.ID, nil
	case ktval.DestructuringArray:
		return "[" + strings.Join(a.IDs, ", ") + "]", nil
	case ktval.DestructuringObject:
		parts := make([]string, 0, len(a.Entries))
		for _, e := range a.Entries {
			if e.Key == e.ID {
				parts = append(parts, e.ID)
			} else {
				parts = append(parts, e.Key+": "+e.ID)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	return "", fmt.Errorf("unknown assignee %T", a)
}
