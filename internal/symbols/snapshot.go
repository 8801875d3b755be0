package symbols

// Snapshot is a copy of an Env's bindings and reference table, used by the
// REPL to undo a rejected input.
type Snapshot struct {
	scopes            []*Scope
	references        *References
	formRuntimeLoaded bool
	exports           []string
}

func (e *Env) Snapshot() *Snapshot {
	scopes := make([]*Scope, len(e.scopes))
	for i, s := range e.scopes {
		defs := make(map[string]Writer, len(s.Definitions))
		for k, v := range s.Definitions {
			defs[k] = v
		}
		c := *s
		c.Definitions = defs
		scopes[i] = &c
	}
	return &Snapshot{
		scopes:            scopes,
		references:        e.references.clone(),
		formRuntimeLoaded: e.formRuntimeLoaded,
		exports:           append([]string(nil), e.exports...),
	}
}

// Restore puts the Env back to the state captured by s. The snapshot
// stays valid and may be restored again.
func (e *Env) Restore(s *Snapshot) {
	restored := s.clone()
	e.scopes = restored.scopes
	e.references = restored.references
	e.formRuntimeLoaded = restored.formRuntimeLoaded
	e.exports = restored.exports
	e.macroDefinitions = 0
}

func (s *Snapshot) clone() *Snapshot {
	tmp := &Env{scopes: s.scopes, references: s.references, formRuntimeLoaded: s.formRuntimeLoaded, exports: s.exports}
	return tmp.Snapshot()
}
