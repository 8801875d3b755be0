package symbols

// ScopePath addresses a scope by the sibling indices from the innermost
// scope up to the root. Paths taken at different moments of a single
// pass can be compared even though the scopes they name are gone.
type ScopePath []int

// IsDeeperThanOrEqual reports whether p is q or a descendant of q.
func (p ScopePath) IsDeeperThanOrEqual(q ScopePath) bool {
	if len(p) < len(q) {
		return false
	}
	return p[len(p)-len(q):].equal(q)
}

// IsShallowerThan reports whether p is a strict ancestor of q.
func (p ScopePath) IsShallowerThan(q ScopePath) bool {
	return len(p) < len(q) && q.IsDeeperThanOrEqual(p)
}

func (p ScopePath) equal(q ScopePath) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p ScopePath) clone() ScopePath {
	out := make(ScopePath, len(p))
	copy(out, p)
	return out
}

type ReferencePoint struct {
	ScopePath ScopePath
	ID        string
}

// Reference records that code compiled at Referer resolved ID to the
// binding in the scope at Referee.ScopePath.
type Reference struct {
	Referer ScopePath
	Referee ReferencePoint
}

// References is the forward-reference detector of a single compilation.
type References struct {
	byID         map[string][]Reference
	currentScope ScopePath
	nextScope    int
}

func NewReferences() *References {
	return &References{byID: make(map[string][]Reference), currentScope: ScopePath{}}
}

// CurrentScope returns a copy of the path of the scope being compiled.
func (r *References) CurrentScope() ScopePath {
	return r.currentScope.clone()
}

func (r *References) enterScope() {
	path := make(ScopePath, 0, len(r.currentScope)+1)
	path = append(path, r.nextScope)
	path = append(path, r.currentScope...)
	r.currentScope = path
	r.nextScope = 0
}

func (r *References) leaveScope() {
	if len(r.currentScope) == 0 {
		return
	}
	r.nextScope = r.currentScope[0] + 1
	r.currentScope = r.currentScope[1:].clone()
}

// add records a resolution that found id at depth i of the current path.
func (r *References) add(id string, depth int) {
	ref := Reference{
		Referer: r.currentScope.clone(),
		Referee: ReferencePoint{ScopePath: r.currentScope[depth:].clone(), ID: id},
	}
	r.byID[id] = append(r.byID[id], ref)
}

// conflicts reports whether defining id in the current scope would change
// what already-compiled code resolved id to.
func (r *References) conflicts(id string) bool {
	for _, ref := range r.byID[id] {
		if ref.Referer.IsDeeperThanOrEqual(r.currentScope) && ref.Referee.ScopePath.IsShallowerThan(r.currentScope) {
			return true
		}
	}
	return false
}

func (r *References) clone() *References {
	byID := make(map[string][]Reference, len(r.byID))
	for id, refs := range r.byID {
		byID[id] = append([]Reference(nil), refs...)
	}
	return &References{byID: byID, currentScope: r.currentScope.clone(), nextScope: r.nextScope}
}
