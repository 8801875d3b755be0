package ast

// Equal compares two forms structurally, ignoring locations.
func Equal(a, b Form) bool {
	switch x := a.(type) {
	case *Integer32:
		y, ok := b.(*Integer32)
		return ok && x.Value == y.Value
	case *Float64:
		y, ok := b.(*Float64)
		return ok && (x.Value == y.Value || (x.Value != x.Value && y.Value != y.Value))
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Value == y.Value
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *None:
		_, ok := b.(*None)
		return ok
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.Name == y.Name
	case *PropertyAccess:
		y, ok := b.(*PropertyAccess)
		if !ok || len(x.Parts) != len(y.Parts) {
			return false
		}
		for i := range x.Parts {
			if x.Parts[i] != y.Parts[i] {
				return false
			}
		}
		return true
	case *List:
		y, ok := b.(*List)
		return ok && equalAll(x.Items, y.Items)
	case *Array:
		y, ok := b.(*Array)
		return ok && equalAll(x.Items, y.Items)
	case *Object:
		y, ok := b.(*Object)
		return ok && equalAll(x.Entries, y.Entries)
	case *KeyValue:
		y, ok := b.(*KeyValue)
		return ok && Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *Unquote:
		y, ok := b.(*Unquote)
		return ok && Equal(x.Inner, y.Inner)
	case *Splice:
		y, ok := b.(*Splice)
		return ok && Equal(x.Inner, y.Inner)
	}
	return false
}

func equalAll(a, b []Form) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
