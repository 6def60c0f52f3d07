package tree

// Equivalent reports whether a and b have the same structure, operators,
// negation flags and values. Ids are ignored, so a tree is equivalent to
// its own text round trip.
func Equivalent(a, b Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if a.Kind() != b.Kind() || a.Negated() != b.Negated() {
		return false
	}
	switch x := a.(type) {
	case *Leaf:
		y := b.(*Leaf)
		if x.field != y.field || x.operator != y.operator || len(x.values) != len(y.values) {
			return false
		}
		for i := range x.values {
			if x.values[i].Kind != y.values[i].Kind || !x.values[i].Equal(y.values[i]) {
				return false
			}
		}
		return true
	case *Group:
		y := b.(*Group)
		if x.operator != y.operator || len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if !Equivalent(x.children[i], y.children[i]) {
				return false
			}
		}
		return true
	}
	return false
}
