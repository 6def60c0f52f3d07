package tree

// Record supplies attribute values to Evaluate. A field with no values is
// null.
type Record interface {
	Values(field string) []Value
}

// Attributes is a Record backed by a map.
type Attributes map[string][]Value

func (a Attributes) Values(field string) []Value {
	return a[field]
}

// Evaluate reports whether r matches the condition rooted at n.
//
// A group combines its children with AND or OR, inverting the result for
// NOT AND and NOT OR, and inverts it again when the group is negated. An
// empty AND is true and an empty OR is false.
//
// A leaf holds if any of the field's values satisfies the operator, except
// that <> holds only when the field has values and none of them is equal to
// the operand, and "is null" holds when the field has no values.
// Values whose kinds do not fit the operator never match.
func Evaluate(n Node, r Record) bool {
	switch x := n.(type) {
	case *Group:
		if x == nil {
			return false
		}
		return evalGroup(x, r) != x.negated
	case *Leaf:
		if x == nil {
			return false
		}
		return evalLeaf(x, r) != x.negated
	}
	return false
}

func evalGroup(g *Group, r Record) bool {
	var result bool
	switch g.operator.Base() {
	case Or:
		result = false
		for _, c := range g.children {
			if Evaluate(c, r) {
				result = true
				break
			}
		}
	default:
		result = true
		for _, c := range g.children {
			if !Evaluate(c, r) {
				result = false
				break
			}
		}
	}
	if g.operator.IsNegated() {
		return !result
	}
	return result
}

func evalLeaf(l *Leaf, r Record) bool {
	vals := r.Values(l.field)
	if l.operator == IsNull {
		return len(vals) == 0
	}
	if !l.operator.AcceptsArity(len(l.values)) {
		return false
	}
	if l.operator == NotEquals {
		if len(vals) == 0 {
			return false
		}
		for _, v := range vals {
			if v.Equal(l.values[0]) {
				return false
			}
		}
		return true
	}
	for _, v := range vals {
		if match(l.operator, v, l.values) {
			return true
		}
	}
	return false
}

func match(op Comparison, v Value, args []Value) bool {
	switch op {
	case Equals:
		return v.Equal(args[0])
	case Less, LessOrEqual, Greater, GreaterOrEqual:
		c, ok := v.Compare(args[0])
		if !ok {
			return false
		}
		switch op {
		case Less:
			return c < 0
		case LessOrEqual:
			return c <= 0
		case Greater:
			return c > 0
		default:
			return c >= 0
		}
	case Contains:
		s, ok1 := v.AsString()
		sub, ok2 := args[0].AsString()
		return ok1 && ok2 && containsFold(s, sub)
	case Like:
		s, ok1 := v.AsString()
		pat, ok2 := args[0].AsString()
		return ok1 && ok2 && MatchWildcard(pat, s)
	case Before, After:
		if v.Kind != ValueTime || args[0].Kind != ValueTime {
			return false
		}
		c, _ := v.Compare(args[0])
		if op == Before {
			return c < 0
		}
		return c > 0
	case During:
		if v.Kind != ValueTime || args[0].Kind != ValueTime || args[1].Kind != ValueTime {
			return false
		}
		return inRange(v, args[0], args[1])
	case Between:
		return inRange(v, args[0], args[1])
	case In:
		for _, a := range args {
			if v.Equal(a) {
				return true
			}
		}
		return false
	case Near:
		s, ok1 := v.AsString()
		phrase, ok2 := args[0].AsString()
		dist, ok3 := args[1].AsInt()
		return ok1 && ok2 && ok3 && dist >= 0 && near(s, phrase, int(dist))
	case Intersects:
		a, ok1 := v.AsGeometry()
		b, ok2 := args[0].AsGeometry()
		return ok1 && ok2 && intersects(a, b)
	case DWithin:
		a, ok1 := v.AsGeometry()
		b, ok2 := args[0].AsGeometry()
		meters, ok3 := args[1].AsFloat()
		return ok1 && ok2 && ok3 && withinDistance(a, b, meters)
	}
	return false
}

func inRange(v, lo, hi Value) bool {
	c1, ok1 := v.Compare(lo)
	c2, ok2 := v.Compare(hi)
	return ok1 && ok2 && c1 >= 0 && c2 <= 0
}
