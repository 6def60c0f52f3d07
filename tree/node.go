package tree

import (
	"slices"

	"github.com/google/uuid"
)

// NodeKind identifies the variant of a tree node.
type NodeKind uint8

const (
	KindLeaf NodeKind = iota + 1
	KindGroup
)

// String returns "leaf" or "group".
func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the interface implemented by *Leaf and *Group.
// Use Kind, IsGroup or a type switch to access the concrete node.
type Node interface {
	// ID returns the identifier assigned when the node was created.
	ID() string

	// Kind returns KindLeaf or KindGroup.
	Kind() NodeKind

	// Negated reports whether the node's result is inverted.
	Negated() bool

	// nodeMarker is a marker method to prevent external implementation.
	nodeMarker()
}

// IsGroup reports whether n is a group node. A nil node is neither kind.
func IsGroup(n Node) bool {
	return n != nil && n.Kind() == KindGroup
}

// IsLeaf reports whether n is a leaf predicate.
func IsLeaf(n Node) bool {
	return n != nil && n.Kind() == KindLeaf
}

func newID() string {
	return uuid.NewString()
}

// Leaf is a single field/operator/value condition.
// Leaves are immutable; the With methods return modified copies that keep the id.
type Leaf struct {
	id       string
	field    string
	operator Comparison
	values   []Value
	negated  bool
}

// NewLeaf creates a leaf predicate with a fresh id.
func NewLeaf(field string, op Comparison, values ...Value) *Leaf {
	return &Leaf{
		id:       newID(),
		field:    field,
		operator: op,
		values:   slices.Clone(values),
	}
}

// NewNotLeaf creates a negated leaf predicate with a fresh id.
func NewNotLeaf(field string, op Comparison, values ...Value) *Leaf {
	l := NewLeaf(field, op, values...)
	l.negated = true
	return l
}

func (l *Leaf) ID() string { return l.id }
func (l *Leaf) Kind() NodeKind { return KindLeaf }
func (l *Leaf) Negated() bool { return l.negated }
func (l *Leaf) nodeMarker() {}
func (l *Leaf) Field() string { return l.field }
func (l *Leaf) NumValues() int { return len(l.values) }
func (l *Leaf) Value(i int) Value { return l.values[i] }

// Operator returns the comparison applied to the field.
func (l *Leaf) Operator() Comparison { return l.operator }

// Values returns a copy of the leaf's operands.
func (l *Leaf) Values() []Value {
	return slices.Clone(l.values)
}

// WithField returns a copy of l comparing a different field.
func (l *Leaf) WithField(field string) *Leaf {
	c := *l
	c.field = field
	return &c
}

// WithOperator returns a copy of l using op.
func (l *Leaf) WithOperator(op Comparison) *Leaf {
	c := *l
	c.operator = op
	return &c
}

// WithValues returns a copy of l with the given operands.
func (l *Leaf) WithValues(values ...Value) *Leaf {
	c := *l
	c.values = slices.Clone(values)
	return &c
}

// WithNegated returns a copy of l with the negation flag set to negated.
func (l *Leaf) WithNegated(negated bool) *Leaf {
	c := *l
	c.negated = negated
	return &c
}

// Group combines its children under a boolean operator.
//
// The negation flag is independent of the operator: a NOT AND group with
// Negated() == true evaluates as NOT (NOT (a AND b)).
type Group struct {
	id       string
	operator Operator
	negated  bool
	children []Node
}

// NewGroup creates a group with a fresh id.
func NewGroup(op Operator, children ...Node) *Group {
	return &Group{
		id:       newID(),
		operator: op,
		children: slices.Clone(children),
	}
}

// NewRoot creates the empty AND group that starts an editing session.
func NewRoot() *Group {
	return NewGroup(And)
}

func (g *Group) ID() string { return g.id }
func (g *Group) Kind() NodeKind { return KindGroup }
func (g *Group) Negated() bool { return g.negated }
func (g *Group) nodeMarker() {}

// Operator returns the group's boolean operator.
func (g *Group) Operator() Operator { return g.operator }

// Len returns the number of children.
func (g *Group) Len() int { return len(g.children) }

// Child returns the child at index i. It panics if i is out of range.
func (g *Group) Child(i int) Node { return g.children[i] }

// Children returns a copy of the child list.
func (g *Group) Children() []Node {
	return slices.Clone(g.children)
}

// WithOperator returns a copy of g using op. Children are shared.
func (g *Group) WithOperator(op Operator) *Group {
	c := *g
	c.operator = op
	return &c
}

// WithNegated returns a copy of g with the negation flag set to negated.
func (g *Group) WithNegated(negated bool) *Group {
	c := *g
	c.negated = negated
	return &c
}

func (g *Group) withChildren(children []Node) *Group {
	c := *g
	c.children = children
	return &c
}

func (g *Group) replaceAt(i int, n Node) *Group {
	children := slices.Clone(g.children)
	children[i] = n
	return g.withChildren(children)
}

func (g *Group) removeAt(i int) *Group {
	children := make([]Node, 0, len(g.children)-1)
	children = append(children, g.children[:i]...)
	children = append(children, g.children[i+1:]...)
	return g.withChildren(children)
}

func (g *Group) insert(n Node, atEnd bool) *Group {
	children := make([]Node, 0, len(g.children)+1)
	if atEnd {
		children = append(children, g.children...)
		children = append(children, n)
	} else {
		children = append(children, n)
		children = append(children, g.children...)
	}
	return g.withChildren(children)
}
