package filtertree

import (
	"fmt"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/tree"
	"github.com/hugr-lab/filtertree/validate"
)

// TreeBuilder builds filter trees using fluent API.
// Not thread-safe - use only from one goroutine.
type TreeBuilder struct {
	root   *groupBuilder
	lookup fields.Lookup
	built  bool
}

// NewTreeBuilder creates a new fluent tree builder.
// Returns builder for an empty AND root.
//
// Example:
//
//	root, err := filtertree.NewTreeBuilder().
//	    Field("title", tree.Contains, tree.String("foo")).
//	    Group(tree.Or).
//	        Field("created", tree.After, tree.Time(since)).
//	        NotField("status", tree.Equals, tree.String("draft")).
//	    End().
//	    Build()
func NewTreeBuilder() *TreeBuilder {
	tb := &TreeBuilder{}
	tb.root = &groupBuilder{operator: tree.And, treeBuilder: tb}
	return tb
}

// Fields makes Build check leaves against lookup.
// Returns self for method chaining.
func (tb *TreeBuilder) Fields(lookup fields.Lookup) *TreeBuilder {
	tb.lookup = lookup
	return tb
}

// Operator sets the root operator.
// Returns self for method chaining.
func (tb *TreeBuilder) Operator(op tree.Operator) *TreeBuilder {
	tb.root.operator = op
	return tb
}

// Negated sets the root negation flag.
// Returns self for method chaining.
func (tb *TreeBuilder) Negated() *TreeBuilder {
	tb.root.negated = true
	return tb
}

// Field adds a leaf to the root.
// Returns self for method chaining.
func (tb *TreeBuilder) Field(field string, op tree.Comparison, values ...tree.Value) *TreeBuilder {
	tb.root.add(tree.NewLeaf(field, op, values...))
	return tb
}

// NotField adds a negated leaf to the root.
// Returns self for method chaining.
func (tb *TreeBuilder) NotField(field string, op tree.Comparison, values ...tree.Value) *TreeBuilder {
	tb.root.add(tree.NewNotLeaf(field, op, values...))
	return tb
}

// Node adds an existing node to the root.
// Returns self for method chaining.
func (tb *TreeBuilder) Node(n tree.Node) *TreeBuilder {
	tb.root.add(n)
	return tb
}

// Group starts a nested group under the root.
// Returns GroupBuilder for adding children; End() returns to the root.
func (tb *TreeBuilder) Group(op tree.Operator) *GroupBuilder {
	return tb.root.group(op)
}

// Build finalizes the tree.
// Can only be called once. Further calls return ErrAlreadyBuilt.
// Returns error if the tree is invalid (e.g., an empty nested group or
// a leaf that does not fit its field).
func (tb *TreeBuilder) Build() (*tree.Group, error) {
	if tb.built {
		return nil, ErrAlreadyBuilt
	}

	root, err := tb.root.build()
	if err != nil {
		return nil, err
	}
	if err := tree.Check(root); err != nil {
		return nil, err
	}
	if err := validate.Tree(root, tb.lookup); err != nil {
		return nil, err
	}

	tb.built = true
	return root, nil
}

// GroupBuilder builds a nested group.
// Not thread-safe - use only from one goroutine.
type GroupBuilder struct {
	builder *groupBuilder
}

// groupBuilder is the internal group builder implementation.
type groupBuilder struct {
	operator    tree.Operator
	negated     bool
	children    []child
	parent      *groupBuilder
	treeBuilder *TreeBuilder
}

// child is either a finished node or a nested builder.
type child struct {
	node  tree.Node
	group *groupBuilder
}

func (gb *groupBuilder) add(n tree.Node) {
	gb.children = append(gb.children, child{node: n})
}

func (gb *groupBuilder) group(op tree.Operator) *GroupBuilder {
	sub := &groupBuilder{operator: op, parent: gb, treeBuilder: gb.treeBuilder}
	gb.children = append(gb.children, child{group: sub})
	return &GroupBuilder{builder: sub}
}

func (gb *groupBuilder) build() (*tree.Group, error) {
	if !gb.operator.Valid() {
		return nil, fmt.Errorf("%w: %q", tree.ErrInvalidOperator, string(gb.operator))
	}
	nodes := make([]tree.Node, 0, len(gb.children))
	for _, c := range gb.children {
		if c.group == nil {
			nodes = append(nodes, c.node)
			continue
		}
		g, err := c.group.build()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, g)
	}
	return tree.NewGroup(gb.operator, nodes...).WithNegated(gb.negated), nil
}

// Negated sets the group's negation flag.
// Returns self for method chaining.
func (b *GroupBuilder) Negated() *GroupBuilder {
	b.builder.negated = true
	return b
}

// Field adds a leaf to this group.
// Returns self for method chaining.
func (b *GroupBuilder) Field(field string, op tree.Comparison, values ...tree.Value) *GroupBuilder {
	b.builder.add(tree.NewLeaf(field, op, values...))
	return b
}

// NotField adds a negated leaf to this group.
// Returns self for method chaining.
func (b *GroupBuilder) NotField(field string, op tree.Comparison, values ...tree.Value) *GroupBuilder {
	b.builder.add(tree.NewNotLeaf(field, op, values...))
	return b
}

// Node adds an existing node to this group.
// Returns self for method chaining.
func (b *GroupBuilder) Node(n tree.Node) *GroupBuilder {
	b.builder.add(n)
	return b
}

// Group starts a group nested in this one.
func (b *GroupBuilder) Group(op tree.Operator) *GroupBuilder {
	return b.builder.group(op)
}

// End finishes this group and returns its parent. For a group directly
// under the root the parent is the root, so further calls add to it.
func (b *GroupBuilder) End() *GroupBuilder {
	return &GroupBuilder{builder: b.builder.parent}
}

// Build finalizes the tree (returns to TreeBuilder).
// Same as calling treeBuilder.Build().
func (b *GroupBuilder) Build() (*tree.Group, error) {
	return b.builder.treeBuilder.Build()
}
