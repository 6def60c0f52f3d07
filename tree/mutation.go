package tree

import (
	"errors"
	"fmt"
)

// Mutation is a single structural edit. Apply must not modify root.
type Mutation interface {
	// Name identifies the kind of edit, for logs and metrics.
	Name() string

	// Target returns the path the edit addresses.
	Target() Path

	// Apply returns the edited root.
	Apply(root *Group) (*Group, error)
}

// SetOperatorEdit changes the operator of the group at Path.
type SetOperatorEdit struct {
	Path     Path
	Operator Operator
}

func (e SetOperatorEdit) Name() string { return "set_operator" }
func (e SetOperatorEdit) Target() Path { return e.Path }
func (e SetOperatorEdit) Apply(root *Group) (*Group, error) {
	return SetOperator(root, e.Path, e.Operator)
}

// ToggleNegationEdit flips the negation flag of the node at Path.
type ToggleNegationEdit struct {
	Path Path
}

func (e ToggleNegationEdit) Name() string { return "toggle_negation" }
func (e ToggleNegationEdit) Target() Path { return e.Path }
func (e ToggleNegationEdit) Apply(root *Group) (*Group, error) {
	return ToggleNegation(root, e.Path)
}

// InsertEdit adds Child to the group at Parent. Children are appended
// unless AtStart is set.
type InsertEdit struct {
	Parent  Path
	Child   Node
	AtStart bool
}

func (e InsertEdit) Name() string { return "insert" }
func (e InsertEdit) Target() Path { return e.Parent }
func (e InsertEdit) Apply(root *Group) (*Group, error) {
	return InsertChild(root, e.Parent, e.Child, !e.AtStart)
}

// RemoveChildEdit removes the child at Index of the group at Parent. When
// ID is set, the edit fails with a *StalePathError unless the child at
// Index still has that id.
type RemoveChildEdit struct {
	Parent Path
	Index  int
	ID     string
}

func (e RemoveChildEdit) Name() string { return "remove_child" }
func (e RemoveChildEdit) Target() Path { return e.Parent.GuardedChild(e.Index, e.ID) }
func (e RemoveChildEdit) Apply(root *Group) (*Group, error) {
	if e.ID != "" {
		return Remove(root, e.Target())
	}
	return RemoveChild(root, e.Parent, e.Index)
}

// RemoveEdit removes the node at Path.
type RemoveEdit struct {
	Path Path
}

func (e RemoveEdit) Name() string { return "remove" }
func (e RemoveEdit) Target() Path { return e.Path }
func (e RemoveEdit) Apply(root *Group) (*Group, error) {
	return Remove(root, e.Path)
}

// ReplaceChildEdit replaces the child at Index of the group at Parent.
// ID guards the child at Index as in RemoveChildEdit.
type ReplaceChildEdit struct {
	Parent Path
	Index  int
	ID     string
	Child  Node
}

func (e ReplaceChildEdit) Name() string { return "replace_child" }
func (e ReplaceChildEdit) Target() Path { return e.Parent.GuardedChild(e.Index, e.ID) }
func (e ReplaceChildEdit) Apply(root *Group) (*Group, error) {
	if e.ID != "" {
		return Replace(root, e.Target(), e.Child)
	}
	return ReplaceChild(root, e.Parent, e.Index, e.Child)
}

// ReplaceEdit replaces the node at Path with Node.
type ReplaceEdit struct {
	Path Path
	Node Node
}

func (e ReplaceEdit) Name() string { return "replace" }
func (e ReplaceEdit) Target() Path { return e.Path }
func (e ReplaceEdit) Apply(root *Group) (*Group, error) {
	return Replace(root, e.Path, e.Node)
}

// UpdateLeafEdit replaces the leaf at Path with the result of Update.
// Update receives the current leaf and usually returns one of its With copies.
type UpdateLeafEdit struct {
	Path   Path
	Update func(*Leaf) (*Leaf, error)
}

func (e UpdateLeafEdit) Name() string { return "update_leaf" }
func (e UpdateLeafEdit) Target() Path { return e.Path }
func (e UpdateLeafEdit) Apply(root *Group) (*Group, error) {
	if e.Update == nil {
		return nil, errors.New("update_leaf: nil update function")
	}
	n, err := Resolve(root, e.Path)
	if err != nil {
		return nil, err
	}
	leaf, ok := n.(*Leaf)
	if !ok {
		return nil, fmt.Errorf("update_leaf: node at %s is a %s", e.Path, n.Kind())
	}
	updated, err := e.Update(leaf)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNilNode
	}
	return Replace(root, e.Path, updated)
}

// Batch applies its edits in order as one mutation. Paths in later edits
// must be valid against the result of the earlier ones.
type Batch []Mutation

func (b Batch) Name() string { return "batch" }

func (b Batch) Target() Path {
	if len(b) == 0 {
		return Path{}
	}
	return b[0].Target()
}

func (b Batch) Apply(root *Group) (*Group, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	if len(b) == 0 {
		return root.withChildren(root.children), nil
	}
	cur := root
	for i, m := range b {
		next, err := m.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("batch edit %d (%s): %w", i, m.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
