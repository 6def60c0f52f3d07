package tree

import (
	"fmt"
	"strconv"
)

// The functions in this file never modify their arguments. Each returns a
// new root in which only the groups on the path to the edited node are
// copied; every other subtree is shared with the input by reference.

// rewrite replaces the node at p with fn's result and rebuilds its ancestors.
func rewrite(n Node, p Path, depth int, fn func(Node) (Node, error)) (Node, error) {
	if depth == len(p.indices) {
		return fn(n)
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, p.stale(depth, "step crosses a leaf")
	}
	i := p.indices[depth]
	if i < 0 || i >= len(g.children) {
		return nil, p.stale(depth, "index "+strconv.Itoa(i)+" out of range")
	}
	child := g.children[i]
	if want := p.ids[depth]; want != "" && child.ID() != want {
		return nil, p.stale(depth, "node "+want+" is no longer at this position")
	}
	out, err := rewrite(child, p, depth+1, fn)
	if err != nil {
		return nil, err
	}
	return g.replaceAt(i, out), nil
}

func edit(root *Group, p Path, fn func(Node) (Node, error)) (*Group, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	out, err := rewrite(root, p, 0, fn)
	if err != nil {
		return nil, err
	}
	g, ok := out.(*Group)
	if !ok {
		return nil, ErrRootRemoval
	}
	return g, nil
}

func editGroup(root *Group, p Path, fn func(*Group) (*Group, error)) (*Group, error) {
	return edit(root, p, func(n Node) (Node, error) {
		g, ok := n.(*Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
		}
		return fn(g)
	})
}

// SetOperator returns a new root in which the group at groupPath uses op.
func SetOperator(root *Group, groupPath Path, op Operator) (*Group, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, string(op))
	}
	return editGroup(root, groupPath, func(g *Group) (*Group, error) {
		return g.WithOperator(op), nil
	})
}

// ToggleNegation returns a new root in which the negation flag of the node
// at path is flipped. The node keeps its id. Groups and leaves are accepted.
func ToggleNegation(root *Group, path Path) (*Group, error) {
	return edit(root, path, func(n Node) (Node, error) {
		switch x := n.(type) {
		case *Group:
			return x.WithNegated(!x.negated), nil
		case *Leaf:
			return x.WithNegated(!x.negated), nil
		default:
			return nil, ErrNilNode
		}
	})
}

// InsertChild returns a new root with child added to the group at
// parentPath, after the existing children when atEnd is true and before
// them otherwise. The ids in child must not already occur in root.
func InsertChild(root *Group, parentPath Path, child Node, atEnd bool) (*Group, error) {
	if child == nil {
		return nil, ErrNilNode
	}
	if err := checkIDs(root, child, nil); err != nil {
		return nil, err
	}
	return editGroup(root, parentPath, func(g *Group) (*Group, error) {
		return g.insert(child, atEnd), nil
	})
}

// AppendChild is InsertChild with atEnd set.
func AppendChild(root *Group, parentPath Path, child Node) (*Group, error) {
	return InsertChild(root, parentPath, child, true)
}

// RemoveChild returns a new root without the child at index of the group at
// parentPath. The remaining children keep their ids. The result may hold an
// empty non-root group until it is pruned.
//
// index is only checked against the child count. To fail with a
// *StalePathError when the child moved, use Remove with
// parentPath.GuardedChild(index, id).
func RemoveChild(root *Group, parentPath Path, index int) (*Group, error) {
	return editGroup(root, parentPath, func(g *Group) (*Group, error) {
		if index < 0 || index >= len(g.children) {
			return nil, parentPath.Child(index).stale(parentPath.Len(), "index "+strconv.Itoa(index)+" out of range")
		}
		return g.removeAt(index), nil
	})
}

// ReplaceChild returns a new root in which the child at index of the group
// at parentPath is child. Ids of the replaced subtree may be reused by child.
// Like RemoveChild, index is not checked against an id; Replace with a
// guarded path is.
func ReplaceChild(root *Group, parentPath Path, index int, child Node) (*Group, error) {
	if child == nil {
		return nil, ErrNilNode
	}
	return editGroup(root, parentPath, func(g *Group) (*Group, error) {
		if index < 0 || index >= len(g.children) {
			return nil, parentPath.Child(index).stale(parentPath.Len(), "index "+strconv.Itoa(index)+" out of range")
		}
		if err := checkIDs(root, child, g.children[index]); err != nil {
			return nil, err
		}
		return g.replaceAt(index, child), nil
	})
}

// Remove removes the node addressed by p. Unlike RemoveChild, the final
// step of a guarded p is checked against the id it was derived from.
func Remove(root *Group, p Path) (*Group, error) {
	if p.IsRoot() {
		return nil, ErrRootRemoval
	}
	if _, err := Resolve(root, p); err != nil {
		return nil, err
	}
	return RemoveChild(root, p.Parent(), p.Last())
}

// Replace replaces the node addressed by p with n.
func Replace(root *Group, p Path, n Node) (*Group, error) {
	if p.IsRoot() {
		return nil, ErrRootRemoval
	}
	if _, err := Resolve(root, p); err != nil {
		return nil, err
	}
	return ReplaceChild(root, p.Parent(), p.Last(), n)
}

// checkIDs verifies that the ids in sub are unique and absent from root,
// ignoring the ids of the subtree being replaced.
func checkIDs(root *Group, sub Node, replaced Node) error {
	ids := make(map[string]struct{})
	var dup string
	Walk(sub, func(n Node, _ Path) bool {
		if _, ok := ids[n.ID()]; ok {
			dup = n.ID()
			return false
		}
		ids[n.ID()] = struct{}{}
		return true
	})
	if dup != "" {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	if replaced != nil {
		Walk(replaced, func(n Node, _ Path) bool {
			delete(ids, n.ID())
			return true
		})
	}
	if len(ids) == 0 || root == nil {
		return nil
	}
	Walk(root, func(n Node, _ Path) bool {
		if _, ok := ids[n.ID()]; ok {
			dup = n.ID()
			return false
		}
		return true
	})
	if dup != "" {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	return nil
}
