package tree

import (
	"errors"
	"fmt"
)

// Walk visits n and its descendants in depth-first pre-order. The path
// passed to fn is guarded by the ids seen on the way down and can be given
// straight to the mutation functions. Walk stops as soon as fn returns false.
func Walk(n Node, fn func(n Node, p Path) bool) {
	if isNil(n) {
		return
	}
	walk(n, Path{}, fn)
}

func walk(n Node, p Path, fn func(Node, Path) bool) bool {
	if !fn(n, p) {
		return false
	}
	g, ok := n.(*Group)
	if !ok {
		return true
	}
	for i, c := range g.children {
		if isNil(c) {
			continue
		}
		if !walk(c, p.child(i, c.ID()), fn) {
			return false
		}
	}
	return true
}

func isNil(n Node) bool {
	switch x := n.(type) {
	case nil:
		return true
	case *Group:
		return x == nil
	case *Leaf:
		return x == nil
	}
	return false
}

// Find returns the node with the given id and its guarded path.
func Find(root *Group, id string) (Node, Path, bool) {
	var (
		found Node
		at    Path
	)
	Walk(root, func(n Node, p Path) bool {
		if n.ID() == id {
			found, at = n, p
			return false
		}
		return true
	})
	return found, at, found != nil
}

// Leaves returns the leaves of n in pre-order.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	Walk(n, func(n Node, _ Path) bool {
		if l, ok := n.(*Leaf); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// TreeStats summarizes the shape of a tree.
type TreeStats struct {
	Groups int
	Leaves int
	Depth  int // number of edges on the longest root-to-node path
}

// Stats counts the groups and leaves of root and measures its depth.
func Stats(root *Group) TreeStats {
	var s TreeStats
	Walk(root, func(n Node, p Path) bool {
		if IsGroup(n) {
			s.Groups++
		} else {
			s.Leaves++
		}
		s.Depth = max(s.Depth, p.Len())
		return true
	})
	return s
}

// Check verifies the structural invariants of a stable tree: no nil
// children, no empty non-root groups, unique ids and known operators.
// All violations are returned, joined.
func Check(root *Group) error {
	if root == nil {
		return ErrNilNode
	}
	var errs []error
	seen := make(map[string]struct{})
	Walk(root, func(n Node, p Path) bool {
		fail := func(err error) {
			errs = append(errs, &CheckError{NodeID: n.ID(), Path: p, Err: err})
		}
		if _, dup := seen[n.ID()]; dup {
			fail(ErrDuplicateID)
		}
		seen[n.ID()] = struct{}{}

		switch x := n.(type) {
		case *Group:
			if !x.operator.Valid() {
				fail(fmt.Errorf("%w: %q", ErrInvalidOperator, string(x.operator)))
			}
			if !p.IsRoot() && len(x.children) == 0 {
				fail(ErrEmptyGroup)
			}
			for i, c := range x.children {
				if isNil(c) {
					errs = append(errs, &CheckError{Path: p.Child(i), Err: ErrNilNode})
				}
			}
		case *Leaf:
			if !x.operator.Valid() {
				fail(fmt.Errorf("%w: %q", ErrInvalidComparison, string(x.operator)))
			}
		}
		return true
	})
	return errors.Join(errs...)
}
