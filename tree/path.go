package tree

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Path locates a node by the child indices leading to it from the root.
//
// A path built by PathAt or PathTo also records the id observed at every
// step. Resolving it against a later revision fails with a *StalePathError
// if any of those nodes moved or disappeared, so an edit never lands on
// the wrong node. IndexPath builds an unguarded path that is checked only
// against child counts.
//
// The zero Path addresses the root.
type Path struct {
	indices []int
	ids     []string // "" means the step is unguarded
}

// IndexPath returns an unguarded path from child indices.
func IndexPath(indices ...int) Path {
	return Path{
		indices: slices.Clone(indices),
		ids:     make([]string, len(indices)),
	}
}

// PathAt returns a guarded path for indices, resolved against root.
func PathAt(root *Group, indices ...int) (Path, error) {
	p := IndexPath(indices...)
	var cur Node = root
	for depth, i := range p.indices {
		g, ok := cur.(*Group)
		if !ok {
			return Path{}, p.stale(depth, "step crosses a leaf")
		}
		if i < 0 || i >= len(g.children) {
			return Path{}, p.stale(depth, "index "+strconv.Itoa(i)+" out of range")
		}
		cur = g.children[i]
		p.ids[depth] = cur.ID()
	}
	return p, nil
}

// PathTo returns the guarded path of the node with the given id.
// ok is false if no node in root has that id.
func PathTo(root *Group, id string) (p Path, ok bool) {
	Walk(root, func(n Node, at Path) bool {
		if n.ID() == id {
			p, ok = at, true
		}
		return !ok
	})
	return p, ok
}

// Len returns the number of steps; 0 for the root.
func (p Path) Len() int { return len(p.indices) }

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool { return len(p.indices) == 0 }

// Indices returns a copy of the child indices.
func (p Path) Indices() []int {
	return slices.Clone(p.indices)
}

// Parent returns the path of the node's parent. The root's parent is the root.
func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	n := len(p.indices) - 1
	return Path{indices: p.indices[:n:n], ids: p.ids[:n:n]}
}

// Last returns the final child index. It returns -1 for the root.
func (p Path) Last() int {
	if p.IsRoot() {
		return -1
	}
	return p.indices[len(p.indices)-1]
}

// Child returns p extended by an unguarded step to child index i.
func (p Path) Child(i int) Path {
	return p.child(i, "")
}

// GuardedChild returns p extended by a step to child index i that only
// resolves while the child there has the given id. An empty id gives an
// unguarded step, like Child.
func (p Path) GuardedChild(i int, id string) Path {
	return p.child(i, id)
}

func (p Path) child(i int, id string) Path {
	return Path{
		indices: append(slices.Clip(p.indices), i),
		ids:     append(slices.Clip(p.ids), id),
	}
}

// Equal reports whether p and o have the same indices.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p.indices, o.indices)
}

// String renders p as "/0/2"; the root renders as "/".
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	var b strings.Builder
	for _, i := range p.indices {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

func (p Path) stale(depth int, reason string) *StalePathError {
	return &StalePathError{Path: p, Depth: depth, Reason: reason}
}

// Resolve returns the node p addresses in root.
func Resolve(root *Group, p Path) (Node, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	var cur Node = root
	for depth, i := range p.indices {
		g, ok := cur.(*Group)
		if !ok {
			return nil, p.stale(depth, "step crosses a leaf")
		}
		if i < 0 || i >= len(g.children) {
			return nil, p.stale(depth, "index "+strconv.Itoa(i)+" out of range")
		}
		cur = g.children[i]
		if want := p.ids[depth]; want != "" && cur.ID() != want {
			return nil, p.stale(depth, "node "+want+" is no longer at this position")
		}
	}
	return cur, nil
}

// ResolveGroup is Resolve for paths that must address a group.
func ResolveGroup(root *Group, p Path) (*Group, error) {
	n, err := Resolve(root, p)
	if err != nil {
		return nil, err
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
	}
	return g, nil
}
