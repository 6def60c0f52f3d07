package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func leaf(field, value string) *Leaf {
	return NewLeaf(field, Equals, String(value))
}

func mustPath(t *testing.T, root *Group, indices ...int) Path {
	t.Helper()
	p, err := PathAt(root, indices...)
	if err != nil {
		t.Fatalf("PathAt(%v) failed: %v", indices, err)
	}
	return p
}

func TestSetOperatorSharesUnaffectedSubtrees(t *testing.T) {
	a, b, c := leaf("a", "1"), leaf("b", "2"), leaf("c", "3")
	g1 := NewGroup(Or, a, b)
	g2 := NewGroup(And, c)
	root := NewGroup(And, g1, g2)

	out, err := SetOperator(root, mustPath(t, root, 1), Or)
	if err != nil {
		t.Fatalf("SetOperator failed: %v", err)
	}

	if out == root {
		t.Fatal("expected a new root")
	}
	if out.ID() != root.ID() {
		t.Errorf("root id changed: %s -> %s", root.ID(), out.ID())
	}
	if out.Child(0) != Node(g1) {
		t.Error("expected the untouched OR group to be shared")
	}
	edited := out.Child(1).(*Group)
	if edited == g2 {
		t.Error("expected the edited group to be copied")
	}
	if edited.Operator() != Or {
		t.Errorf("expected OR, got %s", edited.Operator())
	}
	if edited.ID() != g2.ID() {
		t.Error("edited group must keep its id")
	}
	if edited.Child(0) != Node(c) {
		t.Error("expected the edited group's children to be shared")
	}

	// input untouched
	if g2.Operator() != And || root.Child(1) != Node(g2) {
		t.Error("input tree was modified")
	}
}

func TestSetOperatorInvalid(t *testing.T) {
	root := NewRoot()
	_, err := SetOperator(root, Path{}, Operator("XOR"))
	if !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
}

func TestSetOperatorOnLeaf(t *testing.T) {
	root := NewGroup(And, leaf("a", "1"))
	_, err := SetOperator(root, mustPath(t, root, 0), Or)
	if !errors.Is(err, ErrNotGroup) {
		t.Fatalf("expected ErrNotGroup, got %v", err)
	}
}

func TestToggleNegationTwice(t *testing.T) {
	a, b := leaf("a", "1"), leaf("b", "2")
	root := NewGroup(And, NewGroup(Or, a), b)
	p := mustPath(t, root, 0)

	once, err := ToggleNegation(root, p)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !once.Child(0).Negated() {
		t.Fatal("expected the group to be negated")
	}
	twice, err := ToggleNegation(once, p)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}

	if !Equivalent(root, twice) {
		t.Error("double toggle should restore an equivalent tree")
	}
	if twice.Child(0).ID() != root.Child(0).ID() {
		t.Error("toggle must not reassign the group id")
	}
	if twice == root || twice == once {
		t.Error("every toggle must return a new root")
	}
}

func TestToggleNegationRootAndLeaf(t *testing.T) {
	a := leaf("a", "1")
	root := NewGroup(And, a)

	out, err := ToggleNegation(root, Path{})
	if err != nil {
		t.Fatalf("toggle root failed: %v", err)
	}
	if !out.Negated() {
		t.Error("expected negated root")
	}

	out, err = ToggleNegation(out, mustPath(t, out, 0))
	if err != nil {
		t.Fatalf("toggle leaf failed: %v", err)
	}
	got := out.Child(0).(*Leaf)
	if !got.Negated() || got.ID() != a.ID() {
		t.Errorf("expected negated leaf with id %s, got negated=%v id=%s", a.ID(), got.Negated(), got.ID())
	}
	if a.Negated() {
		t.Error("input leaf was modified")
	}
}

func TestInsertChildAppendsInOrder(t *testing.T) {
	root := NewRoot()
	first, second := leaf("a", "1"), leaf("b", "2")

	r1, err := InsertChild(root, Path{}, first, true)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	r2, err := InsertChild(r1, Path{}, second, true)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	var ids []string
	for _, c := range r2.Children() {
		ids = append(ids, c.ID())
	}
	if diff := cmp.Diff([]string{first.ID(), second.ID()}, ids); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if first.ID() == second.ID() {
		t.Error("expected distinct ids")
	}
	if root.Len() != 0 || r1.Len() != 1 {
		t.Error("earlier revisions were modified")
	}
}

func TestInsertChildAtStart(t *testing.T) {
	a, b := leaf("a", "1"), leaf("b", "2")
	root := NewGroup(And, a)

	out, err := InsertChild(root, Path{}, b, false)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if out.Child(0) != Node(b) || out.Child(1) != Node(a) {
		t.Error("expected b to be inserted before a")
	}
}

func TestInsertChildDuplicateID(t *testing.T) {
	a := leaf("a", "1")
	root := NewGroup(And, NewGroup(Or, a))

	tests := []struct {
		name  string
		child Node
	}{
		{"same leaf", a},
		{"group containing existing leaf", NewGroup(And, a)},
		{"root itself", root},
		{"duplicate inside subtree", func() Node {
			b := leaf("b", "2")
			return NewGroup(And, b, b)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InsertChild(root, Path{}, tt.child, true)
			if !errors.Is(err, ErrDuplicateID) {
				t.Fatalf("expected ErrDuplicateID, got %v", err)
			}
		})
	}
}

func TestInsertChildNil(t *testing.T) {
	if _, err := InsertChild(NewRoot(), Path{}, nil, true); !errors.Is(err, ErrNilNode) {
		t.Fatalf("expected ErrNilNode, got %v", err)
	}
}

func TestRemoveOnlyChildThenPrune(t *testing.T) {
	a, b := leaf("a", "1"), leaf("b", "2")
	or := NewGroup(Or, a)
	root := NewGroup(And, or, b)

	removed, err := RemoveChild(root, mustPath(t, root, 0), 0)
	if err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	if removed.Len() != 2 || removed.Child(0).(*Group).Len() != 0 {
		t.Fatal("expected an empty OR group before pruning")
	}

	pruned := Prune(removed)
	if pruned.Len() != 1 {
		t.Fatalf("expected 1 child after pruning, got %d", pruned.Len())
	}
	if pruned.Child(0) != Node(b) {
		t.Error("expected leaf b to be kept by reference")
	}
	if pruned.ID() != root.ID() {
		t.Error("root id changed")
	}
}

func TestRemoveChildOutOfRange(t *testing.T) {
	root := NewGroup(And, leaf("a", "1"))
	_, err := RemoveChild(root, Path{}, 3)

	var stale *StalePathError
	if !errors.As(err, &stale) {
		t.Fatalf("expected StalePathError, got %v", err)
	}
	if stale.Path.String() != "/3" {
		t.Errorf("expected path /3, got %s", stale.Path)
	}
}

func TestStalePathAfterPriorEdit(t *testing.T) {
	a, b := leaf("a", "1"), leaf("b", "2")
	root := NewGroup(And, a, b)

	pa := mustPath(t, root, 0)
	pb := mustPath(t, root, 1)

	next, err := Remove(root, pa)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	tests := []struct {
		name string
		path Path
	}{
		{"index shifted out of range", pb},
		{"different node at index", pa},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Remove(next, tt.path)
			if !errors.Is(err, ErrStalePath) {
				t.Fatalf("expected stale path error, got %v", err)
			}
			_, err = ToggleNegation(next, tt.path)
			if !errors.Is(err, ErrStalePath) {
				t.Fatalf("expected stale path error from toggle, got %v", err)
			}
		})
	}

	// a path recomputed from the latest root works
	fresh, ok := PathTo(next, b.ID())
	if !ok {
		t.Fatal("PathTo did not find b")
	}
	if _, err := Remove(next, fresh); err != nil {
		t.Fatalf("Remove with fresh path failed: %v", err)
	}
}

func TestStalePathThroughLeaf(t *testing.T) {
	root := NewGroup(And, leaf("a", "1"))
	_, err := ToggleNegation(root, IndexPath(0, 0))
	if !errors.Is(err, ErrStalePath) {
		t.Fatalf("expected stale path error, got %v", err)
	}
}

func TestReplaceChild(t *testing.T) {
	a, b := leaf("a", "1"), leaf("b", "2")
	root := NewGroup(And, a, b)

	updated := a.WithValues(String("9"))
	out, err := ReplaceChild(root, Path{}, 0, updated)
	if err != nil {
		t.Fatalf("ReplaceChild with same id failed: %v", err)
	}
	if out.Child(0) != Node(updated) || out.Child(1) != Node(b) {
		t.Error("unexpected children after replace")
	}

	_, err = ReplaceChild(root, Path{}, 0, b)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID when reusing a sibling, got %v", err)
	}
}

func TestChildEditsRejectStaleSiblingIndex(t *testing.T) {
	a, b, c := leaf("a", "1"), leaf("b", "2"), leaf("c", "3")
	root := NewGroup(And, a, b, c)

	next, err := Remove(root, mustPath(t, root, 0))
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// index 1 was b when derived and is c now
	edits := []Mutation{
		RemoveChildEdit{Parent: Path{}, Index: 1, ID: b.ID()},
		ReplaceChildEdit{Parent: Path{}, Index: 1, ID: b.ID(), Child: leaf("x", "9")},
	}
	for _, m := range edits {
		t.Run(m.Name(), func(t *testing.T) {
			_, err := m.Apply(next)
			var se *StalePathError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StalePathError, got %v", err)
			}
		})
	}

	if _, err := Remove(next, Path{}.GuardedChild(1, b.ID())); !errors.Is(err, ErrStalePath) {
		t.Fatalf("expected stale path from a guarded child step, got %v", err)
	}

	out, err := RemoveChildEdit{Parent: Path{}, Index: 0, ID: b.ID()}.Apply(next)
	if err != nil {
		t.Fatalf("RemoveChildEdit at the current index failed: %v", err)
	}
	if out.Len() != 1 || out.Child(0) != Node(c) {
		t.Error("expected only c to remain")
	}
}

func TestRemoveRoot(t *testing.T) {
	root := NewRoot()
	if _, err := Remove(root, Path{}); !errors.Is(err, ErrRootRemoval) {
		t.Fatalf("expected ErrRootRemoval, got %v", err)
	}
	if _, err := Replace(root, Path{}, NewRoot()); !errors.Is(err, ErrRootRemoval) {
		t.Fatalf("expected ErrRootRemoval, got %v", err)
	}
}

func TestMutationsDoNotModifyInput(t *testing.T) {
	a, b, c := leaf("a", "1"), leaf("b", "2"), leaf("c", "3")
	root := NewGroup(And, NewGroup(Or, a, b), c)
	before := Stats(root)

	edits := []Mutation{
		SetOperatorEdit{Path: mustPath(t, root, 0), Operator: NotOr},
		ToggleNegationEdit{Path: mustPath(t, root, 0, 1)},
		InsertEdit{Parent: mustPath(t, root, 0), Child: leaf("d", "4")},
		RemoveChildEdit{Parent: Path{}, Index: 1},
		RemoveEdit{Path: mustPath(t, root, 0, 0)},
		ReplaceChildEdit{Parent: Path{}, Index: 1, Child: leaf("e", "5")},
		ReplaceEdit{Path: mustPath(t, root, 0), Node: leaf("f", "6")},
		UpdateLeafEdit{Path: mustPath(t, root, 1), Update: func(l *Leaf) (*Leaf, error) {
			return l.WithField("g"), nil
		}},
	}
	for _, m := range edits {
		t.Run(m.Name(), func(t *testing.T) {
			out, err := m.Apply(root)
			if err != nil {
				t.Fatalf("%s failed: %v", m.Name(), err)
			}
			if out == root {
				t.Error("expected a new root")
			}
			if diff := cmp.Diff(before, Stats(root)); diff != "" {
				t.Errorf("input changed (-want +got):\n%s", diff)
			}
			if root.Child(0).(*Group).Operator() != Or || root.Child(0).(*Group).Child(1).Negated() {
				t.Error("input nodes were modified")
			}
		})
	}
}

func TestUpdateLeafEditOnGroup(t *testing.T) {
	root := NewGroup(And, NewGroup(Or, leaf("a", "1")))
	m := UpdateLeafEdit{Path: mustPath(t, root, 0), Update: func(l *Leaf) (*Leaf, error) { return l, nil }}
	if _, err := m.Apply(root); err == nil {
		t.Fatal("expected an error updating a group as a leaf")
	}
}

func TestBatch(t *testing.T) {
	root := NewRoot()
	a := leaf("a", "1")
	g := NewGroup(Or, leaf("b", "2"))

	out, err := Batch{
		InsertEdit{Parent: Path{}, Child: a},
		InsertEdit{Parent: Path{}, Child: g},
		SetOperatorEdit{Path: IndexPath(1), Operator: NotOr},
	}.Apply(root)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if out.Len() != 2 || out.Child(1).(*Group).Operator() != NotOr {
		t.Errorf("unexpected batch result: %d children", out.Len())
	}

	_, err = Batch{RemoveChildEdit{Parent: Path{}, Index: 0}}.Apply(root)
	if !errors.Is(err, ErrStalePath) {
		t.Fatalf("expected wrapped stale path error, got %v", err)
	}
}
