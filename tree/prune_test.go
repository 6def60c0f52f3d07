package tree

import (
	"errors"
	"testing"
)

func TestPruneKeepsRoot(t *testing.T) {
	tests := []struct {
		name string
		root *Group
	}{
		{"empty root", NewRoot()},
		{"root with only empty groups", NewGroup(And, NewGroup(Or), NewGroup(And, NewGroup(Or)))},
		{"empty negated root", NewGroup(NotOr).WithNegated(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Prune(tt.root)
			if out == nil {
				t.Fatal("root was removed")
			}
			if out.ID() != tt.root.ID() {
				t.Error("root id changed")
			}
			if out.Len() != 0 {
				t.Errorf("expected no children, got %d", out.Len())
			}
			if out.Operator() != tt.root.Operator() || out.Negated() != tt.root.Negated() {
				t.Error("root flags changed")
			}
		})
	}
}

func TestPruneCascades(t *testing.T) {
	a := leaf("a", "1")
	root := NewGroup(And,
		NewGroup(Or, NewGroup(And), NewGroup(NotAnd, NewGroup(Or))),
		a,
	)

	out, removed := PruneCounted(root)
	if removed != 4 {
		t.Errorf("expected 4 groups removed, got %d", removed)
	}
	if out.Len() != 1 || out.Child(0) != Node(a) {
		t.Fatalf("expected only leaf a to remain, got %d children", out.Len())
	}
	if err := Check(out); err != nil {
		t.Errorf("pruned tree fails Check: %v", err)
	}
}

func TestPruneSharesUntouchedSubtrees(t *testing.T) {
	kept := NewGroup(Or, leaf("a", "1"), leaf("b", "2"))
	parent := NewGroup(And, NewGroup(Or), kept)
	root := NewGroup(And, parent, leaf("c", "3"))

	out := Prune(root)
	if out == root {
		t.Fatal("expected a new root when a group is pruned")
	}
	if out.Child(1) != root.Child(1) {
		t.Error("sibling leaf should be shared")
	}
	p := out.Child(0).(*Group)
	if p == parent || p.ID() != parent.ID() {
		t.Error("parent of the pruned group should be copied with its id")
	}
	if p.Len() != 1 || p.Child(0) != Node(kept) {
		t.Error("surviving group should be shared")
	}
}

func TestPruneNoChangeReturnsInput(t *testing.T) {
	root := NewGroup(And, NewGroup(Or, leaf("a", "1")), leaf("b", "2"))
	if out := Prune(root); out != root {
		t.Error("expected Prune to return the input when nothing is empty")
	}
}

func TestPruneIdempotent(t *testing.T) {
	root := NewGroup(Or,
		NewGroup(And, NewGroup(Or), leaf("a", "1")),
		NewGroup(NotOr),
		NewGroup(And, NewGroup(And, NewGroup(And, leaf("b", "2")))),
	)
	once := Prune(root)
	twice, removed := PruneCounted(once)
	if twice != once {
		t.Error("second prune should return its input")
	}
	if removed != 0 {
		t.Errorf("second prune removed %d groups", removed)
	}
	if !Equivalent(once, twice) {
		t.Error("prune is not idempotent")
	}
}

func TestCheck(t *testing.T) {
	a := leaf("a", "1")
	tests := []struct {
		name string
		root *Group
		want error
	}{
		{"valid", NewGroup(And, NewGroup(Or, a)), nil},
		{"empty root is valid", NewRoot(), nil},
		{"empty nested group", NewGroup(And, NewGroup(Or)), ErrEmptyGroup},
		{"duplicate id", NewGroup(And, a, NewGroup(Or, a)), ErrDuplicateID},
		{"bad group operator", NewGroup(Operator("XOR"), a), ErrInvalidOperator},
		{"bad comparison", NewGroup(And, NewLeaf("x", Comparison("~"), String("y"))), ErrInvalidComparison},
		{"nil child", NewGroup(And, a, nil), ErrNilNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.root)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
