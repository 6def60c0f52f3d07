package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrStalePath matches every *StalePathError.
	ErrStalePath = errors.New("stale path")

	// ErrDuplicateID is returned when an inserted subtree reuses an id already in the tree.
	ErrDuplicateID = errors.New("duplicate node id")

	ErrNilNode           = errors.New("nil node")
	ErrNotGroup          = errors.New("node is not a group")
	ErrRootRemoval       = errors.New("the root group cannot be removed or replaced")
	ErrInvalidOperator   = errors.New("invalid group operator")
	ErrInvalidComparison = errors.New("invalid comparison operator")
	ErrEmptyGroup        = errors.New("non-root group has no children")
)

// StalePathError reports a path that no longer resolves against a root.
// Callers recompute the path from the latest root and retry.
type StalePathError struct {
	Path   Path
	Depth  int // index into Path of the failing step
	Reason string
}

func (e *StalePathError) Error() string {
	return fmt.Sprintf("stale path %s at depth %d: %s", e.Path, e.Depth, e.Reason)
}

// Is reports whether target is ErrStalePath.
func (e *StalePathError) Is(target error) bool {
	return target == ErrStalePath
}

// CheckError reports a structural invariant violation found by Check.
type CheckError struct {
	NodeID string
	Path   Path
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("node %s at %s: %v", e.NodeID, e.Path, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}
