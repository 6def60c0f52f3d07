package filtertree

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hugr-lab/filtertree/cql"
	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/internal/recovery"
	"github.com/hugr-lab/filtertree/tree"
	"github.com/hugr-lab/filtertree/validate"
)

// Editor is an editing session over one filter tree.
//
// Each accepted edit computes a new root from the current one, prunes
// empty groups, checks the leaves it introduced and publishes the result
// atomically. Roots are immutable, so Root may be called from any
// goroutine while edits are applied. Edits are serialized.
type Editor struct {
	mu       sync.Mutex
	root     atomic.Pointer[tree.Group]
	lookup   fields.Lookup
	onChange func(*tree.Group)
	logger   *slog.Logger
	metrics  *editorMetrics
}

// NewEditor creates an editing session.
//
// Returns error if config is invalid (e.g., an Initial tree whose leaves
// do not fit Fields).
//
// Example:
//
//	ed, err := filtertree.NewEditor(filtertree.EditorConfig{
//	    Fields:   registry,
//	    OnChange: func(root *tree.Group) { view.Render(root) },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	leaf, err := ed.AddField(tree.Path{}, "title", tree.Contains, tree.String("foo"))
func NewEditor(config EditorConfig) (*Editor, error) {
	logger := config.Logger
	if logger == nil {
		if config.LogLevel != nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: *config.LogLevel,
			}))
		} else {
			logger = slog.Default()
		}
	}

	m, err := newEditorMetrics(config.Registerer)
	if err != nil {
		return nil, fmt.Errorf("%w: metrics: %v", ErrInvalidConfig, err)
	}

	e := &Editor{
		lookup:   config.Fields,
		onChange: config.OnChange,
		logger:   logger,
		metrics:  m,
	}

	root := config.Initial
	if root == nil {
		root = tree.NewRoot()
	}
	root, _ = tree.PruneCounted(root)
	if err := tree.Check(root); err != nil {
		return nil, fmt.Errorf("%w: initial tree: %v", ErrInvalidConfig, err)
	}
	if err := e.validateAll(root); err != nil {
		return nil, fmt.Errorf("%w: initial tree: %w", ErrInvalidConfig, err)
	}
	e.root.Store(root)

	stats := tree.Stats(root)
	logger.Debug("Filter editor created",
		"groups", stats.Groups,
		"leaves", stats.Leaves,
		"has_fields", config.Fields != nil,
		"has_metrics", m != nil,
	)
	return e, nil
}

// Root returns the current root. It never returns nil.
func (e *Editor) Root() *tree.Group {
	return e.root.Load()
}

// Apply applies m to the current root and publishes the pruned result.
// On error nothing is published and the current root stays in place.
//
// Errors wrap tree.ErrStalePath when m addresses a node that no longer
// exists, and validate.ErrInvalidLeafValue when m introduces a leaf that
// does not fit its field.
func (e *Editor) Apply(m tree.Mutation) (*tree.Group, error) {
	if m == nil {
		return nil, tree.ErrNilNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.root.Load()
	next, err := recovery.RecoverToValue(e.logger, m.Name(), func() (*tree.Group, error) {
		return m.Apply(prev)
	})
	if err != nil {
		return nil, e.reject(m, err)
	}

	if err := e.validateNew(prev, next); err != nil {
		return nil, e.reject(m, err)
	}

	next, pruned := tree.PruneCounted(next)
	e.publish(next)

	stats := tree.Stats(next)
	e.metrics.edit(m.Name(), resultOK)
	e.metrics.prunedGroups(pruned)
	e.logger.Debug("Edit applied",
		"edit", m.Name(),
		"path", m.Target().String(),
		"pruned", pruned,
		"groups", stats.Groups,
		"leaves", stats.Leaves,
	)
	return next, nil
}

// reject records a failed edit and returns err.
func (e *Editor) reject(m tree.Mutation, err error) error {
	switch {
	case errors.Is(err, tree.ErrStalePath):
		e.metrics.edit(m.Name(), resultStale)
		e.logger.Warn("Stale path",
			"edit", m.Name(),
			"path", m.Target().String(),
			"error", err,
		)
	case errors.Is(err, validate.ErrInvalidLeafValue):
		e.metrics.edit(m.Name(), resultInvalid)
		e.logger.Debug("Edit rejected",
			"edit", m.Name(),
			"path", m.Target().String(),
			"error", err,
		)
	default:
		e.metrics.edit(m.Name(), resultError)
		e.logger.Debug("Edit failed",
			"edit", m.Name(),
			"path", m.Target().String(),
			"error", err,
		)
	}
	return err
}

// publish stores root and notifies OnChange. Callers hold e.mu.
func (e *Editor) publish(root *tree.Group) {
	e.root.Store(root)
	if e.onChange != nil {
		recovery.Recover(e.logger, "on_change", func() {
			e.onChange(root)
		})
	}
}

// validateNew checks the leaves of next that are not in prev. Leaves are
// immutable, so a leaf shared with prev was checked when it was added.
func (e *Editor) validateNew(prev, next *tree.Group) error {
	known := make(map[*tree.Leaf]struct{})
	for _, l := range tree.Leaves(prev) {
		known[l] = struct{}{}
	}
	return recovery.RecoverToError(e.logger, "validate", func() error {
		for _, l := range tree.Leaves(next) {
			if _, ok := known[l]; ok {
				continue
			}
			if err := validate.Leaf(l, e.lookup); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Editor) validateAll(root *tree.Group) error {
	return recovery.RecoverToError(e.logger, "validate", func() error {
		return validate.Tree(root, e.lookup)
	})
}

// SetOperator changes the operator of the group at p.
func (e *Editor) SetOperator(p tree.Path, op tree.Operator) error {
	_, err := e.Apply(tree.SetOperatorEdit{Path: p, Operator: op})
	return err
}

// ToggleNegation flips the negation flag of the node at p.
func (e *Editor) ToggleNegation(p tree.Path) error {
	_, err := e.Apply(tree.ToggleNegationEdit{Path: p})
	return err
}

// AddField appends a new leaf to the group at parent and returns it.
func (e *Editor) AddField(parent tree.Path, field string, op tree.Comparison, values ...tree.Value) (*tree.Leaf, error) {
	l := tree.NewLeaf(field, op, values...)
	if _, err := e.Apply(tree.InsertEdit{Parent: parent, Child: l}); err != nil {
		return nil, err
	}
	return l, nil
}

// AddGroup appends a new group holding children to the group at parent
// and returns it. The group needs at least one child and no empty nested
// groups, since pruning would remove them straight away.
func (e *Editor) AddGroup(parent tree.Path, op tree.Operator, children ...tree.Node) (*tree.Group, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("add group: %w", tree.ErrEmptyGroup)
	}
	if !op.Valid() {
		return nil, fmt.Errorf("add group: %w: %q", tree.ErrInvalidOperator, string(op))
	}
	g := tree.NewGroup(op, children...)
	if err := tree.Check(g); err != nil {
		return nil, fmt.Errorf("add group: %w", err)
	}
	if _, err := e.Apply(tree.InsertEdit{Parent: parent, Child: g}); err != nil {
		return nil, err
	}
	return g, nil
}

// Remove removes the node at p. Groups left empty are pruned.
func (e *Editor) Remove(p tree.Path) error {
	_, err := e.Apply(tree.RemoveEdit{Path: p})
	return err
}

// ReplaceChild replaces the child node at p with n. p should come from
// tree.PathAt or tree.PathTo, so that a child that moved since p was
// derived fails with tree.ErrStalePath instead of replacing its sibling.
func (e *Editor) ReplaceChild(p tree.Path, n tree.Node) error {
	_, err := e.Apply(tree.ReplaceEdit{Path: p, Node: n})
	return err
}

// UpdateLeaf replaces the leaf at p with the result of fn. The leaf
// returned by fn is validated like a new one.
//
// Example:
//
//	err := ed.UpdateLeaf(p, func(l *tree.Leaf) (*tree.Leaf, error) {
//	    return l.WithValues(tree.String("bar")), nil
//	})
func (e *Editor) UpdateLeaf(p tree.Path, fn func(*tree.Leaf) (*tree.Leaf, error)) error {
	_, err := e.Apply(tree.UpdateLeafEdit{Path: p, Update: fn})
	return err
}

// Load replaces the whole tree with the parse of text. On a syntax error
// (a *cql.QuerySyntaxError) or an invalid leaf the tree is unchanged.
func (e *Editor) Load(text string) error {
	root, err := cql.Parse(text)
	if err != nil {
		e.metrics.edit("load", resultInvalid)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validateAll(root); err != nil {
		e.metrics.edit("load", resultInvalid)
		return err
	}
	root, pruned := tree.PruneCounted(root)
	e.publish(root)
	e.metrics.edit("load", resultOK)
	e.metrics.prunedGroups(pruned)

	stats := tree.Stats(root)
	e.logger.Debug("Query loaded",
		"groups", stats.Groups,
		"leaves", stats.Leaves,
	)
	return nil
}

// Text renders the current tree as query text.
func (e *Editor) Text() (string, error) {
	return cql.Encode(e.Root())
}

// Reset publishes an empty AND root.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish(tree.NewRoot())
	e.metrics.edit("reset", resultOK)
}
