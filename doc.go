// Package filtertree provides editing sessions over boolean filter trees
// for interactive query builders.
//
// A filter tree is a root AND, OR, NOT AND or NOT OR group holding leaf
// predicates (field, operator, values) and nested groups. Trees are
// immutable values defined in the tree package; every edit produces a new
// root that shares all untouched subtrees with the previous one.
//
// The filtertree package ties the pieces together:
//   - Editor serializes edits, prunes empty groups, checks new leaves
//     against field metadata and publishes each accepted root
//   - TreeBuilder assembles a tree with a fluent API
//
// # Quick Start
//
//	reg, err := fields.LoadFile("fields.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ed, err := filtertree.NewEditor(filtertree.EditorConfig{
//	    Fields:   reg,
//	    OnChange: func(root *tree.Group) { render(root) },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := ed.Load(`title contains "foo" OR created after 2024-01-01`); err != nil {
//	    log.Fatal(err)
//	}
//	if err := ed.SetOperator(tree.Path{}, tree.And); err != nil {
//	    log.Fatal(err)
//	}
//	text, _ := ed.Text() // title contains "foo" AND created after 2024-01-01T00:00:00Z
//
// # Paths
//
// Edits address nodes by tree.Path. Paths from tree.PathTo and
// tree.PathAt remember the ids they passed through; if the tree has
// changed underneath them an edit fails with a *tree.StalePathError and
// the caller recomputes the path from Root() and retries.
//
// # Text
//
// The durable form of a tree is its query text (see package cql). Load
// and Text convert at save and load boundaries; node ids are not kept.
//
// # Logging
//
// The package uses log/slog. Pass EditorConfig.Logger, or LogLevel for a
// text logger on stderr; otherwise slog.Default() is used.
//
// # Metrics
//
// When EditorConfig.Registerer is set, the editor exports
// filtertree_edits_total{kind,result} and filtertree_pruned_groups_total.
package filtertree
