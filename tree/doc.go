// Package tree implements the filter tree: a boolean expression made of
// groups (AND, OR, NOT AND, NOT OR) and leaf predicates, edited through pure
// functions that return a new root for every change.
//
// # Nodes
//
// Node is a closed interface implemented by *Leaf and *Group. Use Kind,
// IsGroup or a type switch to tell them apart. Every node gets a UUID when it
// is created and keeps it for its lifetime, including across With copies,
// so a renderer can key transitions on ID.
//
// A group carries two independent negations: the NOT AND / NOT OR operator
// variants and the Negated flag. Both apply, so a negated NOT AND group is
// equivalent to a plain AND group.
//
// # Editing
//
// Edits address nodes with a Path of child indices from the root:
//
//	root := tree.NewRoot()
//	root, _ = tree.AppendChild(root, tree.Path{}, tree.NewLeaf("title", tree.Contains, tree.String("foo")))
//	root, _ = tree.AppendChild(root, tree.Path{}, tree.NewGroup(tree.Or,
//	    tree.NewLeaf("created", tree.After, tree.Time(t0)),
//	))
//
//	p, _ := tree.PathAt(root, 1, 0)
//	root, err := tree.Remove(root, p)
//	root = tree.Prune(root) // the emptied OR group is removed
//
// Only the groups on the edited path are copied; all other subtrees are
// shared by reference with the previous root, which stays valid and
// unchanged. Paths from PathAt, PathTo and Walk remember the ids they passed
// through, and using one against a root where those nodes have moved fails
// with a *StalePathError instead of editing another node. Recompute the
// path from the latest root and retry.
//
// # Pruning
//
// A non-root group left without children is removed by Prune. Run it after
// every edit; the root is never removed.
//
// # Evaluation
//
// Evaluate applies a tree to a Record. It defines what each operator means
// and is used to check that text and SQL translations agree with the tree.
package tree
