package tree

import "slices"

// Prune removes every non-root group that has no children, including groups
// emptied by the removal of their own empty descendants. The root is kept
// even when it ends up empty.
//
// A single post-order pass is enough. Groups that lose no descendants are
// returned as is, so if nothing is pruned the result is root itself.
func Prune(root *Group) *Group {
	out, _ := PruneCounted(root)
	return out
}

// PruneCounted is Prune that also reports how many groups were removed.
func PruneCounted(root *Group) (*Group, int) {
	if root == nil {
		return nil, 0
	}
	return pruneGroup(root)
}

func pruneGroup(g *Group) (*Group, int) {
	var (
		out     []Node
		changed bool
		removed int
	)
	for i, c := range g.children {
		cg, ok := c.(*Group)
		if !ok || cg == nil {
			if changed {
				out = append(out, c)
			}
			continue
		}

		pg, n := pruneGroup(cg)
		removed += n
		empty := len(pg.children) == 0
		if (empty || pg != cg) && !changed {
			out = slices.Clone(g.children[:i])
			changed = true
		}
		if empty {
			removed++
			continue
		}
		if changed {
			out = append(out, pg)
		}
	}
	if !changed {
		return g, removed
	}
	if out == nil {
		out = []Node{}
	}
	return g.withChildren(out), removed
}
