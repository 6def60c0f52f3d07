package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filtertree/cql"
	"github.com/hugr-lab/filtertree/tree"
)

// NodeView is the printable form of a tree node. Ids are left out since
// they change on every parse.
type NodeView struct {
	Path     string     `json:"path"`
	Operator string     `json:"operator"`
	Negated  bool       `json:"negated,omitempty"`
	Field    string     `json:"field,omitempty"`
	Values   []string   `json:"values,omitempty"`
	Children []NodeView `json:"children,omitempty"`

	label string
}

// TreeResult is the output of the tree command.
type TreeResult struct {
	Root   NodeView `json:"root"`
	Groups int      `json:"groups"`
	Leaves int      `json:"leaves"`
	Depth  int      `json:"depth"`
}

func (r TreeResult) String() string {
	var b strings.Builder
	var write func(v NodeView, depth int)
	write = func(v NodeView, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(v.label)
		b.WriteByte('\n')
		for _, c := range v.Children {
			write(c, depth+1)
		}
	}
	write(r.Root, 0)
	fmt.Fprintf(&b, "groups: %d, leaves: %d, depth: %d", r.Groups, r.Leaves, r.Depth)
	return b.String()
}

func viewNode(n tree.Node, p tree.Path) NodeView {
	v := NodeView{Path: p.String(), Negated: n.Negated()}
	switch x := n.(type) {
	case *tree.Group:
		v.Operator = x.Operator().String()
		v.label = v.Operator
		if x.Negated() {
			v.label = "NOT " + v.label
		}
		for i, c := range x.Children() {
			v.Children = append(v.Children, viewNode(c, p.Child(i)))
		}
	case *tree.Leaf:
		v.Operator = x.Operator().String()
		v.Field = x.Field()
		for _, val := range x.Values() {
			lit, err := cql.FormatValue(val)
			if err != nil {
				lit = val.String()
			}
			v.Values = append(v.Values, lit)
		}
		label, err := cql.EncodeLeaf(x)
		if err != nil {
			label = fmt.Sprintf("%s %s %v", x.Field(), x.Operator(), v.Values)
		}
		v.label = label
	}
	return v
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [query]",
		Short: "Print the filter tree of a query",
		Long: `Parse a query and print its groups and leaves, one node per line,
indented by depth.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			root, err := parseQuery(f, cmd, args)
			if err != nil {
				return err
			}
			stats := tree.Stats(root)
			return f.Success(TreeResult{
				Root:   viewNode(root, tree.Path{}),
				Groups: stats.Groups,
				Leaves: stats.Leaves,
				Depth:  stats.Depth,
			})
		},
	}
}
