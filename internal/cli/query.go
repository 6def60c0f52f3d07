package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filtertree/cql"
	"github.com/hugr-lab/filtertree/tree"
)

// syntaxDetails locates a parse error in JSON output.
type syntaxDetails struct {
	Pos   int    `json:"pos"`
	Token string `json:"token"`
}

// parseQuery reads and parses the query of a command, reporting syntax
// errors through f.
func parseQuery(f *OutputFormatter, cmd *cobra.Command, args []string) (*tree.Group, error) {
	text, err := readQuery(cmd, args)
	if err != nil {
		return nil, err
	}
	root, err := cql.Parse(text)
	if err == nil {
		f.VerboseLog("Parsed %d leaves", len(tree.Leaves(root)))
		return root, nil
	}
	var se *cql.QuerySyntaxError
	if errors.As(err, &se) {
		if outErr := f.Error(ErrCodeSyntax, se.Error(), syntaxDetails{Pos: se.Pos, Token: se.Token}); outErr != nil {
			return nil, outErr
		}
	}
	return nil, WrapExitError(ExitFailure, "invalid query", err)
}

// FmtResult is the output of the fmt command.
type FmtResult struct {
	Query string `json:"query"`
}

func (r FmtResult) String() string { return r.Query }

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt [query]",
		Short: "Rewrite a query in canonical form",
		Long: `Parse a query and print it back in canonical form. Field names are
quoted only where needed and redundant parentheses are dropped.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			root, err := parseQuery(f, cmd, args)
			if err != nil {
				return err
			}
			text, err := cql.Encode(root)
			if err != nil {
				_ = f.Error(ErrCodeUnencodable, err.Error(), nil)
				return WrapExitError(ExitFailure, "cannot format query", err)
			}
			return f.Success(FmtResult{Query: text})
		},
	}
}
