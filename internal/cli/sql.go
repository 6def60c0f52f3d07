package cli

import (
	"github.com/spf13/cobra"

	"github.com/hugr-lab/filtertree/sqlfilter"
	"github.com/hugr-lab/filtertree/validate"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	Columns     map[string]string
	Expressions map[string]string
	Spatial     bool
}

// SQLResult is the output of the sql command. An empty condition means
// the query does not filter anything out.
type SQLResult struct {
	SQL string `json:"sql"`
}

func (r SQLResult) String() string { return r.SQL }

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{}

	cmd := &cobra.Command{
		Use:   "sql [query]",
		Short: "Translate a query into a DuckDB condition",
		Long: `Translate a query into a condition for a DuckDB WHERE clause.

Predicates DuckDB cannot evaluate are left out so that the condition
selects at least every row the query matches; filter the result again
for an exact answer. Spatial predicates need --spatial and the DuckDB
spatial extension.`,
		Example:       `  filtertree sql 'title contains "foo" AND size > 10' --column size=size_bytes`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Columns, "column", nil, "map a field to a column (field=column)")
	cmd.Flags().StringToStringVar(&opts.Expressions, "expr", nil, "map a field to a SQL expression (field=expr)")
	cmd.Flags().BoolVar(&opts.Spatial, "spatial", false, "encode spatial predicates")

	return cmd
}

func runSQL(rootOpts *RootOptions, opts *SQLOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(rootOpts, cmd)
	root, err := parseQuery(f, cmd, args)
	if err != nil {
		return err
	}

	lookup, err := loadLookup(rootOpts)
	if err != nil {
		return err
	}
	if lookup != nil {
		if err := validate.Tree(root, lookup); err != nil {
			_ = f.Error(ErrCodeInput, err.Error(), nil)
			return WrapExitError(ExitFailure, "query does not fit the field definitions", err)
		}
	}

	enc := sqlfilter.NewDuckDBEncoder(&sqlfilter.EncoderOptions{
		ColumnMapping:     opts.Columns,
		ColumnExpressions: opts.Expressions,
		Spatial:           opts.Spatial,
	})
	return f.Success(SQLResult{SQL: enc.Encode(root)})
}
