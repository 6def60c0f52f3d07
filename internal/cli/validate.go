package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filtertree/tree"
	"github.com/hugr-lab/filtertree/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Validators []string
}

// ViolationView is a violation located by path instead of node id.
type ViolationView struct {
	Validator string         `json:"validator"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Path      string         `json:"path,omitempty"`
	ExtraData map[string]any `json:"extraData,omitempty"`
}

// ValidationResult holds validation results. A query is valid when no
// violation has ERROR severity.
type ValidationResult struct {
	Valid      bool            `json:"valid"`
	Violations []ViolationView `json:"violations,omitempty"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "%s %s %s: %s\n", v.Severity, v.Validator, v.Path, v.Message)
	}
	if r.Valid {
		b.WriteString("valid")
	} else {
		b.WriteString("invalid")
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [query]",
		Short: "Run query validators",
		Long: `Run validators over a query and list their findings.

The fields validator checks every predicate against the --fields
definitions, or only operator and value counts without them. The
wildcard validator warns about like patterns starting with a wildcard.
The command fails when any finding is an error.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Validators, "validator", nil, "validator ids to run (default all)")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(rootOpts, cmd)
	root, err := parseQuery(f, cmd, args)
	if err != nil {
		return err
	}
	lookup, err := loadLookup(rootOpts)
	if err != nil {
		return err
	}

	reg := validate.DefaultRegistry(lookup)
	ids := opts.Validators
	if len(ids) == 0 {
		ids = reg.IDs()
	}

	result := ValidationResult{Valid: true}
	for _, id := range ids {
		f.VerboseLog("Running validator: %s", id)
		vs, err := reg.Validate(id, root)
		if err != nil {
			_ = f.Error(ErrCodeInput, err.Error(), reg.IDs())
			return WrapExitError(ExitCommandError, "cannot validate", err)
		}
		for _, v := range vs {
			result.Violations = append(result.Violations, viewViolation(root, v))
			if v.Severity == validate.SeverityError {
				result.Valid = false
			}
		}
	}

	if err := f.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func viewViolation(root *tree.Group, v validate.Violation) ViolationView {
	view := ViolationView{
		Validator: v.Type,
		Severity:  string(v.Severity),
		Message:   v.Message,
		ExtraData: v.ExtraData,
	}
	if p, ok := tree.PathTo(root, v.NodeID); ok && v.NodeID != "" {
		view.Path = p.String()
	}
	return view
}
