package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hugr-lab/filtertree/fields"
)

// FieldsResult is the output of fields show.
type FieldsResult struct {
	Fields []fields.Definition `json:"fields"`
}

// String renders the definitions in the YAML layout fields.LoadYAML reads.
func (r FieldsResult) String() string {
	reg, err := fields.NewRegistry(r.Fields...)
	if err != nil {
		return err.Error()
	}
	out, err := yaml.Marshal(reg)
	if err != nil {
		return err.Error()
	}
	return strings.TrimSuffix(string(out), "\n")
}

// PackResult is the output of fields pack.
type PackResult struct {
	Output string `json:"output"`
	Fields int    `json:"fields"`
	Bytes  int    `json:"bytes"`
}

func (r PackResult) String() string {
	return fmt.Sprintf("wrote %d fields to %s (%d bytes)", r.Fields, r.Output, r.Bytes)
}

// NewFieldsCommand creates the fields command group.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect and convert field definitions",
	}
	cmd.AddCommand(newFieldsShowCommand(rootOpts))
	cmd.AddCommand(newFieldsPackCommand(rootOpts))
	return cmd
}

// definitionsPath returns the file argument, falling back to --fields.
func definitionsPath(rootOpts *RootOptions, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if rootOpts.Fields != "" {
		return rootOpts.Fields, nil
	}
	return "", NewExitError(ExitCommandError, "no field definitions file given")
}

func newFieldsShowCommand(rootOpts *RootOptions) *cobra.Command {
	var visible bool

	cmd := &cobra.Command{
		Use:           "show [file]",
		Short:         "Print field definitions",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			path, err := definitionsPath(rootOpts, args)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			defs := reg.Definitions()
			if visible {
				defs = reg.Visible()
			}
			f.VerboseLog("Loaded %d definitions from %s", reg.Len(), path)
			return f.Success(FieldsResult{Fields: defs})
		},
	}

	cmd.Flags().BoolVar(&visible, "visible", false, "only fields shown in field pickers")

	return cmd
}

func newFieldsPackCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack [file]",
		Short: "Write field definitions as a compressed snapshot",
		Long: `Convert field definitions to a compressed binary snapshot. Every
command that takes --fields accepts the snapshot in place of YAML.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			path, err := definitionsPath(rootOpts, args)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			data, err := reg.MarshalSnapshot()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode snapshot", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write snapshot", err)
			}
			return f.Success(PackResult{Output: output, Fields: reg.Len(), Bytes: len(data)})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file to write")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
