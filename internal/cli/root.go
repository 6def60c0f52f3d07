// Package cli implements the filtertree command line: formatting, inspecting,
// validating and translating filter query text.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/internal/serialize"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Fields  string // field definitions file, YAML or snapshot
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the filtertree CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "filtertree",
		Short: "Work with filter query text",
		Long: `Parse, format, validate and translate filter queries.

A query is read from the first argument, or from stdin when the argument
is missing or "-".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Fields, "fields", "", "field definitions file (YAML or snapshot)")

	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// readQuery returns the query argument, or stdin when there is none.
func readQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to read query", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// loadLookup loads the --fields file. A nil Lookup is returned when no
// file was given, so leaves are only checked on their own.
func loadLookup(opts *RootOptions) (fields.Lookup, error) {
	if opts.Fields == "" {
		return nil, nil
	}
	reg, err := loadRegistry(opts.Fields)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// loadRegistry reads a definitions file, detecting snapshots by their
// header.
func loadRegistry(path string) (*fields.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read field definitions", err)
	}
	reg, err := fields.UnmarshalSnapshot(data)
	if errors.Is(err, serialize.ErrNotSnapshot) {
		reg, err = fields.LoadYAML(bytes.NewReader(data))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid field definitions in "+path, err)
	}
	return reg, nil
}
