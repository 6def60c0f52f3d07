package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/validate"
)

const fieldsFile = "testdata/fields.yaml"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFmt(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"argument", "", []string{"fmt", "a=1 and not (b = 2 or c = 3)"}, "a = 1 AND NOT (b = 2 OR c = 3)\n"},
		{"stdin", "  x IS NULL \n", []string{"fmt"}, "x is null\n"},
		{"dash reads stdin", `t before 2024-01-01`, []string{"fmt", "-"}, "t before 2024-01-01T00:00:00Z\n"},
		{"empty", "", []string{"fmt", ""}, "\n"},
		{"json", "", []string{"fmt", "--format", "json", "x is null"}, `{"status":"ok","data":{"query":"x is null"}}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFmtSyntaxError(t *testing.T) {
	out, err := execute(t, "", "fmt", "--format", "json", "title contains")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSyntax, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "position 14")
	assert.Equal(t, float64(14), resp.Error.Details["pos"])
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "", "fmt", "--format", "xml", "a = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestTreeGolden(t *testing.T) {
	out, err := execute(t, "", "tree", `title contains "foo" AND (created after 2024-01-01 OR NOT status = "draft")`)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "tree", []byte(out))
}

func TestTreeJSON(t *testing.T) {
	out, err := execute(t, "", "tree", "--format", "json", "a = 1 OR b in [1, 2]")
	require.NoError(t, err)

	var resp struct {
		Data TreeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Groups)
	assert.Equal(t, 2, resp.Data.Leaves)
	assert.Equal(t, "OR", resp.Data.Root.Operator)
	require.Len(t, resp.Data.Root.Children, 2)
	b := resp.Data.Root.Children[1]
	assert.Equal(t, "/1", b.Path)
	assert.Equal(t, "b", b.Field)
	assert.Equal(t, []string{"1", "2"}, b.Values)
}

func TestSQLGolden(t *testing.T) {
	out, err := execute(t, "", "sql",
		`title contains "foo" AND size > 10 AND body near ["a b", 2]`,
		"--column", "size=size_bytes",
	)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "sql", []byte(out))
}

func TestSQLChecksFields(t *testing.T) {
	_, err := execute(t, "", "sql", "--fields", fieldsFile, "nope = 1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, validate.ErrInvalidLeafValue)

	out, err := execute(t, "", "sql", "--fields", fieldsFile, `status = "draft"`)
	require.NoError(t, err)
	assert.Equal(t, "status = 'draft'\n", out)
}

func TestValidateGolden(t *testing.T) {
	out, err := execute(t, "", "validate", "--format", "json", "--fields", fieldsFile,
		`status = "gone" AND title like "*x" AND nope = 1`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	newGoldie(t).Assert(t, "validate", []byte(out))
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", "a = 1")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = execute(t, "", "validate", "--validator", "wildcard", `a like "?b" AND c = 1`)
	require.NoError(t, err, "only the wildcard validator runs")
	assert.Equal(t, "WARNING wildcard /0: pattern \"?b\" on a starts with a wildcard\nvalid\n", out)

	_, err = execute(t, "", "validate", "--validator", "nope", "a = 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrValidatorNotFound)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFieldsPackAndShow(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "fields.snap")

	out, err := execute(t, "", "fields", "pack", fieldsFile, "-o", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 fields to "+snap)

	out, err = execute(t, "", "fields", "show", "--format", "json", snap)
	require.NoError(t, err)
	var resp struct {
		Data FieldsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Fields, 3)
	assert.Equal(t, "size", resp.Data.Fields[0].Name)
	assert.Equal(t, []string{"draft", "published"}, resp.Data.Fields[1].Enum)
	assert.Equal(t, "Title", resp.Data.Fields[2].Alias)

	// text output is YAML that loads back
	out, err = execute(t, "", "--fields", snap, "fields", "show")
	require.NoError(t, err)
	reg, err := fields.LoadYAML(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
	typ, ok := reg.Type("size")
	assert.True(t, ok)
	assert.Equal(t, fields.Long, typ)
}

func TestFieldsErrors(t *testing.T) {
	_, err := execute(t, "", "fields", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "", "fields", "show", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "", "fields", "pack", fieldsFile)
	require.Error(t, err, "--output is required")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))

	err := WrapExitError(ExitFailure, "wrapped", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "wrapped: "+assert.AnError.Error(), err.Error())
}
