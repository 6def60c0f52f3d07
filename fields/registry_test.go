package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleYAML = `
attributes:
  - name: title
    type: STRING
    alias: Title
  - name: created
    type: DATE
    readonly: true
  - name: location
    type: LOCATION
  - name: keywords
    type: STRING
    multivalued: true
  - name: status
    type: STRING
    enum: [draft, published]
  - name: thumbnail
    type: BINARY
  - name: metadata
    type: XML
  - name: internal
    type: LONG
    hidden: true
`

func loadSample(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	return reg
}

func TestLoadYAML(t *testing.T) {
	reg := loadSample(t)
	assert.Equal(t, 8, reg.Len())

	typ, ok := reg.Type("created")
	assert.True(t, ok)
	assert.Equal(t, Date, typ)

	_, ok = reg.Type("missing")
	assert.False(t, ok)

	assert.Equal(t, "Title", reg.Alias("title"))
	assert.Equal(t, "created", reg.Alias("created"))
	assert.Equal(t, "missing", reg.Alias("missing"))

	assert.True(t, reg.IsReadOnly("created"))
	assert.False(t, reg.IsReadOnly("title"))
	assert.True(t, reg.IsMulti("keywords"))
	assert.False(t, reg.IsMulti("missing"))

	enum, ok := reg.Enum("status")
	assert.True(t, ok)
	assert.Equal(t, []string{"draft", "published"}, enum)
	_, ok = reg.Enum("title")
	assert.False(t, ok)
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown type", "attributes:\n  - name: a\n    type: TEXT\n", ErrInvalidDefinition},
		{"missing name", "attributes:\n  - type: STRING\n", ErrInvalidDefinition},
		{"duplicate", "attributes:\n  - name: a\n    type: STRING\n  - name: a\n    type: LONG\n", ErrDuplicateField},
		{"duplicate enum value", "attributes:\n  - name: a\n    type: STRING\n    enum: [x, x]\n", ErrInvalidDefinition},
		{"unknown key", "attributes:\n  - name: a\n    type: STRING\n    color: red\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadYAMLEmpty(t *testing.T) {
	reg, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestIsHidden(t *testing.T) {
	reg := loadSample(t)
	tests := map[string]bool{
		"title":     false,
		"thumbnail": false,
		"metadata":  true,
		"internal":  true,
		"missing":   true,
	}
	for field, want := range tests {
		assert.Equal(t, want, reg.IsHidden(field), field)
	}

	var names []string
	for _, d := range reg.Visible() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"created", "keywords", "location", "status", "thumbnail", "title"}, names)
}

func TestDefinitionsAreCopies(t *testing.T) {
	reg := loadSample(t)
	enum, _ := reg.Enum("status")
	enum[0] = "changed"
	again, _ := reg.Enum("status")
	assert.Equal(t, "draft", again[0])
}

func TestSnapshotRoundTrip(t *testing.T) {
	reg := loadSample(t)
	data, err := reg.MarshalSnapshot()
	require.NoError(t, err)

	back, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, reg.Definitions(), back.Definitions())
}

func TestUnmarshalSnapshotRejectsGarbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte("not a snapshot"))
	assert.Error(t, err)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	reg := loadSample(t)
	out, err := yaml.Marshal(reg)
	require.NoError(t, err)

	back, err := LoadYAML(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, reg.Definitions(), back.Definitions())
}

func TestAttributeTypePredicates(t *testing.T) {
	assert.True(t, Short.IsNumeric())
	assert.True(t, Short.IsIntegral())
	assert.False(t, Double.IsIntegral())
	assert.True(t, Location.IsSpatial())
	assert.True(t, Geometry.IsSpatial())
	assert.True(t, Date.IsTemporal())
	assert.True(t, XML.IsTextual())
	assert.False(t, AttributeType("TEXT").Valid())
	for _, typ := range AttributeTypes {
		assert.True(t, typ.Valid(), typ)
	}
}
