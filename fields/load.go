package fields

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hugr-lab/filtertree/internal/serialize"
)

// file is the on-disk layout of a definitions file:
//
//	attributes:
//	  - name: title
//	    type: STRING
//	  - name: created
//	    type: DATE
//	    readonly: true
type file struct {
	Attributes []Definition `yaml:"attributes"`
}

// LoadYAML reads a definitions document. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRegistry()
		}
		return nil, fmt.Errorf("failed to parse field definitions: %w", err)
	}
	return NewRegistry(f.Attributes...)
}

// LoadFile reads a definitions file from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field definitions: %w", err)
	}
	defer f.Close()
	reg, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// MarshalYAML writes r in the LoadYAML layout.
func (r *Registry) MarshalYAML() (any, error) {
	return file{Attributes: r.Definitions()}, nil
}

type snapshot struct {
	Version     int          `msgpack:"v"`
	Definitions []Definition `msgpack:"defs"`
}

const snapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written by an unknown version.
var ErrSnapshotVersion = errors.New("unsupported field snapshot version")

// MarshalSnapshot encodes r as a compact binary snapshot that can be cached
// or shipped to another process and restored with UnmarshalSnapshot.
func (r *Registry) MarshalSnapshot() ([]byte, error) {
	return serialize.Marshal(snapshot{Version: snapshotVersion, Definitions: r.Definitions()})
}

// UnmarshalSnapshot restores a registry written by MarshalSnapshot.
// Definitions are validated again.
func UnmarshalSnapshot(data []byte) (*Registry, error) {
	var s snapshot
	if err := serialize.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to read field snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	return NewRegistry(s.Definitions...)
}
