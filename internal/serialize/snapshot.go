// Package serialize encodes snapshots as zstd-compressed MessagePack.
package serialize

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// MaxSnapshotSize bounds the decompressed size of a snapshot.
const MaxSnapshotSize = 64 << 20

var magic = []byte("FTS1")

// ErrNotSnapshot is returned by Unmarshal for data without the snapshot header.
var ErrNotSnapshot = errors.New("not a snapshot")

var (
	codecOnce    sync.Once
	compressor   *Compressor
	decompressor *Decompressor
	codecErr     error
)

func codec() (*Compressor, *Decompressor, error) {
	codecOnce.Do(func() {
		compressor, codecErr = NewCompressor()
		if codecErr != nil {
			return
		}
		decompressor, codecErr = NewDecompressor(MaxSnapshotSize)
	})
	return compressor, decompressor, codecErr
}

// Marshal encodes v as MessagePack, compresses it and prefixes a header.
func Marshal(v any) ([]byte, error) {
	c, _, err := codec()
	if err != nil {
		return nil, err
	}
	data, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return append(bytes.Clone(magic), c.Compress(data)...), nil
}

// Unmarshal reverses Marshal into the value pointed to by v.
func Unmarshal(data []byte, v any) error {
	if !bytes.HasPrefix(data, magic) {
		return ErrNotSnapshot
	}
	_, d, err := codec()
	if err != nil {
		return err
	}
	raw, err := d.Decompress(data[len(magic):])
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return Decode(raw, v)
}
