package serialize

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmpty is returned when there is nothing to decode.
var ErrEmpty = errors.New("empty MessagePack data")

// Encode serializes v into MessagePack.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return data, nil
}

// Decode deserializes MessagePack data into the value pointed to by v.
// Unknown map keys are an error so a snapshot from a newer format is not
// silently truncated.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(data))
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return nil
}
