package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes records using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Map keys are sorted on encode, so equal records produce equal bytes and
// can be compared against a Query.Empty sentinel.
// Use `msgpack:"fieldName"` tags if you need explicit control.
type Msgpack[R any] struct{}

func (Msgpack[R]) Encode(v R) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack[R]) Decode(b []byte) (R, error) {
	var v R
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
