package codec

import "encoding/json"

// JSON encodes records with encoding/json. Map keys are sorted, so the output
// is deterministic for a given record.
type JSON[R any] struct{}

func (JSON[R]) Encode(v R) ([]byte, error) { return json.Marshal(v) }
func (JSON[R]) Decode(b []byte) (R, error) {
	var v R
	err := json.Unmarshal(b, &v)
	return v, err
}
