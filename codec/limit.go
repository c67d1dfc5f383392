package codec

import "fmt"

// Limit wraps another codec and refuses to decode records larger than
// MaxDecode bytes. Encode is forwarded unchanged. MaxDecode <= 0 disables
// the check.
//
// A refused decode surfaces to rtcache as a corrupt entry, which is deleted
// and treated as a miss.
type Limit[R any] struct {
	Inner     Codec[R]
	MaxDecode int
}

func (c Limit[R]) Encode(v R) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[R]) Decode(b []byte) (R, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero R
		return zero, fmt.Errorf("codec: record too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
