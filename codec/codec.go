// Package codec provides record codecs for rtcache.
//
// A codec serializes one record; rtcache frames single records, record lists
// and the "not found" marker around the codec output. Codecs used together
// with a sentinel (Query.Empty) must be deterministic: equal records must
// encode to equal bytes.
package codec

// Codec encodes/decodes records R to []byte for storage.
type Codec[R any] interface {
	Encode(R) ([]byte, error)
	Decode([]byte) (R, error)
}
