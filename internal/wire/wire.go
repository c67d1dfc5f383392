package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	version byte = 1

	KindAbsent byte = 0
	KindOne    byte = 1
	KindMany   byte = 2
)

var (
	ErrCorrupt  = errors.New("rtcache: corrupt entry")
	ErrTooLarge = errors.New("rtcache: payload too large for entry frame")
	magic4      = [...]byte{'R', 'T', 'C', 'E'}
)

const hdr = 4 + 1 + 1

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func header(buf *bytes.Buffer, kind byte) {
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)
}

// Absent: magic(4) | ver(1) | kind(0)
func EncodeAbsent() []byte {
	var buf bytes.Buffer
	buf.Grow(hdr)
	header(&buf, KindAbsent)
	return buf.Bytes()
}

// One: magic(4) | ver(1) | kind(1) | vlen(u32 be) | payload(vlen)
func EncodeOne(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	var buf bytes.Buffer
	buf.Grow(hdr + 4 + len(payload))
	header(&buf, KindOne)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Many:
//
//	magic(4) | ver(1) | kind(2) | n(u32 be)
//	vlen(u32 be) | payload(vlen) * n
func EncodeMany(payloads [][]byte) ([]byte, error) {
	if uint64(len(payloads)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	total := hdr + 4
	for _, p := range payloads {
		if uint64(len(p)) > math.MaxUint32 {
			return nil, ErrTooLarge
		}
		total += 4 + len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	header(&buf, KindMany)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payloads)))
	buf.Write(u4[:])

	for _, p := range payloads {
		binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
		buf.Write(u4[:])
		buf.Write(p)
	}
	return buf.Bytes(), nil
}

// Decode validates the frame and returns its kind and payloads.
// KindAbsent has no payloads, KindOne exactly one. Payloads alias b.
func Decode(b []byte) (kind byte, payloads [][]byte, err error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	kind = b[5]
	off := hdr

	switch kind {
	case KindAbsent:
		if off != len(b) {
			return 0, nil, ErrCorrupt
		}
		return KindAbsent, nil, nil

	case KindOne:
		p, next, ok := chunk(b, off)
		if !ok || next != len(b) {
			return 0, nil, ErrCorrupt
		}
		return KindOne, [][]byte{p}, nil

	case KindMany:
		if off+4 > len(b) {
			return 0, nil, ErrCorrupt
		}
		n := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		// every item needs at least its 4 byte length prefix
		if n < 0 || n > (len(b)-off)/4 {
			return 0, nil, ErrCorrupt
		}
		payloads = make([][]byte, 0, n)
		for i := 0; i < n; i++ {
			p, next, ok := chunk(b, off)
			if !ok {
				return 0, nil, ErrCorrupt
			}
			payloads = append(payloads, p)
			off = next
		}
		if off != len(b) {
			return 0, nil, ErrCorrupt
		}
		return KindMany, payloads, nil
	}
	return 0, nil, ErrCorrupt
}

func chunk(b []byte, off int) ([]byte, int, bool) {
	if off+4 > len(b) {
		return nil, 0, false
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
		return nil, 0, false
	}
	return b[off : off+vlen], off + vlen, true
}
