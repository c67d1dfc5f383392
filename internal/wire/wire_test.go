package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (byte, [][]byte) {
	t.Helper()
	kind, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return kind, p
}

func TestAbsentRoundTrip(t *testing.T) {
	kind, p := mustDecode(t, EncodeAbsent())
	if kind != KindAbsent || p != nil {
		t.Fatalf("got kind=%d payloads=%v", kind, p)
	}
}

func TestOneRoundTrip(t *testing.T) {
	cases := [][]byte{nil, []byte("hello"), {0, 1, 2, 3, 4}}
	for _, payload := range cases {
		enc, err := EncodeOne(payload)
		if err != nil {
			t.Fatalf("EncodeOne: %v", err)
		}
		kind, p := mustDecode(t, enc)
		if kind != KindOne || len(p) != 1 {
			t.Fatalf("kind=%d len=%d", kind, len(p))
		}
		if !bytes.Equal(p[0], payload) {
			t.Fatalf("payload mismatch: got %x want %x", p[0], payload)
		}
	}
}

func TestManyRoundTrip(t *testing.T) {
	cases := [][][]byte{
		nil, // n=0
		{[]byte("x")},
		{[]byte("a"), nil, {9, 8, 7}},
		{[]byte("dup"), []byte("dup")},
	}
	for _, items := range cases {
		enc, err := EncodeMany(items)
		if err != nil {
			t.Fatalf("EncodeMany: %v", err)
		}
		kind, got := mustDecode(t, enc)
		if kind != KindMany {
			t.Fatalf("kind=%d want many", kind)
		}
		if len(got) != len(items) {
			t.Fatalf("len mismatch: got %d want %d", len(got), len(items))
		}
		for i := range items {
			if !bytes.Equal(got[i], items[i]) {
				t.Fatalf("item %d mismatch: got=%x want=%x", i, got[i], items[i])
			}
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	one, _ := EncodeOne([]byte("x"))
	many, _ := EncodeMany([][]byte{[]byte("v")})
	for name, enc := range map[string][]byte{
		"absent": EncodeAbsent(),
		"one":    one,
		"many":   many,
	} {
		enc = append(enc, 0xDE, 0xAD)
		if _, _, err := Decode(enc); err == nil {
			t.Fatalf("%s: expected error on trailing bytes", name)
		}
	}
}

func TestCorruptHeaders(t *testing.T) {
	enc, _ := EncodeOne([]byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	badKind := append([]byte(nil), enc...)
	badKind[5] = 7
	if _, _, err := Decode(badKind); err == nil {
		t.Fatalf("expected error on unknown kind")
	}

	// vlen is at offset 6..9 (4 magic +1 ver +1 kind)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[6:10], uint32(len("abc")+1))
	if _, _, err := Decode(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	if _, _, err := Decode(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
	if _, _, err := Decode([]byte("not-wire-format")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}

func TestManyBogusCount(t *testing.T) {
	// huge n with no items must error, not allocate or panic
	var buf bytes.Buffer
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(KindMany)
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], ^uint32(0))
	buf.Write(u4[:])
	if _, _, err := Decode(buf.Bytes()); err == nil {
		t.Fatalf("expected error on bogus n")
	}

	// n=1 but no item body
	buf.Reset()
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(KindMany)
	binary.BigEndian.PutUint32(u4[:], 1)
	buf.Write(u4[:])
	if _, _, err := Decode(buf.Bytes()); err == nil {
		t.Fatalf("expected error on truncated item list")
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc, _ := EncodeOne([]byte("Z"))
	_, p := mustDecode(t, enc)
	p[0][0] = 'Q'
	_, p2 := mustDecode(t, enc)
	if p2[0][0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
