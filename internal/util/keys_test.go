package util

import (
	"strings"
	"testing"
)

func TestStorageKeyShort(t *testing.T) {
	if got := StorageKey("people", "person::Bart", 200); got != "people:k:person::Bart" {
		t.Fatalf("got %q", got)
	}
	if got := StorageKey("people", strings.Repeat("x", 500), 0); len(got) != len("people:k:")+500 {
		t.Fatalf("maxLen=0 must disable hashing, got len %d", len(got))
	}
}

func TestStorageKeyHashesLongKeysDeterministically(t *testing.T) {
	long := "person::" + strings.Repeat("a", 300)
	a := StorageKey("people", long, 200)
	b := StorageKey("people", long, 200)
	if a != b {
		t.Fatalf("not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "people:h:") || len(a) > 200 {
		t.Fatalf("unexpected hashed key %q", a)
	}
	if c := StorageKey("people", long+"b", 200); c == a {
		t.Fatalf("distinct keys collided: %q", c)
	}
}

func TestStorageKeyShortCannotForgeDigest(t *testing.T) {
	long := strings.Repeat("x", 300)
	hashed := StorageKey("ns", long, 200)
	forged := StorageKey("ns", strings.TrimPrefix(hashed, "ns:"), 200)
	if forged == hashed {
		t.Fatalf("short key %q landed on the digest of a long key", forged)
	}
	if !strings.HasPrefix(forged, "ns:k:") {
		t.Fatalf("short key lost its prefix: %q", forged)
	}
}
