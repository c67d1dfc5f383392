package rtcache

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

type age int32

func TestToInt(t *testing.T) {
	ok := []struct {
		in   any
		want int64
	}{
		{20, 20},
		{int64(-3), -3},
		{age(7), 7},
		{uint16(9), 9},
		{"20", 20},
		{" -20 ", -20},
		{"+5", 5},
		{[]byte("11"), 11},
		{json.Number("12"), 12},
		{3.9, 3},
		{float32(-2.5), -2},
		{true, 1},
		{false, 0},
	}
	for _, tc := range ok {
		got, good := toInt(tc.in)
		if !good || got != tc.want {
			t.Fatalf("toInt(%#v) = %d,%v want %d", tc.in, got, good, tc.want)
		}
	}

	bad := []any{nil, ":-(", "", "1.5", "0x10", math.NaN(), math.Inf(1), 1e19, uint64(math.MaxUint64), struct{}{}, []int{1}}
	for _, in := range bad {
		if _, good := toInt(in); good {
			t.Fatalf("toInt(%#v) should fail", in)
		}
	}
}

func TestCoerceIntsReportsFirstFailureInKeyOrder(t *testing.T) {
	params := Params{"z": "nope", "a": "also-nope", "m": "3"}
	_, err := coerceInts(params)
	var ce *CoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CoercionError, got %v", err)
	}
	if ce.Param != "a" || ce.Value != "also-nope" {
		t.Fatalf("got %+v", ce)
	}
	if !errors.Is(err, ErrNotInt) {
		t.Fatalf("CoercionError must match ErrNotInt")
	}
	if params["m"] != "3" {
		t.Fatalf("input mutated: %v", params)
	}
}

func TestCoerceInts(t *testing.T) {
	out, err := coerceInts(Params{"a": "1", "b": 2, "c": 3.7})
	if err != nil {
		t.Fatalf("coerceInts: %v", err)
	}
	for k, want := range map[string]int64{"a": 1, "b": 2, "c": 3} {
		if out[k] != want {
			t.Fatalf("%s = %#v want %d", k, out[k], want)
		}
	}
}

func TestResultKinds(t *testing.T) {
	var zero Result[int]
	if zero.Found() || zero.Kind() != KindAbsent || zero.Len() != 0 {
		t.Fatalf("zero value should be absent")
	}
	if v, ok := OneOf(5).One(); !ok || v != 5 {
		t.Fatalf("OneOf: %v %v", v, ok)
	}
	empty := ManyOf[int](nil)
	if !empty.Found() || empty.Many() == nil || empty.Len() != 0 {
		t.Fatalf("ManyOf(nil) should be a found empty list")
	}
	if _, ok := ManyOf([]int{1}).One(); ok {
		t.Fatalf("One() on a list must report false")
	}
	if KindMany.String() != "many" || KindAbsent.String() != "absent" {
		t.Fatalf("Kind.String")
	}
}
