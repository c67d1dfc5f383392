package rtcache

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// coerceInts converts every value in params to int64, or fails on the first
// unconvertible parameter (in key order). params is never modified.
func coerceInts(params Params) (Params, error) {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(Params, len(params))
	for _, k := range names {
		n, ok := toInt(params[k])
		if !ok {
			return nil, &CoercionError{Param: k, Value: params[k]}
		}
		out[k] = n
	}
	return out, nil
}

// toInt accepts integers, integral-range floats (truncated toward zero),
// bools, json.Number and base-10 strings with optional sign and surrounding
// whitespace.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int64:
		return x, true
	case int:
		return int64(x), true
	case string:
		return parseInt(x)
	case []byte:
		return parseInt(string(x))
	case json.Number:
		return parseInt(string(x))
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(rv.Float())
		// 2^63 itself is not representable; -2^63 is
		if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case reflect.String:
		return parseInt(rv.String())
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}
