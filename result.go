package rtcache

// Kind tells which shape a Result holds.
type Kind uint8

const (
	KindAbsent Kind = iota // not found (or coerced away under the tolerant policy)
	KindOne                // single record
	KindMany               // list of records, possibly empty
)

func (k Kind) String() string {
	switch k {
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	default:
		return "absent"
	}
}

// Result is the outcome of a query: absent, one record or a list.
// The zero value is absent.
type Result[R any] struct {
	kind Kind
	one  R
	many []R
}

func Absent[R any]() Result[R] { return Result[R]{} }

func OneOf[R any](v R) Result[R] { return Result[R]{kind: KindOne, one: v} }

func ManyOf[R any](vs []R) Result[R] {
	if vs == nil {
		vs = []R{}
	}
	return Result[R]{kind: KindMany, many: vs}
}

func (r Result[R]) Kind() Kind { return r.kind }

// Found is false only for absent results. An empty list is found.
func (r Result[R]) Found() bool { return r.kind != KindAbsent }

func (r Result[R]) One() (R, bool) {
	return r.one, r.kind == KindOne
}

// Many returns the record list; nil unless Kind() == KindMany.
func (r Result[R]) Many() []R { return r.many }

// Len is the number of records held: 0, 1 or len(Many()).
func (r Result[R]) Len() int {
	switch r.kind {
	case KindOne:
		return 1
	case KindMany:
		return len(r.many)
	}
	return 0
}
