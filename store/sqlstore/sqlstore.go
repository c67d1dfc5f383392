// Package sqlstore implements store.Store over database/sql for a single
// table.
//
// Filter keys use Django-style lookups: "name" (or "name__exact"),
// "age__gt", "age__gte", "age__lt", "age__lte", "id__in" (slice value) and
// "deleted_at__isnull" (bool value). "pk" names the primary key column.
// Column names must be plain identifiers; anything else is rejected.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/rtcache/store"
)

// ScanFunc turns one row into a record. cols are the selected column names,
// vals the driver values in the same order.
type ScanFunc[R any] func(cols []string, vals []any) (R, error)

type Config[R any] struct {
	Table string
	PK    string      // primary key column; "" => "id"
	Scan  ScanFunc[R] // required
	// Dollar switches placeholders from "?" to "$1, $2, ..." (PostgreSQL).
	Dollar bool
}

type Store[R any] struct {
	db     *sql.DB
	table  string
	pk     string
	scan   ScanFunc[R]
	dollar bool
}

var _ store.Store[map[string]any] = (*Store[map[string]any])(nil)

var ident = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func New[R any](db *sql.DB, cfg Config[R]) (*Store[R], error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: db is required")
	}
	if cfg.Scan == nil {
		return nil, fmt.Errorf("sqlstore: scan func is required")
	}
	if !ident.MatchString(cfg.Table) {
		return nil, fmt.Errorf("sqlstore: invalid table name %q", cfg.Table)
	}
	pk := cfg.PK
	if pk == "" {
		pk = "id"
	}
	if !ident.MatchString(pk) {
		return nil, fmt.Errorf("sqlstore: invalid pk column %q", pk)
	}
	return &Store[R]{db: db, table: cfg.Table, pk: pk, scan: cfg.Scan, dollar: cfg.Dollar}, nil
}

func (s *Store[R]) GetOne(ctx context.Context, filter store.Filter, only []string) (R, error) {
	var zero R
	out, err := s.query(ctx, filter, only, 2)
	if err != nil {
		return zero, err
	}
	switch len(out) {
	case 0:
		return zero, store.ErrNotFound
	case 1:
		return out[0], nil
	default:
		return zero, store.ErrMultiple
	}
}

func (s *Store[R]) Filter(ctx context.Context, filter store.Filter, only []string) ([]R, error) {
	return s.query(ctx, filter, only, 0)
}

func (s *Store[R]) query(ctx context.Context, filter store.Filter, only []string, limit int) ([]R, error) {
	q, args, err := s.build(filter, only, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]R, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r, err := s.scan(cols, vals)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store[R]) build(filter store.Filter, only []string, limit int) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(only) == 0 {
		b.WriteString("*")
	} else {
		for i, f := range only {
			col, err := s.column(f)
			if err != nil {
				return "", nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(quote(s.table))

	// sorted field order keeps the statement text stable for a given filter
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var args []any
	for i, k := range keys {
		cond, a, err := s.condition(k, filter[k], len(args))
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(cond)
		args = append(args, a...)
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(quote(s.pk))
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
	}
	return b.String(), args, nil
}

func (s *Store[R]) condition(key string, v any, argc int) (string, []any, error) {
	field, lookup := key, "exact"
	if i := strings.LastIndex(key, "__"); i > 0 {
		switch key[i+2:] {
		case "exact", "gt", "gte", "lt", "lte", "in", "isnull":
			field, lookup = key[:i], key[i+2:]
		}
	}
	col, err := s.column(field)
	if err != nil {
		return "", nil, err
	}

	switch lookup {
	case "exact":
		if v == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = " + s.ph(argc), []any{v}, nil
	case "gt":
		return col + " > " + s.ph(argc), []any{v}, nil
	case "gte":
		return col + " >= " + s.ph(argc), []any{v}, nil
	case "lt":
		return col + " < " + s.ph(argc), []any{v}, nil
	case "lte":
		return col + " <= " + s.ph(argc), []any{v}, nil
	case "isnull":
		isNull, ok := v.(bool)
		if !ok {
			return "", nil, fmt.Errorf("sqlstore: %s requires a bool, got %T", key, v)
		}
		if isNull {
			return col + " IS NULL", nil, nil
		}
		return col + " IS NOT NULL", nil, nil
	default: // in
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return "", nil, fmt.Errorf("sqlstore: %s requires a slice, got %T", key, v)
		}
		if rv.Len() == 0 {
			return "1 = 0", nil, nil
		}
		args := make([]any, rv.Len())
		phs := make([]string, rv.Len())
		for i := range args {
			args[i] = rv.Index(i).Interface()
			phs[i] = s.ph(argc + i)
		}
		return col + " IN (" + strings.Join(phs, ", ") + ")", args, nil
	}
}

func (s *Store[R]) column(field string) (string, error) {
	if field == "pk" {
		field = s.pk
	}
	if !ident.MatchString(field) {
		return "", fmt.Errorf("sqlstore: invalid field %q", field)
	}
	return quote(field), nil
}

// ph returns the placeholder for the argument at zero-based index n.
func (s *Store[R]) ph(n int) string {
	if s.dollar {
		return "$" + strconv.Itoa(n+1)
	}
	return "?"
}

func quote(ident string) string { return `"` + ident + `"` }

// Maps scans rows into column-name keyed maps. []byte values (TEXT on some
// drivers, BLOB) are stored as strings.
func Maps(cols []string, vals []any) (map[string]any, error) {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		if b, ok := vals[i].([]byte); ok {
			m[c] = string(b)
			continue
		}
		m[c] = vals[i]
	}
	return m, nil
}
