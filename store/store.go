// Package store defines the persistent record store consulted by rtcache on
// a cache miss.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by GetOne when no record matches the filter.
	ErrNotFound = errors.New("store: record not found")
	// ErrMultiple is returned by GetOne when more than one record matches.
	ErrMultiple = errors.New("store: multiple records returned")
)

// Filter maps field lookups to values. Keys are field names, optionally
// suffixed with a lookup ("age__gt"); values are compared for equality
// unless the lookup says otherwise. Implementations document the lookups
// they accept.
type Filter map[string]any

// Store runs filtered reads against the authoritative record store.
//
// only, when non-empty, restricts the fetched fields. Fields left out are
// not loaded: records come back with those fields at their zero value.
type Store[R any] interface {
	// GetOne returns exactly one matching record, ErrNotFound or ErrMultiple.
	GetOne(ctx context.Context, filter Filter, only []string) (R, error)
	// Filter returns zero or more matching records.
	Filter(ctx context.Context, filter Filter, only []string) ([]R, error)
}
