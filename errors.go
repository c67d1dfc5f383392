package rtcache

import (
	"errors"
	"fmt"

	st "github.com/unkn0wn-root/rtcache/store"
)

var (
	// ErrNotInt is matched by *CoercionError.
	ErrNotInt = errors.New("rtcache: parameter is not an integer")
	// ErrNotFound is the store's not-found error, surfaced by strict
	// single-record queries.
	ErrNotFound = st.ErrNotFound
	// ErrKeyTemplate is matched by *KeyTemplateError.
	ErrKeyTemplate = errors.New("rtcache: invalid key template")
)

// CoercionError reports the parameter that failed integer coercion.
type CoercionError struct {
	Param string
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("rtcache: parameter %q is not an integer: %v (%T)", e.Param, e.Value, e.Value)
}

func (e *CoercionError) Unwrap() error { return ErrNotInt }

type KeyTemplateError struct {
	Template string
	Reason   string
}

func (e *KeyTemplateError) Error() string {
	return fmt.Sprintf("rtcache: key template %q: %s", e.Template, e.Reason)
}

func (e *KeyTemplateError) Unwrap() error { return ErrKeyTemplate }
