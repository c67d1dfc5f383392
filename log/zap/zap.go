// Package zap adapts a *zap.Logger to rtcache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/rtcache"
)

var _ rtcache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New wraps l, naming it "rtcache". A nil l yields a no-op logger.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.Named("rtcache")}
}

func (z Logger) Debug(msg string, f rtcache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f rtcache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f rtcache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f rtcache.Fields) { z.L.Error(msg, fields(f)...) }

// fields emits f in key order; error values become zap.NamedError so they
// render as strings rather than reflected structs.
func fields(f rtcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
