package rtcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/rtcache/codec"
	"github.com/unkn0wn-root/rtcache/internal/util"
	"github.com/unkn0wn-root/rtcache/internal/wire"
	pr "github.com/unkn0wn-root/rtcache/provider"
	st "github.com/unkn0wn-root/rtcache/store"
)

type manager[R any] struct {
	ns       string
	provider pr.Provider
	store    st.Store[R]
	codec    c.Codec[R]
	log      Logger
	hooks    Hooks

	enabled bool

	defaultTTL     time.Duration
	maxKeyLen      int
	computeSetCost SetCostFunc

	flight *singleflight.Group // nil unless Options.SingleFlight
}

func newManager[R any](opts Options[R]) (*manager[R], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("rtcache: provider is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("rtcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("rtcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("rtcache: namespace is required")
	}

	m := &manager[R]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		store:    opts.Store,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	m.maxKeyLen = coalesce(opts.MaxKeyLen, defaultMaxKeyLen)

	if opts.ComputeSetCost != nil {
		m.computeSetCost = opts.ComputeSetCost
	} else {
		m.computeSetCost = func(string, []byte, Kind, int) int64 { return 1 }
	}
	if opts.SingleFlight {
		m.flight = &singleflight.Group{}
	}
	return m, nil
}

func (m *manager[R]) Enabled() bool { return m.enabled }

func (m *manager[R]) Close(ctx context.Context) error {
	if m.provider != nil {
		return m.provider.Close(ctx)
	}
	return nil
}

func (m *manager[R]) FromCache(ctx context.Context, q Query[R]) (Result[R], error) {
	params := q.Params
	if q.IntOnly && len(params) > 0 {
		coerced, err := coerceInts(params)
		if err != nil {
			if q.Strict {
				return Result[R]{}, err
			}
			m.suppressed(q.Key, "not_int", err)
			return Absent[R](), nil
		}
		params = coerced
	}

	key, err := FormatKey(q.Key, params)
	if err != nil {
		return Result[R]{}, err
	}
	sk := m.storageKey(key)
	filter := merge(params, q.Const)

	if !m.enabled {
		return m.resolve(ctx, sk, filter, q)
	}

	empty, err := m.sentinel(q.Empty)
	if err != nil {
		return Result[R]{}, err
	}
	raw, ok, err := m.provider.Get(ctx, sk)
	if err != nil {
		return Result[R]{}, err
	}
	if ok {
		if res, hit := m.fromRaw(ctx, sk, raw, empty); hit {
			return res, nil
		}
	} else {
		m.hooks.Miss(sk)
	}

	if m.flight == nil {
		return m.resolve(ctx, sk, filter, q)
	}
	// the store query outlives any single caller giving up
	fctx := context.WithoutCancel(ctx)
	v, err, shared := m.flight.Do(sk, func() (any, error) {
		return m.resolve(fctx, sk, filter, q)
	})
	if err != nil {
		return Result[R]{}, err
	}
	res := v.(Result[R])
	if shared && res.Kind() == KindMany {
		res = ManyOf(append([]R(nil), res.Many()...))
	}
	return res, nil
}

// resolve runs the store query for q and caches the outcome.
func (m *manager[R]) resolve(ctx context.Context, sk string, filter st.Filter, q Query[R]) (Result[R], error) {
	var res Result[R]
	if q.One {
		r, err := m.store.GetOne(ctx, filter, q.Only)
		switch {
		case err == nil:
			res = OneOf(r)
		case errors.Is(err, st.ErrNotFound):
			if q.Strict {
				return Result[R]{}, err
			}
			m.suppressed(q.Key, "not_found", err)
			if q.SkipAbsent {
				return Absent[R](), nil
			}
			res = Absent[R]()
		default:
			return Result[R]{}, err
		}
	} else {
		rs, err := m.store.Filter(ctx, filter, q.Only)
		if err != nil {
			return Result[R]{}, err
		}
		res = ManyOf(rs)
	}

	if m.enabled {
		if err := m.write(ctx, sk, res, q.TTL); err != nil {
			return Result[R]{}, err
		}
	}
	return res, nil
}

func (m *manager[R]) ObjectsByKeys(ctx context.Context, keys []any, b Batch[R]) ([]Result[R], error) {
	if b.Get == nil {
		return nil, fmt.Errorf("rtcache: batch getter is required")
	}
	field := coalesce(b.Field, defaultField)

	sks := make([]string, len(keys))
	for i, k := range keys {
		key, err := FormatKey(b.Key, Params{field: k})
		if err != nil {
			return nil, err
		}
		sks[i] = m.storageKey(key)
	}

	var cached map[string][]byte
	var empty []byte
	if m.enabled && len(sks) > 0 {
		var err error
		if empty, err = m.sentinel(b.Empty); err != nil {
			return nil, err
		}
		if cached, err = m.provider.GetMany(ctx, sks); err != nil {
			return nil, err
		}
	}

	out := make([]Result[R], 0, len(keys))
	for i, k := range keys {
		if raw, ok := cached[sks[i]]; ok {
			if res, hit := m.fromRaw(ctx, sks[i], raw, empty); hit {
				out = append(out, res)
				continue
			}
		}
		res, err := b.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// fromRaw decodes a cached entry. Sentinel matches and undecodable entries
// are misses; the latter are deleted.
func (m *manager[R]) fromRaw(ctx context.Context, sk string, raw, empty []byte) (Result[R], bool) {
	if empty != nil && bytes.Equal(raw, empty) {
		m.hooks.SentinelMatch(sk)
		return Result[R]{}, false
	}
	res, reason, err := m.decode(raw)
	if err != nil {
		_ = m.provider.Del(ctx, sk) // self-heal
		m.hooks.SelfHeal(sk, reason)
		m.log.Debug("dropped undecodable entry", Fields{"key": sk, "reason": reason, "err": err})
		return Result[R]{}, false
	}
	m.hooks.Hit(sk)
	return res, true
}

func (m *manager[R]) write(ctx context.Context, sk string, res Result[R], ttl time.Duration) error {
	raw, err := m.encode(res)
	if err != nil {
		return err
	}
	ttl = coalesce(ttl, m.defaultTTL)
	ok, err := m.provider.Set(ctx, sk, raw, m.computeSetCost(sk, raw, res.Kind(), res.Len()), ttl)
	if err != nil {
		return err
	}
	if !ok {
		m.hooks.ProviderSetRejected(sk)
		m.log.Debug("Set rejected by provider (pressure)", Fields{"key": sk})
	}
	return nil
}

// sentinel returns the encoded form of e, or nil when no sentinel is set.
func (m *manager[R]) sentinel(e *Result[R]) ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	return m.encode(*e)
}

func (m *manager[R]) encode(res Result[R]) ([]byte, error) {
	switch res.kind {
	case KindOne:
		p, err := m.codec.Encode(res.one)
		if err != nil {
			return nil, err
		}
		return wire.EncodeOne(p)
	case KindMany:
		payloads := make([][]byte, len(res.many))
		for i, r := range res.many {
			p, err := m.codec.Encode(r)
			if err != nil {
				return nil, err
			}
			payloads[i] = p
		}
		return wire.EncodeMany(payloads)
	default:
		return wire.EncodeAbsent(), nil
	}
}

func (m *manager[R]) decode(raw []byte) (Result[R], string, error) {
	kind, payloads, err := wire.Decode(raw)
	if err != nil {
		return Result[R]{}, "corrupt", err
	}
	switch kind {
	case wire.KindOne:
		r, err := m.codec.Decode(payloads[0])
		if err != nil {
			return Result[R]{}, "record_decode", err
		}
		return OneOf(r), "", nil
	case wire.KindMany:
		rs := make([]R, 0, len(payloads))
		for _, p := range payloads {
			r, err := m.codec.Decode(p)
			if err != nil {
				return Result[R]{}, "record_decode", err
			}
			rs = append(rs, r)
		}
		return ManyOf(rs), "", nil
	default:
		return Absent[R](), "", nil
	}
}

func (m *manager[R]) suppressed(tmpl, reason string, err error) {
	m.hooks.Suppressed(tmpl, reason)
	m.log.Debug("suppressed error (tolerant query)", Fields{"template": tmpl, "reason": reason, "err": err})
}

func (m *manager[R]) storageKey(key string) string {
	return util.StorageKey(m.ns, key, m.maxKeyLen)
}

// merge returns params with consts laid over it, without touching either.
func merge(params, consts Params) st.Filter {
	out := make(st.Filter, len(params)+len(consts))
	for k, v := range params {
		out[k] = v
	}
	for k, v := range consts {
		out[k] = v
	}
	return out
}
