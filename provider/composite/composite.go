// Package composite chains providers into tiers, e.g. an in-process LRU in
// front of Redis.
//
// Get and GetMany read tiers in order and stop at the first hit per key.
// Set, Del and Close apply to every tier. Hits are not copied back into
// earlier tiers.
package composite

import (
	"context"
	"errors"
	"time"

	pr "github.com/unkn0wn-root/rtcache/provider"
)

type Provider struct {
	tiers []pr.Provider
}

var _ pr.Provider = (*Provider)(nil)

func New(tiers ...pr.Provider) (*Provider, error) {
	if len(tiers) == 0 {
		return nil, errors.New("composite: at least one provider is required")
	}
	for _, t := range tiers {
		if t == nil {
			return nil, errors.New("composite: nil provider")
		}
	}
	return &Provider{tiers: tiers}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for _, t := range p.tiers {
		v, ok, err := t.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// GetMany asks each tier only for the keys the previous tiers missed.
func (p *Provider) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	missing := keys
	for _, t := range p.tiers {
		if len(missing) == 0 {
			break
		}
		got, err := t.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		next := missing[:0:0]
		for _, k := range missing {
			if v, ok := got[k]; ok {
				out[k] = v
				continue
			}
			if _, seen := out[k]; !seen {
				next = append(next, k)
			}
		}
		missing = next
	}
	return out, nil
}

// Set writes every tier. ok reports whether any tier kept the entry; the
// first error wins but does not stop the remaining writes.
func (p *Provider) Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	var (
		stored   bool
		firstErr error
	)
	for _, t := range p.tiers {
		ok, err := t.Set(ctx, key, value, cost, ttl)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		stored = stored || ok
	}
	return stored, firstErr
}

func (p *Provider) Del(ctx context.Context, key string) error {
	var firstErr error
	for _, t := range p.tiers {
		if err := t.Del(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Provider) Close(ctx context.Context) error {
	var firstErr error
	for _, t := range p.tiers {
		if err := t.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
