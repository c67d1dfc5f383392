// Package lru is an in-process Provider on hashicorp/golang-lru's expirable
// LRU. Entries expire at the per-Set TTL, capped by Config.TTL.
package lru

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	pr "github.com/unkn0wn-root/rtcache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => only the LRU-wide TTL applies
}

type Provider struct {
	c   *expirable.LRU[string, entry]
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Size int           // max entries; required
	TTL  time.Duration // LRU-wide ceiling; 0 => none
}

func New(cfg Config) (*Provider, error) {
	if cfg.Size <= 0 {
		return nil, errors.New("lru: size must be positive")
	}
	return &Provider{
		c:   expirable.NewLRU[string, entry](cfg.Size, nil, cfg.TTL),
		now: time.Now,
	}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && !p.now().Before(e.exp) {
		p.c.Remove(key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	return pr.GetManyFallback(ctx, p, keys)
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	p.c.Add(key, entry{v: value, exp: exp})
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) Len() int { return p.c.Len() }

func (p *Provider) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}
