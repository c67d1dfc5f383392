package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/rtcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const defaultMGetBatch = 500

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	mgetBatch   int
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
	// MGetBatch caps the keys sent per MGET; 0 => 500.
	MGetBatch int
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	batch := cfg.MGetBatch
	if batch <= 0 {
		batch = defaultMGetBatch
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, mgetBatch: batch}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// GetMany reads keys with MGET, MGetBatch keys per round trip. Missing keys
// come back as nil and are left out of the result.
func (p *Redis) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for start := 0; start < len(keys); start += p.mgetBatch {
		end := min(start+p.mgetBatch, len(keys))
		if err := p.mget(ctx, keys[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Redis) mget(ctx context.Context, keys []string, out map[string][]byte) error {
	vals, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
		case string:
			out[keys[i]] = []byte(vv)
		case []byte:
			out[keys[i]] = vv
		default:
			return fmt.Errorf("redis provider: unexpected MGET value %T at %s", v, keys[i])
		}
	}
	return nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
