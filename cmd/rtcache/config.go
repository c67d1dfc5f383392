package main

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	pr "github.com/unkn0wn-root/rtcache/provider"
	"github.com/unkn0wn-root/rtcache/provider/bigcache"
	"github.com/unkn0wn-root/rtcache/provider/composite"
	"github.com/unkn0wn-root/rtcache/provider/lru"
	"github.com/unkn0wn-root/rtcache/provider/redis"
	"github.com/unkn0wn-root/rtcache/provider/ristretto"
	"github.com/unkn0wn-root/rtcache/provider/sqlite"
)

// Config is the YAML file read by every command.
//
//	namespace: people
//	database: ./app.db
//	table: person
//	pk: id
//	ttl: 10m
//	cache:
//	  type: redis
//	  addr: localhost:6379
type Config struct {
	Namespace string        `yaml:"namespace"`
	Database  string        `yaml:"database"`
	Table     string        `yaml:"table"`
	PK        string        `yaml:"pk"`
	TTL       time.Duration `yaml:"ttl"`
	MaxKeyLen int           `yaml:"max_key_len"`
	Cache     CacheConfig   `yaml:"cache"`
}

type CacheConfig struct {
	Type string `yaml:"type"` // sqlite (default), redis, ristretto, bigcache, lru, composite

	Path string `yaml:"path"` // sqlite

	Addr     string `yaml:"addr"` // redis
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	MaxCost int64 `yaml:"max_cost"` // ristretto

	Size int `yaml:"size"` // lru

	Tiers []CacheConfig `yaml:"tiers"` // composite, read in order

	LifeWindow time.Duration `yaml:"life_window"` // bigcache
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Database == "" {
		return cfg, fmt.Errorf("config %s: database is required", path)
	}
	if cfg.Table == "" {
		return cfg, fmt.Errorf("config %s: table is required", path)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = cfg.Table
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "sqlite"
	}
	return cfg, nil
}

func openProvider(ctx context.Context, cc CacheConfig) (pr.Provider, error) {
	switch cc.Type {
	case "sqlite":
		return sqlite.New(ctx, sqlite.Config{Path: cc.Path})
	case "redis":
		addr := cc.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: cc.Password, DB: cc.DB})
		return redis.New(redis.Config{Client: rdb, CloseClient: true})
	case "ristretto":
		maxCost := cc.MaxCost
		if maxCost <= 0 {
			maxCost = 1 << 20
		}
		return ristretto.New(ristretto.Config{NumCounters: maxCost * 10, MaxCost: maxCost, BufferItems: 64})
	case "bigcache":
		life := cc.LifeWindow
		if life <= 0 {
			life = 10 * time.Minute
		}
		return bigcache.New(ctx, bigcache.Config{LifeWindow: life})
	case "lru":
		size := cc.Size
		if size <= 0 {
			size = 10_000
		}
		return lru.New(lru.Config{Size: size})
	case "composite":
		tiers := make([]pr.Provider, 0, len(cc.Tiers))
		for _, tc := range cc.Tiers {
			t, err := openProvider(ctx, tc)
			if err != nil {
				for _, opened := range tiers {
					_ = opened.Close(ctx)
				}
				return nil, err
			}
			tiers = append(tiers, t)
		}
		return composite.New(tiers...)
	}
	return nil, fmt.Errorf("unknown cache type %q", cc.Type)
}
