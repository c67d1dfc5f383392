package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "app.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO person (id, name, age) VALUES (1, 'Bart', 10), (2, 'Flanders', 60), (3, 'Burns', 123)`)
	require.NoError(t, err)

	cfgPath = filepath.Join(dir, "rtcache.yaml")
	cfg := "namespace: people\n" +
		"database: " + dbPath + "\n" +
		"table: person\n" +
		"ttl: 1h\n" +
		"cache:\n" +
		"  type: sqlite\n" +
		"  path: " + filepath.Join(dir, "cache.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	cfgPath, dbPath := writeFixture(t)
	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "people", cfg.Namespace)
	assert.Equal(t, dbPath, cfg.Database)
	assert.Equal(t, time.Hour, cfg.TTL)
	assert.Equal(t, "sqlite", cfg.Cache.Type)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("table: person\n"), 0o600))
	_, err = loadConfig(bad)
	assert.ErrorContains(t, err, "database is required")

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenProvider(t *testing.T) {
	ctx := context.Background()
	for _, typ := range []string{"sqlite", "ristretto", "bigcache", "lru"} {
		p, err := openProvider(ctx, CacheConfig{Type: typ})
		require.NoError(t, err, typ)
		ok, err := p.Set(ctx, "k", []byte("v"), 1, time.Minute)
		require.NoError(t, err, typ)
		if typ != "ristretto" {
			assert.True(t, ok, typ)
		}
		require.NoError(t, p.Close(ctx), typ)
	}
	_, err := openProvider(ctx, CacheConfig{Type: "memcached"})
	assert.Error(t, err)

	p, err := openProvider(ctx, CacheConfig{Type: "composite", Tiers: []CacheConfig{{Type: "lru"}, {Type: "sqlite"}}})
	require.NoError(t, err)
	_, err = p.Set(ctx, "k", []byte("v"), 1, 0)
	require.NoError(t, err)
	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	require.NoError(t, p.Close(ctx))

	_, err = openProvider(ctx, CacheConfig{Type: "composite"})
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"name=Bart", "expr=a=b"})
	require.NoError(t, err)
	assert.Equal(t, "Bart", p["name"])
	assert.Equal(t, "a=b", p["expr"])

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestQueryIsServedFromCache(t *testing.T) {
	cfgPath, dbPath := writeFixture(t)

	out, err := run(t, "query", "-c", cfgPath, "--key", "person::{name}", "-p", "name=Bart", "--one")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Bart", got["name"])

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM person WHERE name = 'Bart'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err = run(t, "query", "-c", cfgPath, "--key", "person::{name}", "-p", "name=Bart", "--one")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Bart", got["name"], "second run should hit the cache")

	out, err = run(t, "query", "-c", cfgPath, "--no-cache", "--key", "person::{name}", "-p", "name=Bart", "--one")
	require.NoError(t, err)
	assert.JSONEq(t, "null", out)

	_, err = run(t, "query", "-c", cfgPath, "--no-cache", "--strict", "--key", "person::{name}", "-p", "name=Bart", "--one")
	assert.Error(t, err)
}

func TestQueryIntOnlyAndGet(t *testing.T) {
	cfgPath, _ := writeFixture(t)

	out, err := run(t, "query", "-c", cfgPath, "--key", "older::{age__gt}", "-p", "age__gt=20", "--int-only", "--only", "name")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Flanders"},{"name":"Burns"}]`, out)

	out, err = run(t, "get", "-c", cfgPath, "--key", "person::{pk}", "--only", "id,name", "3", "1", "9")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":3,"name":"Burns"},{"id":1,"name":"Bart"},null]`, out)
}
