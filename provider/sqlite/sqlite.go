// Package sqlite is a Provider backed by a SQLite table (modernc.org/sqlite,
// no cgo). Useful for a cache that survives restarts of a single process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	pr "github.com/unkn0wn-root/rtcache/provider"
)

// noExpiry marks rows written with ttl <= 0.
const noExpiry int64 = 0

// SQLite rejects statements with more than 32766 bound variables.
const defaultBatch = 500

type Provider struct {
	db          *sql.DB
	ownsDB      bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	once        sync.Once
	expiryCheck time.Duration
	batch       int
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// Path of the database file. "" or ":memory:" uses an in-memory database.
	Path string
	// DB reuses an open handle instead of Path. It is not closed by Close.
	DB *sql.DB
	// ExpiryCheck is the sweep interval for expired rows; 0 => 1m, < 0 disables.
	ExpiryCheck time.Duration
	// Batch is the number of keys per IN query in GetMany; <= 0 => 500.
	Batch int
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	db, owns := cfg.DB, false
	if db == nil {
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		var err error
		if db, err = sql.Open("sqlite", path); err != nil {
			return nil, err
		}
		owns = true
		if path == ":memory:" {
			// every pooled connection would otherwise get its own database
			db.SetMaxOpenConns(1)
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS rtcache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`); err != nil {
		if owns {
			db.Close()
		}
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_rtcache_expires_at ON rtcache(expires_at)`); err != nil {
		if owns {
			db.Close()
		}
		return nil, err
	}

	p := &Provider{db: db, ownsDB: owns, expiryCheck: cfg.ExpiryCheck, batch: cfg.Batch}
	if p.batch <= 0 || p.batch > 32766 {
		p.batch = defaultBatch
	}
	if p.expiryCheck == 0 {
		p.expiryCheck = time.Minute
	}
	if p.expiryCheck > 0 {
		childCtx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.wg.Add(1)
		go p.run(childCtx)
	}
	return p, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var expiresAt int64
	err := p.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM rtcache WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expired(expiresAt, time.Now()) {
		_, _ = p.db.ExecContext(ctx, `DELETE FROM rtcache WHERE key = ?`, key)
		return nil, false, nil
	}
	return data, true, nil
}

// GetMany reads keys in chunks of Config.Batch, one IN query each; expired
// rows are skipped and left for the sweeper.
func (p *Provider) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for start := 0; start < len(keys); start += p.batch {
		end := min(start+p.batch, len(keys))
		if err := p.getMany(ctx, keys[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Provider) getMany(ctx context.Context, keys []string, out map[string][]byte) error {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `SELECT key, value, expires_at FROM rtcache WHERE key IN (?` +
		strings.Repeat(",?", len(keys)-1) + `)`
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	now := time.Now()
	for rows.Next() {
		var k string
		var data []byte
		var expiresAt int64
		if err := rows.Scan(&k, &data, &expiresAt); err != nil {
			return err
		}
		if !expired(expiresAt, now) {
			out[k] = data
		}
	}
	return rows.Err()
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	expiresAt := noExpiry
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	if value == nil {
		value = []byte{}
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO rtcache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM rtcache WHERE key = ?`, key)
	return err
}

// Sweep deletes expired rows and reports how many were removed.
func (p *Provider) Sweep(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM rtcache WHERE expires_at != ? AND expires_at < ?`,
		noExpiry, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *Provider) Close(_ context.Context) error {
	var err error
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
			p.wg.Wait()
		}
		if p.ownsDB {
			err = p.db.Close()
		}
	})
	return err
}

func (p *Provider) run(ctx context.Context) {
	defer p.wg.Done()
	t := time.NewTicker(p.expiryCheck)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = p.Sweep(ctx)
		}
	}
}

func expired(expiresAt int64, now time.Time) bool {
	return expiresAt != noExpiry && expiresAt < now.UnixNano()
}
