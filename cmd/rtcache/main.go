// Command rtcache runs read-through queries against a SQL table through a
// configured cache provider and prints the result as JSON.
//
//	rtcache query -c rtcache.yaml --key 'person::{name}' -p name=Bart --one
//	rtcache get -c rtcache.yaml --key 'person::{pk}' 1 2 3
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/rtcache"
	"github.com/unkn0wn-root/rtcache/codec"
	zaplog "github.com/unkn0wn-root/rtcache/log/zap"
	"github.com/unkn0wn-root/rtcache/store/sqlstore"
)

type record = map[string]any

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rtcache",
		Short:        "Read-through cache queries over a SQL table",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to the YAML config (env RTCACHE_CONFIG)")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().Bool("no-cache", false, "bypass the cache and query the table directly")

	root.AddCommand(newQueryCmd(), newGetCmd())
	return root
}

func flagOrEnv(cmd *cobra.Command, flagName, envName, defaultValue string) string {
	if v, _ := cmd.Flags().GetString(flagName); v != "" {
		return v
	}
	if v, ok := os.LookupEnv(envName); ok && v != "" {
		return v
	}
	return defaultValue
}

func newQueryCmd() *cobra.Command {
	var (
		q      rtcache.Query[record]
		params []string
		consts []string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Resolve one query template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if q.Params, err = parseParams(params); err != nil {
				return err
			}
			if q.Const, err = parseParams(consts); err != nil {
				return err
			}
			return withManager(cmd, func(ctx context.Context, m rtcache.Manager[record]) error {
				res, err := m.FromCache(ctx, q)
				if err != nil {
					return err
				}
				return printResult(cmd, res)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Key, "key", "k", "", "cache key template, e.g. person::{name}")
	f.StringArrayVarP(&params, "param", "p", nil, "name=value, fills the key and filters the table")
	f.StringArrayVar(&consts, "const", nil, "name=value, filters the table only")
	f.StringSliceVar(&q.Only, "only", nil, "columns to fetch")
	f.BoolVar(&q.One, "one", false, "expect a single row")
	f.BoolVar(&q.Strict, "strict", false, "fail on not-found and non-integer parameters")
	f.BoolVar(&q.IntOnly, "int-only", false, "coerce every parameter to an integer")
	f.BoolVar(&q.SkipAbsent, "skip-absent", false, "do not cache not-found results")
	f.DurationVar(&q.TTL, "ttl", 0, "entry TTL (default from config)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newGetCmd() *cobra.Command {
	var (
		key   string
		field string
		only  []string
	)
	cmd := &cobra.Command{
		Use:   "get KEY...",
		Short: "Fetch rows by primary key, reading the cache in bulk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]any, len(args))
			for i, a := range args {
				keys[i] = a
			}
			return withManager(cmd, func(ctx context.Context, m rtcache.Manager[record]) error {
				b := rtcache.Batch[record]{
					Key:   key,
					Field: field,
					Get:   rtcache.ByField(m, rtcache.Query[record]{Key: key, Only: only}, field),
				}
				out, err := m.ObjectsByKeys(ctx, keys, b)
				if err != nil {
					return err
				}
				rows := make([]any, len(out))
				for i, r := range out {
					rows[i] = resultValue(r)
				}
				return printJSON(cmd, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "per-row key template, e.g. person::{pk}")
	cmd.Flags().StringVar(&field, "field", "pk", "placeholder and filter field")
	cmd.Flags().StringSliceVar(&only, "only", nil, "columns to fetch")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func withManager(cmd *cobra.Command, fn func(context.Context, rtcache.Manager[record]) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := flagOrEnv(cmd, "config", "RTCACHE_CONFIG", "rtcache.yaml")
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	zl := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if zl, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = zl.Sync() }()

	db, err := sql.Open("sqlite", cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := sqlstore.New(db, sqlstore.Config[record]{Table: cfg.Table, PK: cfg.PK, Scan: sqlstore.Maps})
	if err != nil {
		return err
	}
	p, err := openProvider(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	m, err := rtcache.New[record](rtcache.Options[record]{
		Namespace:  cfg.Namespace,
		Provider:   p,
		Store:      st,
		Codec:      codec.JSON[record]{},
		Logger:     zaplog.New(zl),
		DefaultTTL: cfg.TTL,
		MaxKeyLen:  cfg.MaxKeyLen,
		Disabled:   noCache,
	})
	if err != nil {
		_ = p.Close(ctx)
		return err
	}
	defer m.Close(ctx)
	return fn(ctx, m)
}

// parseParams reads name=value pairs. Values stay strings; use --int-only
// for numeric parameters.
func parseParams(kvs []string) (rtcache.Params, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(rtcache.Params, len(kvs))
	for _, kv := range kvs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", kv)
		}
		out[name] = value
	}
	return out, nil
}

func resultValue(r rtcache.Result[record]) any {
	switch r.Kind() {
	case rtcache.KindOne:
		v, _ := r.One()
		return v
	case rtcache.KindMany:
		return r.Many()
	}
	return nil
}

func printResult(cmd *cobra.Command, r rtcache.Result[record]) error {
	return printJSON(cmd, resultValue(r))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
