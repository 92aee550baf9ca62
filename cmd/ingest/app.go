package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rickgao/market-ingest/internal/api"
	"github.com/rickgao/market-ingest/internal/config"
	"github.com/rickgao/market-ingest/internal/database"
	"github.com/rickgao/market-ingest/internal/ingest"
	"github.com/rickgao/market-ingest/internal/metrics"
	"github.com/rickgao/market-ingest/internal/ratelimit"
	"github.com/rickgao/market-ingest/internal/store"
	"github.com/rickgao/market-ingest/internal/version"
)

const pushTimeout = 10 * time.Second

// app holds the dependencies shared by one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	client  *api.Client

	pool *pgxpool.Pool
}

// newApp loads configuration and builds the logger, metrics recorder and API
// client. The database is connected lazily by openStore.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logger = logger.With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	logger.Info("starting ingest",
		"command", cmd.CommandPath(),
		"version", version.Version,
		"commit", version.Commit,
	)

	rec := metrics.New()

	// One limiter for the whole process: the quota is per API key.
	limiter := ratelimit.New(cfg.API.CallsPerWindow, cfg.API.Window,
		ratelimit.WithWaitHook(func(d time.Duration) {
			rec.ObserveThrottle(d)
			logger.Info("rate limit reached, waiting", "wait", d.Round(time.Millisecond))
		}),
	)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.APIKey, limiter,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithObserver(rec),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: rec,
		client:  client,
	}, nil
}

// openStore connects to PostgreSQL and returns a Store on the pool.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	a.logger.Info("connecting to database",
		"host", a.cfg.Database.Host,
		"port", a.cfg.Database.Port,
		"database", a.cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	a.logger.Info("database connected")
	return store.New(pool, a.logger), nil
}

// Close releases the database pool.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// finish logs the run summary, pushes metrics and returns an error when any
// symbol failed.
func (a *app) finish(ctx context.Context, pipeline ingest.Pipeline, results []ingest.Result) error {
	sum := ingest.Summarize(results)
	a.logger.Info("run complete",
		"pipeline", pipeline,
		"symbols", len(results),
		"done", sum.Done,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"rows", sum.Rows,
		"dropped", sum.Dropped,
	)

	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if err := a.metrics.Push(pushCtx, url, a.cfg.Metrics.Job); err != nil {
			a.logger.Warn("metrics push failed", "error", err)
		}
	}

	if err := ingest.FailedErr(results); err != nil {
		return fmt.Errorf("%d of %d symbols failed: %w", sum.Failed, len(results), err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

// symbolsOrDefault normalizes args, falling back to defaults when empty.
func symbolsOrDefault(args, defaults []string) []string {
	src := args
	if len(src) == 0 {
		src = defaults
	}
	out := make([]string, 0, len(src))
	seen := make(map[string]bool, len(src))
	for _, s := range src {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
