// Command ingest loads Alpha Vantage news and daily prices into PostgreSQL.
//
// Usage:
//
//	ingest news [SYMBOL...] [--limit N]
//	ingest prices backfill [SYMBOL...] [--start YYYY-MM-DD] [--end YYYY-MM-DD]
//	ingest prices update [SYMBOL...]
//	ingest prices export SYMBOL [--start] [--end] [--out FILE] [--from-db]
//	ingest version
//
// The process exits non-zero when any symbol fails.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
