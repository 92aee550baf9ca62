package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/market-ingest/internal/api"
	"github.com/rickgao/market-ingest/internal/export"
	"github.com/rickgao/market-ingest/internal/ingest"
	"github.com/rickgao/market-ingest/internal/model"
)

func newPricesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Load daily OHLCV price history",
	}

	cmd.AddCommand(
		newBackfillCmd(opts),
		newUpdateCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// dateRange holds --start/--end flags.
type dateRange struct {
	start string
	end   string
}

func (r *dateRange) register(cmd *cobra.Command, startHelp string) {
	cmd.Flags().StringVar(&r.start, "start", "", startHelp)
	cmd.Flags().StringVar(&r.end, "end", "", "last trade date, YYYY-MM-DD (default yesterday)")
}

// resolve parses the flags, defaulting start to defStart and end to the day
// before now.
func (r *dateRange) resolve(defStart string, now time.Time) (time.Time, time.Time, error) {
	startStr := r.start
	if startStr == "" {
		startStr = defStart
	}
	start, err := model.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start %q: %w", startStr, err)
	}

	end := model.Yesterday(now)
	if r.end != "" {
		end, err = model.ParseDate(r.end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end %q: %w", r.end, err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--start %s is after --end %s",
			start.Format(model.DateLayout), end.Format(model.DateLayout))
	}
	return start, end, nil
}

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	var dates dateRange

	cmd := &cobra.Command{
		Use:   "backfill [SYMBOL...]",
		Short: "Load the full price history between two dates",
		Long: `Fetch the full daily history for each symbol and upsert every bar
between --start and --end inclusive. Re-running overwrites stored bars
with the provider's current values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			start, end, err := dates.resolve(a.cfg.Ingest.BackfillStart, time.Now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			symbols := symbolsOrDefault(args, a.cfg.Ingest.PriceSymbols)
			a.logger.Info("backfilling prices",
				"symbols", symbols,
				"start", start.Format(model.DateLayout),
				"end", end.Format(model.DateLayout),
			)

			loader := ingest.NewPriceLoader(a.client, st, a.metrics, a.logger)
			results := loader.Backfill(ctx, symbols, start, end)
			return a.finish(ctx, ingest.PipelineBackfill, results)
		},
	}

	dates.register(cmd, "first trade date, YYYY-MM-DD (default ingest.backfill_start)")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update [SYMBOL...]",
		Short: "Extend stored price history through yesterday",
		Long: `Fetch bars from the day after each symbol's latest stored trade date
through yesterday. Symbols without stored history are skipped; run
backfill for them first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			symbols := symbolsOrDefault(args, a.cfg.Ingest.PriceSymbols)
			loader := ingest.NewPriceLoader(a.client, st, a.metrics, a.logger)
			results := loader.Update(ctx, symbols)
			return a.finish(ctx, ingest.PipelineUpdate, results)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		dates  dateRange
		out    string
		fromDB bool
	)

	cmd := &cobra.Command{
		Use:   "export SYMBOL",
		Short: "Write daily prices for one symbol to a CSV file",
		Long: `Write bars between --start and --end to a CSV file with the columns
date,open,high,low,close,volume. Bars come from the provider unless
--from-db is set, in which case the stored history is read instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			symbols := symbolsOrDefault(args, nil)
			if len(symbols) == 0 {
				return fmt.Errorf("symbol is required")
			}
			symbol := symbols[0]

			start, end, err := dates.resolve(a.cfg.Ingest.BackfillStart, time.Now())
			if err != nil {
				return err
			}
			if out == "" {
				out = export.DefaultFilename(symbol)
			}

			ctx := cmd.Context()
			var bars []model.PriceBar
			if fromDB {
				st, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				companyID, err := st.ResolveCompany(ctx, symbol)
				if err != nil {
					return err
				}
				if bars, err = st.PriceBars(ctx, companyID, start, end); err != nil {
					return err
				}
			} else {
				series, err := a.client.GetDailySeries(ctx, symbol, api.OutputFull)
				if err != nil {
					return err
				}
				if bars, err = api.MapDailySeries(series, start, end); err != nil {
					return err
				}
			}

			if err := export.WriteFile(out, bars); err != nil {
				return err
			}
			a.logger.Info("wrote price history",
				"symbol", symbol,
				"rows", len(bars),
				"file", out,
				"from_db", fromDB,
			)
			return nil
		},
	}

	dates.register(cmd, "first trade date, YYYY-MM-DD (default ingest.backfill_start)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default SYMBOL_daily_prices.csv)")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read stored bars instead of calling the provider")
	return cmd
}
