package main

import (
	"github.com/spf13/cobra"

	"github.com/rickgao/market-ingest/internal/ingest"
)

func newNewsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "news [SYMBOL...]",
		Short: "Fetch news articles and link them to their companies",
		Long: `Fetch the latest news for each symbol and upsert the articles by URL,
linking each one to the symbol's company. Without arguments the
ingest.news_symbols list from the config is used.`,
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

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Ingest.NewsLimit
			}
			symbols := symbolsOrDefault(args, a.cfg.Ingest.NewsSymbols)

			loader := ingest.NewNewsLoader(a.client, st, a.metrics, a.logger)
			results := loader.LoadSymbols(ctx, symbols, limit)
			return a.finish(ctx, ingest.PipelineNews, results)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum articles per symbol (overrides ingest.news_limit)")
	return cmd
}
