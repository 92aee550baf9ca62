package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/market-ingest/internal/api"
	"github.com/rickgao/market-ingest/internal/model"
)

// compactDays is the widest update gap fetched with the compact output size.
// Compact returns the latest 100 trading days, which spans more than 100
// calendar days.
const compactDays = 100

// PriceFetcher fetches a raw daily series for a ticker.
type PriceFetcher interface {
	GetDailySeries(ctx context.Context, symbol string, size api.OutputSize) (*api.DailySeriesResponse, error)
}

// PriceStore persists daily price bars.
type PriceStore interface {
	CompanyResolver
	LastTradeDate(ctx context.Context, companyID int64) (time.Time, bool, error)
	UpsertPriceBars(ctx context.Context, companyID int64, bars []model.PriceBar) (int, error)
}

// PriceLoader runs the backfill and update price pipelines.
type PriceLoader struct {
	fetcher  PriceFetcher
	store    PriceStore
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// PriceOption configures a PriceLoader.
type PriceOption func(*PriceLoader)

// WithNow sets the clock used to compute "yesterday" in update mode.
func WithNow(now func() time.Time) PriceOption {
	return func(l *PriceLoader) {
		l.now = now
	}
}

// NewPriceLoader creates a PriceLoader. A nil observer discards results.
func NewPriceLoader(fetcher PriceFetcher, store PriceStore, observer Observer, logger *slog.Logger, opts ...PriceOption) *PriceLoader {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &PriceLoader{
		fetcher:  fetcher,
		store:    store,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Backfill loads bars in [start, end] for each symbol from the full history.
func (l *PriceLoader) Backfill(ctx context.Context, symbols []string, start, end time.Time) []Result {
	start, end = model.DateOf(start), model.DateOf(end)
	return l.each(ctx, symbols, func(symbol string) Result {
		return l.backfillSymbol(ctx, symbol, start, end)
	})
}

// Update extends each symbol's stored history through yesterday.
func (l *PriceLoader) Update(ctx context.Context, symbols []string) []Result {
	end := model.Yesterday(l.now())
	return l.each(ctx, symbols, func(symbol string) Result {
		return l.updateSymbol(ctx, symbol, end)
	})
}

func (l *PriceLoader) each(ctx context.Context, symbols []string, load func(string) Result) []Result {
	results := make([]Result, 0, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			l.logger.Warn("price run cancelled", "remaining", len(symbols)-len(results))
			break
		}
		results = append(results, load(symbol))
	}
	return results
}

func (l *PriceLoader) backfillSymbol(ctx context.Context, symbol string, start, end time.Time) Result {
	began := l.now()
	res := Result{Symbol: symbol, Pipeline: PipelineBackfill, Stage: StageResolving}

	companyID, err := l.store.ResolveCompany(ctx, symbol)
	if err != nil {
		res.fail(err)
		return l.finish(&res, began)
	}

	l.load(ctx, &res, companyID, api.OutputFull, start, end)
	return l.finish(&res, began)
}

func (l *PriceLoader) updateSymbol(ctx context.Context, symbol string, end time.Time) Result {
	began := l.now()
	res := Result{Symbol: symbol, Pipeline: PipelineUpdate, Stage: StageResolving}

	companyID, err := l.store.ResolveCompany(ctx, symbol)
	if err != nil {
		res.fail(err)
		return l.finish(&res, began)
	}

	last, ok, err := l.store.LastTradeDate(ctx, companyID)
	if err != nil {
		res.fail(err)
		return l.finish(&res, began)
	}
	if !ok {
		res.skip(ReasonNoHistory)
		return l.finish(&res, began)
	}

	start := model.DateOf(last).AddDate(0, 0, 1)
	if start.After(end) {
		res.skip(ReasonUpToDate)
		return l.finish(&res, began)
	}

	l.load(ctx, &res, companyID, outputSizeFor(start, end), start, end)
	if res.Status == StatusDone && res.Rows == 0 {
		res.skip(ReasonNoNewRows)
	}
	return l.finish(&res, began)
}

// load runs the fetch, map and persist stages for one resolved symbol.
func (l *PriceLoader) load(ctx context.Context, res *Result, companyID int64, size api.OutputSize, start, end time.Time) {
	l.logger.Debug("fetching daily series",
		"symbol", res.Symbol,
		"output_size", size,
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout),
	)

	res.Stage = StageFetching
	series, err := l.fetcher.GetDailySeries(ctx, res.Symbol, size)
	if err != nil {
		res.fail(err)
		return
	}

	res.Stage = StageMapping
	bars, err := api.MapDailySeries(series, start, end)
	if err != nil {
		res.fail(err)
		return
	}

	res.Stage = StagePersisting
	if _, err := l.store.UpsertPriceBars(ctx, companyID, bars); err != nil {
		res.fail(err)
		return
	}

	res.done(len(bars))
}

func (l *PriceLoader) finish(res *Result, began time.Time) Result {
	res.Duration = l.now().Sub(began)
	return report(l.logger, l.observer, *res)
}

// outputSizeFor picks the smallest output size that covers [start, end].
func outputSizeFor(start, end time.Time) api.OutputSize {
	days := int(end.Sub(start).Hours()/24) + 1
	if days <= compactDays {
		return api.OutputCompact
	}
	return api.OutputFull
}
