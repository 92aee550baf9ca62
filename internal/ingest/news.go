package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/market-ingest/internal/api"
	"github.com/rickgao/market-ingest/internal/model"
)

// NewsFetcher fetches raw news feed items for a ticker.
type NewsFetcher interface {
	GetNewsFeed(ctx context.Context, symbol string, limit int) ([]api.FeedItem, error)
}

// CompanyResolver maps a ticker to its company_id.
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, symbol string) (int64, error)
}

// NewsStore persists articles and their company links.
type NewsStore interface {
	CompanyResolver
	SaveArticles(ctx context.Context, companyID int64, articles []model.Article) (int, error)
}

// NewsLoader runs the news pipeline.
type NewsLoader struct {
	fetcher  NewsFetcher
	store    NewsStore
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewNewsLoader creates a NewsLoader. A nil observer discards results.
func NewNewsLoader(fetcher NewsFetcher, store NewsStore, observer Observer, logger *slog.Logger) *NewsLoader {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsLoader{
		fetcher:  fetcher,
		store:    store,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadSymbols loads news for each symbol in order. Processing stops early only
// when ctx is cancelled; the remaining symbols get no Result.
func (l *NewsLoader) LoadSymbols(ctx context.Context, symbols []string, limit int) []Result {
	results := make([]Result, 0, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			l.logger.Warn("news run cancelled", "remaining", len(symbols)-len(results))
			break
		}
		results = append(results, l.LoadSymbol(ctx, symbol, limit))
	}
	return results
}

// LoadSymbol fetches up to limit news items for symbol, drops malformed items
// and upserts the rest together with their company links in one transaction.
func (l *NewsLoader) LoadSymbol(ctx context.Context, symbol string, limit int) Result {
	start := l.now()
	res := Result{Symbol: symbol, Pipeline: PipelineNews, Stage: StageResolving}

	companyID, err := l.store.ResolveCompany(ctx, symbol)
	if err != nil {
		res.fail(err)
		return l.finish(&res, start)
	}

	res.Stage = StageFetching
	items, err := l.fetcher.GetNewsFeed(ctx, symbol, limit)
	if err != nil {
		res.fail(err)
		return l.finish(&res, start)
	}

	res.Stage = StageMapping
	articles := api.MapNewsFeed(items)
	res.Dropped = len(items) - len(articles)

	res.Stage = StagePersisting
	n, err := l.store.SaveArticles(ctx, companyID, articles)
	if err != nil {
		res.fail(err)
		return l.finish(&res, start)
	}

	res.done(n)
	return l.finish(&res, start)
}

func (l *NewsLoader) finish(res *Result, start time.Time) Result {
	res.Duration = l.now().Sub(start)
	return report(l.logger, l.observer, *res)
}
