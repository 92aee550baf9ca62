package api

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/market-ingest/internal/model"
)

// NewsTimeLayout is the compact timestamp format of time_published.
const NewsTimeLayout = "20060102T150405"

// pricePlaces is the scale of the pricehistory NUMERIC columns.
const pricePlaces = 2

// ParseNewsTime parses a time_published value such as "20251203T134500" as UTC.
func ParseNewsTime(s string) (time.Time, error) {
	return time.Parse(NewsTimeLayout, s)
}

// ToArticle converts a FeedItem to model.Article.
// ok is false when the item has no usable timestamp, URL or title.
func (f *FeedItem) ToArticle() (a model.Article, ok bool) {
	if f.TimePublished == "" {
		return model.Article{}, false
	}
	published, err := ParseNewsTime(f.TimePublished)
	if err != nil {
		return model.Article{}, false
	}

	a = model.Article{
		Title:       strings.TrimSpace(f.Title),
		Summary:     strings.TrimSpace(f.Summary),
		PublishedAt: published,
		URL:         strings.TrimSpace(f.URL),
		Source:      strings.TrimSpace(f.Source),
	}
	if a.URL == "" || a.Title == "" {
		return model.Article{}, false
	}

	return a, true
}

// MapNewsFeed converts feed items to articles, silently dropping items that
// ToArticle rejects. Order is preserved.
func MapNewsFeed(items []FeedItem) []model.Article {
	articles := make([]model.Article, 0, len(items))
	for i := range items {
		if a, ok := items[i].ToArticle(); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// ToPriceBar converts a DailyBar for the given trade date. Prices are rounded
// to 2 places; any malformed field is an error.
func (b *DailyBar) ToPriceBar(tradeDate time.Time) (model.PriceBar, error) {
	open, err := parsePrice(b.Open)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("open: %w", err)
	}
	high, err := parsePrice(b.High)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("high: %w", err)
	}
	low, err := parsePrice(b.Low)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("low: %w", err)
	}
	closePrice, err := parsePrice(b.Close)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("close: %w", err)
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(b.Volume), 10, 64)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("volume: %w", err)
	}
	if volume < 0 {
		return model.PriceBar{}, fmt.Errorf("volume: negative value %d", volume)
	}

	return model.PriceBar{
		TradeDate: tradeDate,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

// MapDailySeries converts a daily series to price bars whose trade date falls
// within [start, end] (inclusive, compared by calendar day), sorted ascending.
// Every row is converted before filtering, so a malformed row anywhere in the
// response fails the call.
func MapDailySeries(resp *DailySeriesResponse, start, end time.Time) ([]model.PriceBar, error) {
	if resp == nil || resp.TimeSeries == nil {
		return nil, &ProviderError{Function: FunctionTimeSeriesDaily, Message: fmt.Sprintf("missing %q in response", dailySeriesKey)}
	}

	start, end = model.DateOf(start), model.DateOf(end)

	bars := make([]model.PriceBar, 0, len(resp.TimeSeries))
	for day, raw := range resp.TimeSeries {
		tradeDate, err := model.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("parse trade date %q: %w", day, err)
		}

		bar, err := raw.ToPriceBar(tradeDate)
		if err != nil {
			return nil, fmt.Errorf("convert bar %s: %w", day, err)
		}

		if tradeDate.Before(start) || tradeDate.After(end) {
			continue
		}
		bars = append(bars, bar)
	}

	slices.SortFunc(bars, func(a, b model.PriceBar) int {
		return a.TradeDate.Compare(b.TradeDate)
	})

	return bars, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(pricePlaces), nil
}
