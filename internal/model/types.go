package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by the provider and the CLI.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Relational Types
// -----------------------------------------------------------------------------

// Company is a listed company. Rows are managed outside the pipeline.
type Company struct {
	ID     int64  // company_id
	Name   string // company_name
	Ticker string // stock_ticker, unique (e.g., "AAPL")
}

// Article is a news article. URL is the natural key; every other field may
// change between sightings.
type Article struct {
	ID          int64     // article_id, 0 until stored
	Title       string    // Trimmed headline
	Summary     string    // Trimmed summary, may be empty
	PublishedAt time.Time // Publication time (UTC)
	URL         string    // Unique source URL
	Source      string    // Publisher name (source_location), may be empty
}

// ArticleCompanyLink joins an article to a company. At most one per pair.
type ArticleCompanyLink struct {
	ArticleID int64
	CompanyID int64
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// PriceBar is one daily OHLCV bar. (CompanyID, TradeDate) is the natural key.
type PriceBar struct {
	CompanyID int64           // Set by the store; zero from the mapper
	TradeDate time.Time       // Midnight UTC
	Open      decimal.Decimal // 2 decimal places
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64 // Non-negative
}

// Date returns midnight UTC on the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock component of t, keeping t's calendar day in its own
// location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Yesterday returns the calendar day before now's day.
func Yesterday(now time.Time) time.Time {
	return DateOf(now).AddDate(0, 0, -1)
}
