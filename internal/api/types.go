package api

// Provider function names.
const (
	FunctionNewsSentiment   = "NEWS_SENTIMENT"
	FunctionTimeSeriesDaily = "TIME_SERIES_DAILY"
)

// Top-level response keys.
const (
	feedKey        = "feed"
	dailySeriesKey = "Time Series (Daily)"
)

// OutputSize selects how much history TIME_SERIES_DAILY returns.
type OutputSize string

const (
	OutputCompact OutputSize = "compact" // latest 100 data points
	OutputFull    OutputSize = "full"    // full history
)

// FeedItem is one entry of the NEWS_SENTIMENT feed.
type FeedItem struct {
	Title                 string   `json:"title"`
	URL                   string   `json:"url"`
	TimePublished         string   `json:"time_published"` // "20251203T134500"
	Authors               []string `json:"authors"`
	Summary               string   `json:"summary"`
	Source                string   `json:"source"`
	SourceDomain          string   `json:"source_domain"`
	OverallSentimentLabel string   `json:"overall_sentiment_label"`
}

// NewsResponse from function=NEWS_SENTIMENT
type NewsResponse struct {
	Feed []FeedItem `json:"feed"`
}

// SeriesMetaData is the "Meta Data" block of a time series response.
type SeriesMetaData struct {
	Information   string `json:"1. Information"`
	Symbol        string `json:"2. Symbol"`
	LastRefreshed string `json:"3. Last Refreshed"`
	OutputSize    string `json:"4. Output Size"`
	TimeZone      string `json:"5. Time Zone"`
}

// DailyBar is one day of TIME_SERIES_DAILY. Values arrive as strings.
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// DailySeriesResponse from function=TIME_SERIES_DAILY, keyed by "YYYY-MM-DD".
type DailySeriesResponse struct {
	MetaData   SeriesMetaData      `json:"Meta Data"`
	TimeSeries map[string]DailyBar `json:"Time Series (Daily)"`
}
