package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL        = "https://www.alphavantage.co"
	DefaultAPITimeout     = 30 * time.Second
	DefaultCallsPerWindow = 5
	DefaultWindow         = 60 * time.Second
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 4
	DefaultNewsLimit      = 50
	DefaultBackfillStart  = "2020-01-01"
	DefaultMetricsJob     = "market_ingest"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Default symbol lists used when neither the config nor the CLI names any.
var (
	DefaultNewsSymbols  = []string{"AAPL", "AMZN", "TSLA"}
	DefaultPriceSymbols = []string{"AAPL"}
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.CallsPerWindow == 0 {
		c.API.CallsPerWindow = DefaultCallsPerWindow
	}
	if c.API.Window == 0 {
		c.API.Window = DefaultWindow
	}

	// Database defaults
	applyDBDefaults(&c.Database)

	// Ingest defaults
	if len(c.Ingest.NewsSymbols) == 0 {
		c.Ingest.NewsSymbols = append([]string(nil), DefaultNewsSymbols...)
	}
	if len(c.Ingest.PriceSymbols) == 0 {
		c.Ingest.PriceSymbols = append([]string(nil), DefaultPriceSymbols...)
	}
	if c.Ingest.NewsLimit == 0 {
		c.Ingest.NewsLimit = DefaultNewsLimit
	}
	if c.Ingest.BackfillStart == "" {
		c.Ingest.BackfillStart = DefaultBackfillStart
	}

	// Metrics defaults
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
}
