package config

import "time"

// Config is the root configuration for the ingest jobs.
type Config struct {
	API      APIConfig     `yaml:"api"`
	Database DBConfig      `yaml:"database"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Log      LogConfig     `yaml:"log"`
}

// APIConfig holds Alpha Vantage settings.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	CallsPerWindow int           `yaml:"calls_per_window"` // provider quota per key
	Window         time.Duration `yaml:"window"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// IngestConfig holds pipeline defaults. CLI arguments take precedence.
type IngestConfig struct {
	NewsSymbols   []string `yaml:"news_symbols"`
	PriceSymbols  []string `yaml:"price_symbols"`
	NewsLimit     int      `yaml:"news_limit"`
	BackfillStart string   `yaml:"backfill_start"` // YYYY-MM-DD
}

// MetricsConfig holds Prometheus Pushgateway settings. Pushing is disabled
// when PushgatewayURL is empty.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LogConfig holds slog handler settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
