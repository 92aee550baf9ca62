package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/market-ingest/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return fmt.Errorf("api.api_key is required (set %s)", EnvAPIKey)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	if c.API.CallsPerWindow < 1 {
		return errors.New("api.calls_per_window must be >= 1")
	}
	if c.API.Window <= 0 {
		return errors.New("api.window must be > 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Ingest.NewsLimit < 1 {
		return errors.New("ingest.news_limit must be >= 1")
	}
	if _, err := model.ParseDate(c.Ingest.BackfillStart); err != nil {
		return fmt.Errorf("ingest.backfill_start must be YYYY-MM-DD, got %q", c.Ingest.BackfillStart)
	}
	for _, s := range append(append([]string(nil), c.Ingest.NewsSymbols...), c.Ingest.PriceSymbols...) {
		if strings.TrimSpace(s) == "" {
			return errors.New("ingest symbols must not be empty")
		}
	}

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return errors.New("metrics.job is required when metrics.pushgateway_url is set")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
