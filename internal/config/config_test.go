package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable applyEnv consults so tests are hermetic.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, EnvDBHost, EnvDBPort, EnvDBName, EnvDBUser, EnvDBPassword, EnvDBSSLMode} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	yaml := `
api:
  base_url: https://av.example.com
  api_key: demo
  timeout: 15s
  calls_per_window: 75
  window: 1m
database:
  host: localhost
  port: 5433
  name: market
  user: ingest
  password: testpass
ingest:
  news_symbols: [MSFT, NVDA]
  news_limit: 20
metrics:
  pushgateway_url: http://pushgateway:9091
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://av.example.com" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://av.example.com")
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 15*time.Second)
	}
	if cfg.API.CallsPerWindow != 75 {
		t.Errorf("API.CallsPerWindow = %d, want 75", cfg.API.CallsPerWindow)
	}
	if cfg.API.Window != time.Minute {
		t.Errorf("API.Window = %v, want %v", cfg.API.Window, time.Minute)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Database.Port = %d, want 5433", cfg.Database.Port)
	}
	if len(cfg.Ingest.NewsSymbols) != 2 || cfg.Ingest.NewsSymbols[1] != "NVDA" {
		t.Errorf("Ingest.NewsSymbols = %v, want [MSFT NVDA]", cfg.Ingest.NewsSymbols)
	}
	if cfg.Metrics.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("Metrics.PushgatewayURL = %q", cfg.Metrics.PushgatewayURL)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.API.APIKey != "" || cfg.Database.Host != "" {
		t.Errorf("Load(\"\") = %+v, want zero config", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: market
  user: ingest
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)
	yaml := `
api:
  api_key: demo
database:
  host: localhost
  name: market
  user: ingest
  password: testpass
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.API.CallsPerWindow != DefaultCallsPerWindow {
		t.Errorf("API.CallsPerWindow = %d, want default %d", cfg.API.CallsPerWindow, DefaultCallsPerWindow)
	}
	if cfg.API.Window != DefaultWindow {
		t.Errorf("API.Window = %v, want default %v", cfg.API.Window, DefaultWindow)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Ingest.NewsLimit != DefaultNewsLimit {
		t.Errorf("Ingest.NewsLimit = %d, want default %d", cfg.Ingest.NewsLimit, DefaultNewsLimit)
	}
	if len(cfg.Ingest.NewsSymbols) != 3 || cfg.Ingest.NewsSymbols[0] != "AAPL" {
		t.Errorf("Ingest.NewsSymbols = %v, want %v", cfg.Ingest.NewsSymbols, DefaultNewsSymbols)
	}
	if cfg.Ingest.BackfillStart != DefaultBackfillStart {
		t.Errorf("Ingest.BackfillStart = %q, want default %q", cfg.Ingest.BackfillStart, DefaultBackfillStart)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v, want defaults", cfg.Log)
	}
}

func TestLoadWithDefaults_EnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvDBHost, "db.internal")
	t.Setenv(EnvDBPort, "6432")
	t.Setenv(EnvDBName, "market")
	t.Setenv(EnvDBUser, "ingest")
	t.Setenv(EnvDBPassword, "pw")

	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.API.APIKey != "env-key" {
		t.Errorf("API.APIKey = %q, want env-key", cfg.API.APIKey)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 6432 {
		t.Errorf("Database = %s:%d, want db.internal:6432", cfg.Database.Host, cfg.Database.Port)
	}
}

func TestLoadWithDefaults_FileWinsOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "env-key")

	path := writeTempFile(t, "config.yaml", "api:\n  api_key: file-key\n")
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.API.APIKey != "file-key" {
		t.Errorf("API.APIKey = %q, want file-key", cfg.API.APIKey)
	}
}

func TestLoadWithDefaults_BadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBPort, "not-a-port")

	if _, err := LoadWithDefaults(""); err == nil {
		t.Error("LoadWithDefaults() expected error for bad DB_PORT")
	}
}

func TestLoadAndValidate_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBHost, "localhost")
	t.Setenv(EnvDBName, "market")
	t.Setenv(EnvDBUser, "ingest")
	t.Setenv(EnvDBPassword, "pw")

	_, err := LoadAndValidate("")
	if err == nil {
		t.Fatal("LoadAndValidate() expected error without API key")
	}
	want := "validate config: api.api_key is required (set ALPHAVANTAGE_API_KEY)"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "MARKET_INGEST_DOTENV_TEST"
	const kept = "MARKET_INGEST_DOTENV_KEPT"
	t.Setenv(key, "")
	os.Unsetenv(key)
	t.Setenv(kept, "from-process")

	path := writeTempFile(t, ".env", key+"=from-file\n"+kept+"=from-file\n")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}
	if got := os.Getenv(kept); got != "from-process" {
		t.Errorf("%s = %q, want from-process (not overridden)", kept, got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API: APIConfig{
				BaseURL:        DefaultBaseURL,
				APIKey:         "key",
				Timeout:        time.Second,
				CallsPerWindow: 5,
				Window:         time.Minute,
			},
			Database: DBConfig{Host: "localhost", Port: 5432, Name: "db", User: "user", Password: "pass", MaxConns: 4},
			Ingest: IngestConfig{
				NewsSymbols:   []string{"AAPL"},
				PriceSymbols:  []string{"AAPL"},
				NewsLimit:     50,
				BackfillStart: "2020-01-01",
			},
			Log: LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.API.APIKey = "" },
			wantErr: "api.api_key is required (set ALPHAVANTAGE_API_KEY)",
		},
		{
			name:    "zero quota",
			mutate:  func(c *Config) { c.API.CallsPerWindow = 0 },
			wantErr: "api.calls_per_window must be >= 1",
		},
		{
			name:    "missing database host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host is required",
		},
		{
			name:    "missing database password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantErr: "database.password is required",
		},
		{
			name:    "min_conns exceeds max_conns",
			mutate:  func(c *Config) { c.Database.MinConns = 10 },
			wantErr: "database.min_conns (10) cannot exceed max_conns (4)",
		},
		{
			name:    "bad backfill start",
			mutate:  func(c *Config) { c.Ingest.BackfillStart = "01/01/2020" },
			wantErr: `ingest.backfill_start must be YYYY-MM-DD, got "01/01/2020"`,
		},
		{
			name:    "blank symbol",
			mutate:  func(c *Config) { c.Ingest.PriceSymbols = []string{"AAPL", " "} },
			wantErr: "ingest symbols must not be empty",
		},
		{
			name: "pushgateway without job",
			mutate: func(c *Config) {
				c.Metrics.PushgatewayURL = "http://localhost:9091"
				c.Metrics.Job = ""
			},
			wantErr: "metrics.job is required when metrics.pushgateway_url is set",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: `log.level must be one of debug, info, warn, error, got "verbose"`,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `log.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
