package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables consulted when the config file leaves a field empty.
const (
	EnvAPIKey     = "ALPHAVANTAGE_API_KEY"
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBName     = "DB_NAME"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBSSLMode  = "DB_SSLMODE"
)

func (c *Config) applyEnv() error {
	fromEnv(&c.API.APIKey, EnvAPIKey)
	fromEnv(&c.Database.Host, EnvDBHost)
	fromEnv(&c.Database.Name, EnvDBName)
	fromEnv(&c.Database.User, EnvDBUser)
	fromEnv(&c.Database.Password, EnvDBPassword)
	fromEnv(&c.Database.SSLMode, EnvDBSSLMode)

	if c.Database.Port == 0 {
		if v := os.Getenv(EnvDBPort); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", EnvDBPort, err)
			}
			c.Database.Port = port
		}
	}

	return nil
}

func fromEnv(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
