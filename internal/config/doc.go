// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file, when present, is loaded into the environment first. Fields left
// empty by the file fall back to the process environment:
//
//	ALPHAVANTAGE_API_KEY  api.api_key (required)
//	DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD, DB_SSLMODE  database.*
//
// The config file itself is optional; a deployment may rely on the environment alone.
package config
