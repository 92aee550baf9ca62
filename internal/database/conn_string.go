package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/market-ingest/internal/config"
)

// ApplicationName is reported to the server as application_name.
const ApplicationName = "market-ingest"

// BuildConnString builds a PostgreSQL connection URL from config.
// User and password are percent-encoded, IPv6 hosts are bracketed.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
		RawQuery: url.Values{
			"sslmode":          {sslMode},
			"application_name": {ApplicationName},
		}.Encode(),
	}

	return u.String()
}
