package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rickgao/market-ingest/internal/ratelimit"
	"github.com/rickgao/market-ingest/internal/version"
)

// DefaultBaseURL is the production Alpha Vantage host.
const DefaultBaseURL = "https://www.alphavantage.co"

// Limiter gates outbound requests. *ratelimit.FixedWindow satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RequestObserver is notified once per provider call with its outcome.
type RequestObserver interface {
	ObserveRequest(function string, err error)
}

// Client provides access to the Alpha Vantage query API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rest       *resty.Client
	limiter    Limiter
	observer   RequestObserver
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new API client. All requests made through the client
// share limiter; a nil limiter gets the provider's default quota.
func NewClient(baseURL, apiKey string, limiter Limiter, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = ratelimit.New(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}

	c.rest = resty.NewWithClient(c.httpClient).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver reports every request outcome to o.
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

func (c *Client) observe(function string, err error) {
	if c.observer != nil {
		c.observer.ObserveRequest(function, err)
	}
}
