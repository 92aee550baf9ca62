package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TransportError is a network failure or an HTTP error status from the provider.
type TransportError struct {
	Function   string
	Symbol     string
	StatusCode int // 0 when no response was received
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("alphavantage %s %s: http %d %s", e.Function, e.Symbol, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("alphavantage %s %s: %v", e.Function, e.Symbol, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError is a response body that signals an upstream error or does
// not have the expected shape.
type ProviderError struct {
	Function string
	Symbol   string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("alphavantage %s %s: %s: %v", e.Function, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("alphavantage %s %s: %s", e.Function, e.Symbol, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Keys the provider uses instead of data when a call is rejected.
var providerMessageKeys = []string{"Error Message", "Note", "Information"}

// doRequest waits for the limiter and performs GET /query.
func (c *Client) doRequest(ctx context.Context, function, symbol string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	query := make(map[string]string, len(params)+2)
	for k, v := range params {
		query[k] = v
	}
	query["function"] = function
	query["apikey"] = c.apiKey

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get("/query")
	if err != nil {
		return nil, &TransportError{Function: function, Symbol: symbol, Err: err}
	}

	c.logger.Debug("provider request",
		"function", function,
		"symbol", symbol,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)

	if resp.StatusCode() >= 400 {
		return nil, &TransportError{
			Function:   function,
			Symbol:     symbol,
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
		}
	}

	return resp.Body(), nil
}

// requireField checks that body is a JSON object holding key and returns the
// raw value. A missing key is reported with the provider's message if it sent one.
func requireField(function, symbol string, body []byte, key string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &ProviderError{Function: function, Symbol: symbol, Message: "response is not a JSON object", Err: err}
	}

	if raw, ok := fields[key]; ok {
		return raw, nil
	}

	for _, k := range providerMessageKeys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil || msg == "" {
			msg = string(raw)
		}
		return nil, &ProviderError{Function: function, Symbol: symbol, Message: k + ": " + msg}
	}

	return nil, &ProviderError{Function: function, Symbol: symbol, Message: fmt.Sprintf("missing %q in response", key)}
}
