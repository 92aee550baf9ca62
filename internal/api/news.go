package api

import (
	"context"
	"encoding/json"
	"strconv"
)

// GetNewsFeed fetches up to limit news items mentioning symbol.
// A limit <= 0 leaves the provider default in place.
func (c *Client) GetNewsFeed(ctx context.Context, symbol string, limit int) (items []FeedItem, err error) {
	defer func() { c.observe(FunctionNewsSentiment, err) }()

	params := map[string]string{
		"tickers": symbol,
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	body, err := c.doRequest(ctx, FunctionNewsSentiment, symbol, params)
	if err != nil {
		return nil, err
	}

	if _, err := requireField(FunctionNewsSentiment, symbol, body, feedKey); err != nil {
		return nil, err
	}

	var resp NewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Function: FunctionNewsSentiment, Symbol: symbol, Message: "decode feed", Err: err}
	}

	return resp.Feed, nil
}
