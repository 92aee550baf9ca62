package api

import (
	"context"
	"encoding/json"
)

// GetDailySeries fetches daily OHLCV history for symbol.
func (c *Client) GetDailySeries(ctx context.Context, symbol string, size OutputSize) (series *DailySeriesResponse, err error) {
	defer func() { c.observe(FunctionTimeSeriesDaily, err) }()

	if size == "" {
		size = OutputCompact
	}

	params := map[string]string{
		"symbol":     symbol,
		"outputsize": string(size),
	}

	body, err := c.doRequest(ctx, FunctionTimeSeriesDaily, symbol, params)
	if err != nil {
		return nil, err
	}

	if _, err := requireField(FunctionTimeSeriesDaily, symbol, body, dailySeriesKey); err != nil {
		return nil, err
	}

	var resp DailySeriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Function: FunctionTimeSeriesDaily, Symbol: symbol, Message: "decode time series", Err: err}
	}
	if resp.TimeSeries == nil {
		resp.TimeSeries = map[string]DailyBar{}
	}

	return &resp, nil
}
