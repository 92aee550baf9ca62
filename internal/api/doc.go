// Package api provides the Alpha Vantage client and the mappers that turn its
// responses into model types.
//
// Endpoint:
//   - https://www.alphavantage.co/query?function=...&apikey=...
//
// Functions used: NEWS_SENTIMENT (news feed), TIME_SERIES_DAILY (OHLCV).
//
// Every request passes through a shared Limiter before it is sent. Failures
// are reported as *TransportError (network or HTTP status) or *ProviderError
// (the body is not the expected shape or carries an upstream message). Nothing
// is retried.
package api
