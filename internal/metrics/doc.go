// Package metrics records Prometheus metrics for one ingest run.
//
// Key metrics:
//   - Symbols processed, by pipeline and status
//   - Rows written and records dropped by the mappers
//   - Provider requests by function and outcome
//   - Rate limiter waits and time spent waiting
//
// A batch job does not live long enough to be scraped, so the collected
// metrics are pushed to a Pushgateway when the run ends.
package metrics
