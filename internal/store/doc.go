// Package store is the PostgreSQL side of the pipeline: ticker resolution and
// idempotent upserts keyed on natural keys.
//
// Natural keys:
//   - company:            stock_ticker
//   - article:            url
//   - articlecompanylink: (article_id, company_id)
//   - pricehistory:       (company_id, trade_date)
//
// Re-running a write with the same input converges to the same rows. Changed
// field values from the provider overwrite what is stored.
//
// All statements are parameterized. Writes run inside a transaction that is
// committed once or rolled back; the pooled connection is released either way.
package store
