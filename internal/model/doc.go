// Package model defines the shared data types used across the ingest pipeline.
//
// All types mirror the relational schema (company, article, articlecompanylink,
// pricehistory).
//
// Conventions:
//   - Prices: decimal.Decimal rounded to 2 places (NUMERIC(12,2) columns)
//   - Trade dates: time.Time at midnight UTC, see Date and DateOf
//   - Timestamps: time.Time in UTC
//   - IDs: int64 surrogate keys assigned by the database
package model
