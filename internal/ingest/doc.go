// Package ingest runs the news and price pipelines for a list of symbols.
//
// Each symbol moves through the stages
//
//	Resolving → Fetching → Mapping → Persisting → Done
//
// and lands in Failed when any stage errors. Symbols are processed one at a
// time in the order given; a failure aborts only the symbol it belongs to.
// Every symbol produces exactly one Result, which is logged and handed to the
// configured Observer.
//
// Price loading has two modes:
//   - Backfill fetches the full history and keeps bars in [start, end].
//   - Update extends stored history from the day after the latest stored
//     trade date through yesterday. A symbol with no stored history, or one
//     that is already current, is skipped without a provider call.
package ingest
