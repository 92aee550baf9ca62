// Package database provides the PostgreSQL connection pool for the ingest jobs.
//
// A single pool serves a whole run. Callers acquire connections implicitly per
// statement or per transaction and release them on every exit path.
package database
