package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Stage is a step of the per-symbol state machine.
type Stage string

const (
	StageResolving  Stage = "resolving"
	StageFetching   Stage = "fetching"
	StageMapping    Stage = "mapping"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Status is the outcome of one symbol.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped" // Operator-actionable, not an error
	StatusFailed  Status = "failed"
)

// Pipeline names the run that produced a Result.
type Pipeline string

const (
	PipelineNews     Pipeline = "news"
	PipelineBackfill Pipeline = "backfill"
	PipelineUpdate   Pipeline = "update"
)

// Skip reasons.
const (
	ReasonNoHistory  = "no price history, run backfill first"
	ReasonUpToDate   = "already up to date"
	ReasonNoNewRows = "no new rows"
)

// Result is the outcome of one symbol's run.
type Result struct {
	Symbol   string
	Pipeline Pipeline
	Stage    Stage // StageDone or StageFailed once finished
	FailedAt Stage // Stage that failed; empty unless Status is StatusFailed
	Status   Status
	Rows     int    // Rows written
	Dropped  int    // Records rejected by the mapper
	Reason   string // Why the symbol was skipped
	Err      error
	Duration time.Duration
}

func (r *Result) fail(err error) {
	r.FailedAt = r.Stage
	r.Stage = StageFailed
	r.Status = StatusFailed
	r.Err = err
}

func (r *Result) skip(reason string) {
	r.Stage = StageDone
	r.Status = StatusSkipped
	r.Reason = reason
}

func (r *Result) done(rows int) {
	r.Stage = StageDone
	r.Status = StatusDone
	r.Rows = rows
}

// Observer receives every finished Result.
type Observer interface {
	ObserveResult(Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) ObserveResult(r Result) {
	f(r)
}

type nopObserver struct{}

func (nopObserver) ObserveResult(Result) {}

// report logs r and hands it to obs.
func report(logger *slog.Logger, obs Observer, r Result) Result {
	attrs := []any{
		"pipeline", r.Pipeline,
		"symbol", r.Symbol,
		"status", r.Status,
		"rows", r.Rows,
		"duration", r.Duration,
	}
	if r.Dropped > 0 {
		attrs = append(attrs, "dropped", r.Dropped)
	}

	switch r.Status {
	case StatusFailed:
		attrs = append(attrs, "stage", r.FailedAt, "error", r.Err)
		logger.Error("symbol failed", attrs...)
	case StatusSkipped:
		attrs = append(attrs, "reason", r.Reason)
		logger.Warn("symbol skipped", attrs...)
	default:
		logger.Info("symbol loaded", attrs...)
	}

	obs.ObserveResult(r)
	return r
}

// Summary aggregates a batch of results.
type Summary struct {
	Done    int
	Skipped int
	Failed  int
	Rows    int
	Dropped int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusDone:
			s.Done++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		s.Rows += r.Rows
		s.Dropped += r.Dropped
	}
	return s
}

// FailedErr joins the errors of every failed result, or returns nil when
// nothing failed.
func FailedErr(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.Pipeline, r.Symbol, r.Err))
		}
	}
	return errors.Join(errs...)
}
