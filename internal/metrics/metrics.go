package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/rickgao/market-ingest/internal/api"
	"github.com/rickgao/market-ingest/internal/ingest"
)

// Namespace prefixes every metric name.
const Namespace = "market_ingest"

// Request outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeProvider  = "provider_error"
	OutcomeOther     = "error"
)

// Recorder collects run metrics in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	Symbols       *prometheus.CounterVec
	Rows          *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	ThrottleWaits prometheus.Counter
	ThrottleTime  prometheus.Counter
	SymbolSeconds *prometheus.HistogramVec
	LastRun       prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Symbols: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "symbols_total",
				Help:      "Symbols processed, by pipeline and status",
			},
			[]string{"pipeline", "status"},
		),
		Rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rows_written_total",
				Help:      "Rows upserted, by pipeline",
			},
			[]string{"pipeline"},
		),
		Dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_dropped_total",
				Help:      "Provider records rejected by the mappers, by pipeline",
			},
			[]string{"pipeline"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "api_requests_total",
				Help:      "Provider requests, by function and outcome",
			},
			[]string{"function", "outcome"},
		),
		ThrottleWaits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "throttle_waits_total",
				Help:      "Times the rate limiter blocked a request",
			},
		),
		ThrottleTime: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "throttle_wait_seconds_total",
				Help:      "Time spent blocked by the rate limiter",
			},
		),
		SymbolSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "symbol_duration_seconds",
				Help:      "Wall time per symbol, including rate limiter waits",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~3.4min
			},
			[]string{"pipeline"},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
	}
}

// Registry returns the registry holding the run's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveResult counts one finished symbol.
func (r *Recorder) ObserveResult(res ingest.Result) {
	pipeline := string(res.Pipeline)
	r.Symbols.WithLabelValues(pipeline, string(res.Status)).Inc()
	r.Rows.WithLabelValues(pipeline).Add(float64(res.Rows))
	r.Dropped.WithLabelValues(pipeline).Add(float64(res.Dropped))
	r.SymbolSeconds.WithLabelValues(pipeline).Observe(res.Duration.Seconds())
}

// ObserveRequest counts one provider call.
func (r *Recorder) ObserveRequest(function string, err error) {
	r.Requests.WithLabelValues(function, outcome(err)).Inc()
}

// ObserveThrottle records one rate limiter wait of d.
func (r *Recorder) ObserveThrottle(d time.Duration) {
	r.ThrottleWaits.Inc()
	r.ThrottleTime.Add(d.Seconds())
}

// Push stamps the last-run gauge and pushes every collector to the
// Pushgateway at url under job, replacing the job's previous metrics.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	r.LastRun.SetToCurrentTime()
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var transport *api.TransportError
	if errors.As(err, &transport) {
		return OutcomeTransport
	}
	var provider *api.ProviderError
	if errors.As(err, &provider) {
		return OutcomeProvider
	}
	return OutcomeOther
}
