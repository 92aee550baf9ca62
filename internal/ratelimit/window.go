package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Default quota for the free Alpha Vantage tier.
const (
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second
)

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) {
		l.now = now
	}
}

// WithSleeper replaces the context-aware sleep used while throttled.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *FixedWindow) {
		l.sleep = sleep
	}
}

// WithWaitHook registers a callback invoked before each throttle wait.
func WithWaitHook(fn func(d time.Duration)) Option {
	return func(l *FixedWindow) {
		l.onWait = fn
	}
}

// FixedWindow is a fixed-window call counter. The zero value is not usable;
// create one with New.
type FixedWindow struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	windowStart time.Time
	calls       int

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	onWait func(d time.Duration)
}

// New creates a limiter allowing limit calls per window. Non-positive values
// fall back to the defaults.
func New(limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l := &FixedWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Wait blocks until the caller may issue one request, then records it.
// It returns ctx.Err() if the context ends while throttled; the call is not
// counted in that case.
func (l *FixedWindow) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) > l.window {
		l.calls = 0
	}

	if l.calls >= l.limit {
		if wait := l.window - now.Sub(l.windowStart); wait > 0 {
			if l.onWait != nil {
				l.onWait(wait)
			}
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
		l.calls = 0
	}

	l.windowStart = l.now()
	l.calls++
	return nil
}

// Calls returns the number of calls recorded in the current window.
func (l *FixedWindow) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Limit returns the configured calls per window.
func (l *FixedWindow) Limit() int {
	return l.limit
}

// Window returns the configured window length.
func (l *FixedWindow) Window() time.Duration {
	return l.window
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
