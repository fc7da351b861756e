// Package monitor times store queries and whole requests, warns when a
// request approaches its latency budget and keeps per-route error tallies.
package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configures the latency budget
type Options struct {
	Target    time.Duration // latency budget per request
	WarnRatio float64       // fraction of Target above which a warning is emitted
	Clock     func() time.Time
}

// Monitor is process-wide and hands out one Tracker per request
type Monitor struct {
	target  time.Duration
	warnAt  time.Duration
	errors  *ErrorRateTracker
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a monitor. metrics may be nil.
func New(opts Options, metrics *Metrics, logger *zap.Logger) *Monitor {
	if opts.Target <= 0 {
		opts.Target = 100 * time.Millisecond
	}
	if opts.WarnRatio <= 0 {
		opts.WarnRatio = 0.8
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		target:  opts.Target,
		warnAt:  time.Duration(float64(opts.Target) * opts.WarnRatio),
		errors:  NewErrorRateTracker(),
		metrics: metrics,
		logger:  logger,
		now:     opts.Clock,
	}
}

// ErrorRates exposes the process-wide tallies
func (m *Monitor) ErrorRates() *ErrorRateTracker {
	return m.errors
}

// Begin starts tracking one request on route
func (m *Monitor) Begin(route string) *Tracker {
	return &Tracker{
		m:      m,
		route:  route,
		start:  m.now(),
		timers: make(map[string]time.Time),
	}
}

// Result is the timing summary of a completed request
type Result struct {
	ResponseTime time.Duration
	QueryTime    time.Duration
}

// Tracker is request scoped. Timers may run concurrently.
type Tracker struct {
	m     *Monitor
	route string
	start time.Time

	mu        sync.Mutex
	timers    map[string]time.Time
	queryTime time.Duration
	done      bool
	result    Result
}

// StartTimer starts timing the named sub-query
func (t *Tracker) StartTimer(name string) {
	now := t.m.now()
	t.mu.Lock()
	t.timers[name] = now
	t.mu.Unlock()
}

// EndTimer stops the named timer, adds it to the query total and returns its duration.
// Unknown names return 0.
func (t *Tracker) EndTimer(name string) time.Duration {
	now := t.m.now()
	t.mu.Lock()
	started, ok := t.timers[name]
	if !ok {
		t.mu.Unlock()
		return 0
	}
	delete(t.timers, name)
	d := now.Sub(started)
	t.queryTime += d
	t.mu.Unlock()

	t.m.metrics.observeQuery(name, d)
	return d
}

// Measure times fn as the named sub-query
func (t *Tracker) Measure(name string, fn func() error) error {
	t.StartTimer(name)
	defer t.EndTimer(name)
	return fn()
}

// QueryTime returns the accumulated store time so far
func (t *Tracker) QueryTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queryTime
}

// Complete finalizes the request. It records the outcome, warns when the
// response time is past the warning threshold and returns the timings.
// Later calls return the first result.
func (t *Tracker) Complete(status int, message string, metadata map[string]any) Result {
	now := t.m.now()
	t.mu.Lock()
	if t.done {
		r := t.result
		t.mu.Unlock()
		return r
	}
	t.done = true
	t.result = Result{ResponseTime: now.Sub(t.start), QueryTime: t.queryTime}
	r := t.result
	t.mu.Unlock()

	success := status < 400
	slow := r.ResponseTime > t.m.warnAt

	t.m.errors.Record(t.route, success)
	t.m.metrics.observeRequest(t.route, status, r.ResponseTime, success, slow)

	fields := []zap.Field{
		zap.String("route", t.route),
		zap.Int("status", status),
		zap.Duration("response_time", r.ResponseTime),
		zap.Duration("query_time", r.QueryTime),
	}
	if message != "" {
		fields = append(fields, zap.String("message", message))
	}
	if len(metadata) > 0 {
		fields = append(fields, zap.Any("metadata", metadata))
	}

	if slow {
		t.m.logger.Warn("request approaching latency budget",
			append(fields, zap.Duration("target", t.m.target), zap.Duration("warn_threshold", t.m.warnAt))...)
	} else {
		t.m.logger.Debug("request completed", fields...)
	}
	return r
}
