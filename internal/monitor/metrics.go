package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors fed by request trackers
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	slowRequests    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	buckets := []float64{.005, .01, .025, .05, .08, .1, .25, .5, 1, 2.5}

	return &Metrics{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agency_directory",
			Name:      "request_duration_seconds",
			Help:      "End-to-end request latency by route and status.",
			Buckets:   buckets,
		}, []string{"route", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agency_directory",
			Name:      "query_duration_seconds",
			Help:      "Store query latency by query name, retries included.",
			Buckets:   buckets,
		}, []string{"query"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency_directory",
			Name:      "requests_total",
			Help:      "Completed requests by route and outcome.",
		}, []string{"route", "outcome"}),
		slowRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency_directory",
			Name:      "slow_requests_total",
			Help:      "Requests that exceeded the latency warning threshold.",
		}, []string{"route"}),
	}
}

func (m *Metrics) observeQuery(name string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration, success, slow bool) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.requests.WithLabelValues(route, outcome).Inc()
	if slow {
		m.slowRequests.WithLabelValues(route).Inc()
	}
}
