package monitor

import (
	"sort"
	"sync"
	"sync/atomic"
)

// ErrorRateTracker keeps per-route success/failure tallies for the life of
// the process. Counters only grow; there is no eviction.
type ErrorRateTracker struct {
	routes sync.Map // route -> *routeCounters
}

type routeCounters struct {
	success atomic.Int64
	failure atomic.Int64
}

// RouteStats is a point-in-time view of one route's tallies
type RouteStats struct {
	Route     string  `json:"route"`
	Success   int64   `json:"success"`
	Failure   int64   `json:"failure"`
	ErrorRate float64 `json:"error_rate"`
}

// NewErrorRateTracker creates an empty tracker
func NewErrorRateTracker() *ErrorRateTracker {
	return &ErrorRateTracker{}
}

// Record counts one completed request
func (t *ErrorRateTracker) Record(route string, success bool) {
	v, _ := t.routes.LoadOrStore(route, &routeCounters{})
	c := v.(*routeCounters)
	if success {
		c.success.Add(1)
	} else {
		c.failure.Add(1)
	}
}

// Snapshot returns the tallies for one route
func (t *ErrorRateTracker) Snapshot(route string) RouteStats {
	stats := RouteStats{Route: route}
	v, ok := t.routes.Load(route)
	if !ok {
		return stats
	}
	c := v.(*routeCounters)
	stats.Success = c.success.Load()
	stats.Failure = c.failure.Load()
	if total := stats.Success + stats.Failure; total > 0 {
		stats.ErrorRate = float64(stats.Failure) / float64(total)
	}
	return stats
}

// All returns tallies for every route seen, sorted by route
func (t *ErrorRateTracker) All() []RouteStats {
	var routes []string
	t.routes.Range(func(key, _ any) bool {
		routes = append(routes, key.(string))
		return true
	})
	sort.Strings(routes)

	out := make([]RouteStats, 0, len(routes))
	for _, r := range routes {
		out = append(out, t.Snapshot(r))
	}
	return out
}
