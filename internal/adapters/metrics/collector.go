// Package metrics records request and backend-call timings as Prometheus series.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Breaker states, mirrored from the circuit breaker so callers need not import it.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Collector owns a private registry and the app's metric vectors.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	slowRequests    *prometheus.CounterVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	sessions        *prometheus.CounterVec
	storeQueries    *prometheus.HistogramVec
	routeOf         func(method, path string) string
}

// OtherRoute labels requests that matched no route.
const OtherRoute = "other"

// NewCollector creates a collector with Go runtime and process metrics registered.
// POST: Returns a ready collector; every series is registered on its own registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gymfront",
			Name:      "http_request_duration_seconds",
			Help:      "Page and action latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		slowRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymfront",
			Name:      "http_slow_requests_total",
			Help:      "Requests slower than the configured threshold.",
		}, []string{"method", "route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymfront",
			Name:      "backend_requests_total",
			Help:      "REST backend calls by resource and outcome.",
		}, []string{"method", "resource", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gymfront",
			Name:      "backend_request_duration_seconds",
			Help:      "REST backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gymfront",
			Name:      "backend_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymfront",
			Name:      "auth_events_total",
			Help:      "Login, logout and guard outcomes.",
		}, []string{"event"}),
		storeQueries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gymfront",
			Name:      "session_store_query_duration_seconds",
			Help:      "Session store query latency by operation.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"op"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requestDuration, c.slowRequests, c.backendCalls, c.backendDuration, c.breakerState, c.sessions, c.storeQueries,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// KnownRoutes sets the lookup from a request path to its route pattern.
// match returns "" for paths no route serves.
// PRE: called before the collector observes requests
func (c *Collector) KnownRoutes(match func(method, path string) string) {
	if c == nil {
		return
	}
	c.routeOf = match
}

// ObserveRequest records one served request. Paths no route matches share OtherRoute.
func (c *Collector) ObserveRequest(method, path string, status int, d time.Duration, slow bool) {
	if c == nil {
		return
	}
	route := Route(path)
	if c.routeOf != nil {
		route = c.routeOf(method, path)
		if route == "" {
			route = OtherRoute
		}
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	if slow {
		c.slowRequests.WithLabelValues(method, route).Inc()
	}
}

// ObserveBackend records one backend call. outcome is a short tag such as "ok", "4xx", "5xx" or "transport".
func (c *Collector) ObserveBackend(method, path, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	resource := Route(path)
	c.backendCalls.WithLabelValues(method, resource, outcome).Inc()
	c.backendDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// SetBreakerState records the current state of a named breaker.
func (c *Collector) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(name).Set(float64(state))
}

// AuthEvent counts an authentication or authorization outcome.
func (c *Collector) AuthEvent(event string) {
	if c == nil {
		return
	}
	c.sessions.WithLabelValues(event).Inc()
}

// ObserveQuery records one session store query.
func (c *Collector) ObserveQuery(op string, d time.Duration) {
	if c == nil {
		return
	}
	c.storeQueries.WithLabelValues(op).Observe(d.Seconds())
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// Route collapses numeric path segments to keep label cardinality bounded.
// "/administrador/clientes/42/editar" becomes "/administrador/clientes/:id/editar".
func Route(path string) string {
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}
