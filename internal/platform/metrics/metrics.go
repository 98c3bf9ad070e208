// Package metrics holds the Prometheus collectors shared by the catalog services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_catalog_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_catalog_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "media_catalog_circuit_breaker_state",
		Help: "Circuit breaker state by component (1 for the active state, 0 otherwise)",
	}, []string{"component", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_catalog_circuit_breaker_trips_total",
		Help: "Transitions of a circuit breaker into the open state",
	}, []string{"component"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_catalog_list_cache_lookups_total",
		Help: "List cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "media_catalog_ui_sessions",
		Help: "Live catalog UI sessions",
	})

	listLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_catalog_ui_page_loads_total",
		Help: "Page loads issued by the list controller by kind (initial, next) and outcome",
	}, []string{"kind", "outcome"})
)

var breakerStates = []string{"closed", "half-open", "open"}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// SetBreakerState marks state as the active breaker state for component.
func SetBreakerState(component, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		breakerState.WithLabelValues(component, s).Set(v)
	}
	if state == "open" {
		breakerTrips.WithLabelValues(component).Inc()
	}
}

func CacheHit() { cacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }
func CacheError() { cacheLookups.WithLabelValues("error").Inc() }

func SetSessions(n int) { activeSessions.Set(float64(n)) }

// PageLoad counts one list controller load. kind is "initial" or "next".
func PageLoad(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	listLoads.WithLabelValues(kind, outcome).Inc()
}
