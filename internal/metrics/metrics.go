package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pharmasales"

// Sale outcomes recorded by SaleOutcome.
const (
	OutcomeCompleted         = "completed"
	OutcomeRejected          = "rejected"
	OutcomeStockUpdateFailed = "stock_update_failed"
	OutcomeCompletionFailed  = "completion_failed"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Requests             *prometheus.CounterVec
	LatencyMS            *prometheus.HistogramVec
	Sales                *prometheus.CounterVec
	Cancellations        prometheus.Counter
	CompensationFailures prometheus.Counter
	PendingStale         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Sale creation attempts by outcome.",
		}, []string{"outcome"}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_cancellations_total",
			Help:      "Sales moved to CANCELLED.",
		}),
		CompensationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_compensation_failures_total",
			Help:      "Stock restorations that failed while cancelling a sale.",
		}),
		PendingStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sales_pending_stale",
			Help:      "PENDING sales older than the reconciliation grace period at the last check.",
		}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Sales, m.Cancellations, m.CompensationFailures, m.PendingStale)
	return m
}

func (m *Metrics) SaleOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Sales.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SaleCancelled() {
	if m == nil {
		return
	}
	m.Cancellations.Inc()
}

func (m *Metrics) CompensationFailed() {
	if m == nil {
		return
	}
	m.CompensationFailures.Inc()
}

func (m *Metrics) SetPendingStale(n int) {
	if m == nil {
		return
	}
	m.PendingStale.Set(float64(n))
}

// Middleware counts requests and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// Handler exposes the collectors registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
