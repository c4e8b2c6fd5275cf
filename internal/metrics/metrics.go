package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the domain counters and HTTP instruments of the service.
// It satisfies list.Recorder and listitem.Recorder.
type Metrics struct {
	ListsCreated  *prometheus.CounterVec
	ListShares    prometheus.Counter
	Completions   *prometheus.CounterVec
	ItemsReset    prometheus.Counter
	ItemChecks    *prometheus.CounterVec
	RemindersSent prometheus.Counter

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every metric on reg. Passing prometheus.DefaultRegisterer
// shares the process-wide registry with package-level collectors.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ListsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_lists_created_total",
			Help: "Total number of shopping lists created",
		}, []string{"type"}),
		ListShares: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopping_list_shares_total",
			Help: "Total number of users a list was shared with",
		}),
		Completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_completions_total",
			Help: "Total number of completed shopping runs",
		}, []string{"type"}),
		ItemsReset: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopping_items_reset_total",
			Help: "Items unchecked when a permanent list was completed",
		}),
		ItemChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_item_checks_total",
			Help: "Item check state changes",
		}, []string{"state"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopping_reminders_sent_total",
			Help: "Shopping reminders delivered to list owners",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopping_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: gatherer,
	}
}

func (m *Metrics) ListCreated(listType string) {
	m.ListsCreated.WithLabelValues(listType).Inc()
}

func (m *Metrics) ListShared(count int) {
	m.ListShares.Add(float64(count))
}

func (m *Metrics) ShoppingCompleted(listType string, resetCount int64) {
	m.Completions.WithLabelValues(listType).Inc()
	m.ItemsReset.Add(float64(resetCount))
}

func (m *Metrics) ItemChecked(checked bool) {
	state := "unchecked"
	if checked {
		state = "checked"
	}
	m.ItemChecks.WithLabelValues(state).Inc()
}

func (m *Metrics) ReminderSent() {
	m.RemindersSent.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so ids in the path do not create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
