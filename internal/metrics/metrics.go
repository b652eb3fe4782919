package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Customer creation sources.
const (
	SourceExplicit = "explicit" // POST /customers
	SourceImplicit = "implicit" // find-or-create during pass registration
)

// Recorder collects service and HTTP metrics.
type Recorder interface {
	// PassCreated counts a pass by date shape. Pass types are free-form and
	// never become label values.
	PassCreated(singleDay bool)
	CustomerCreated(source string)
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type promRecorder struct {
	passesCreated    *prometheus.CounterVec
	customersCreated *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers the service metrics on registry.
func New(registry prometheus.Registerer) Recorder {
	factory := promauto.With(registry)
	return &promRecorder{
		passesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edenpasses_passes_created_total",
				Help: "The total number of created passes",
			},
			[]string{"shape"},
		),
		customersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edenpasses_customers_created_total",
				Help: "The total number of created customers",
			},
			[]string{"source"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edenpasses_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edenpasses_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (r *promRecorder) PassCreated(singleDay bool) {
	shape := "range"
	if singleDay {
		shape = "single_day"
	}
	r.passesCreated.WithLabelValues(shape).Inc()
}

func (r *promRecorder) CustomerCreated(source string) {
	r.customersCreated.WithLabelValues(source).Inc()
}

func (r *promRecorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

type nopRecorder struct{}

// Nop discards everything.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) PassCreated(bool) {}
func (nopRecorder) CustomerCreated(string) {}
func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}
