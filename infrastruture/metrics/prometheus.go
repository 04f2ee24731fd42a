// Package metrics exposes pipeline and HTTP measurements to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zkmaze"

var _ i.Metrics = &Prometheus{}

// Prometheus collects metrics on its own registry.
type Prometheus struct {
	registry        *prometheus.Registry
	proveDuration   *prometheus.HistogramVec
	proveFailures   *prometheus.CounterVec
	verdicts        *prometheus.CounterVec
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates and registers every collector. Process and Go runtime
// collectors are included.
func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		proveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "prover",
			Name:      "session_duration_seconds",
			Help:      "Duration of proving sessions.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"program", "profile", "outcome"}),
		proveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prover",
			Name:      "failures_total",
			Help:      "Proving sessions that ended in an error.",
		}, []string{"program"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paths",
			Name:      "verdicts_total",
			Help:      "Path verification verdicts.",
		}, []string{"valid"}),
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 120},
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.proveDuration,
		m.proveFailures,
		m.verdicts,
		m.requestCounter,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveProve records one proving session.
func (m *Prometheus) ObserveProve(program, profile string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.proveFailures.WithLabelValues(program).Inc()
	}
	m.proveDuration.WithLabelValues(program, profile, outcome).Observe(elapsed.Seconds())
}

// ObserveVerdict records a path verification verdict.
func (m *Prometheus) ObserveVerdict(valid bool) {
	m.verdicts.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// Middleware counts and times every request by route.
func (m *Prometheus) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.requestCounter.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
