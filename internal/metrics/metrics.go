package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trego/provider/internal/job"
)

const namespace = "trego"

// Metrics owns a private registry so tests and multiple servers in one process
// do not collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	jobActions *prometheus.CounterVec
	reqCnt     *prometheus.CounterVec
	reqDur     *prometheus.HistogramVec
	resSz      *prometheus.HistogramVec
	wsClients  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		jobActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_actions_total",
				Help:      "Job lifecycle operations by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		reqCnt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests made.",
			},
			[]string{"method", "code"},
		),
		reqDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "The HTTP request latencies in seconds.",
			},
			nil,
		),
		resSz: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "The HTTP response sizes in bytes.",
				// 1KB, 100KB, 1MB
				Buckets: []float64{1024, 100 * 1024, 1024 * 1024},
			},
			nil,
		),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "subscribers",
			Help:      "Connected job event subscribers.",
		}),
	}

	m.reg.MustRegister(
		m.jobActions,
		m.reqCnt,
		m.reqDur,
		m.resSz,
		m.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordAction implements job.Recorder.
func (m *Metrics) RecordAction(action job.Action, outcome string) {
	m.jobActions.WithLabelValues(string(action), outcome).Inc()
}

func (m *Metrics) SubscriberConnected()    { m.wsClients.Inc() }
func (m *Metrics) SubscriberDisconnected() { m.wsClients.Dec() }

// Middleware instruments every request passing through it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.reqDur,
		promhttp.InstrumentHandlerCounter(m.reqCnt,
			promhttp.InstrumentHandlerResponseSize(m.resSz, next)))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
