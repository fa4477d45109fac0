package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var started = time.Now()

// Uptime desde que se cargó el paquete.
func Uptime() time.Duration { return time.Since(started) }

// Metrics agrupa los contadores del servidor. Un *Metrics nil es válido y
// no registra nada.
type Metrics struct {
	connections prometheus.Counter
	inFlight    prometheus.Gauge
	responses   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	bodyBytes   prometheus.Counter
}

// NewMetrics crea y registra los colectores en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "littlehttp",
			Name:      "connections_total",
			Help:      "Total number of accepted connections",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "littlehttp",
			Name:      "connections_in_flight",
			Help:      "Connections currently being served",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "littlehttp",
			Name:      "responses_total",
			Help:      "Complete responses written, by status code",
		}, []string{"status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "littlehttp",
			Name:      "failures_total",
			Help:      "Connections aborted without a complete response, by outcome",
		}, []string{"outcome"}),
		bodyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "littlehttp",
			Name:      "body_bytes_total",
			Help:      "Response body bytes written",
		}),
	}
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "littlehttp",
		Name:      "uptime_seconds",
		Help:      "Seconds since the process started",
	}, func() float64 { return Uptime().Seconds() })

	reg.MustRegister(m.connections, m.inFlight, m.responses, m.failures, m.bodyBytes, uptime)
	return m
}

func (m *Metrics) connAccepted() {
	if m == nil {
		return
	}
	m.connections.Inc()
	m.inFlight.Inc()
}

func (m *Metrics) connDone() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

func (m *Metrics) observeResponse(status int, n int64) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(strconv.Itoa(status)).Inc()
	m.bodyBytes.Add(float64(n))
}

func (m *Metrics) observeFailure(o Outcome) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(o.String()).Inc()
}
