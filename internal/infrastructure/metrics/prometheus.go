// Package metrics instrumentación Prometheus del servicio: llamadas a MegaMart,
// refrescos del tablero y transiciones del asistente de caja.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/megamart"
)

const namespace = "megamart"

var (
	_ ports.Metrics     = (*Metrics)(nil)
	_ megamart.Observer = (*Metrics)(nil)
)

// Metrics colectores registrados en un registro propio.
type Metrics struct {
	reg *prometheus.Registry

	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	refreshDuration   *prometheus.HistogramVec
	refreshFailures   *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
	wizardTransitions *prometheus.CounterVec
}

// New crea el registro con los colectores del proceso y de Go.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Llamadas a la API de MegaMart por operación y resultado.",
		}, []string{"op", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duración de las llamadas a la API de MegaMart.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"op"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duración del cálculo de cada vista del tablero.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		refreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refresh_failures_total",
			Help:      "Refrescos de vistas fallidos.",
		}, []string{"view"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "snapshot_store_errors_total",
			Help:      "Errores del almacén de instantáneas por operación.",
		}, []string{"op"}),
		wizardTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pos",
			Name:      "wizard_actions_total",
			Help:      "Acciones del asistente de caja por resultado.",
		}, []string{"action", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamRequests, m.upstreamDuration,
		m.refreshDuration, m.refreshFailures, m.storeErrors,
		m.wizardTransitions,
	)
	return m
}

// ObserveUpstream implementa megamart.Observer.
func (m *Metrics) ObserveUpstream(op, outcome string, d time.Duration) {
	m.upstreamRequests.WithLabelValues(op, outcome).Inc()
	if outcome != "circuit_open" {
		m.upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// ObserveRefresh implementa ports.Metrics.
func (m *Metrics) ObserveRefresh(view string, d time.Duration, err error) {
	m.refreshDuration.WithLabelValues(view).Observe(d.Seconds())
	if err != nil {
		m.refreshFailures.WithLabelValues(view).Inc()
	}
}

// IncSnapshotStoreError implementa ports.Metrics.
func (m *Metrics) IncSnapshotStoreError(op string) {
	m.storeErrors.WithLabelValues(op).Inc()
}

// IncWizardTransition implementa ports.Metrics.
func (m *Metrics) IncWizardTransition(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.wizardTransitions.WithLabelValues(action, result).Inc()
}

// WatchBreaker expone el estado del circuit breaker (0 cerrado, 1 abierto, 2 semiabierto).
func (m *Metrics) WatchBreaker(state func() megamart.BreakerState) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "circuit_state",
		Help:      "Estado del circuit breaker hacia MegaMart (0 cerrado, 1 abierto, 2 semiabierto).",
	}, func() float64 {
		switch state() {
		case megamart.BreakerOpen:
			return 1
		case megamart.BreakerHalfOpen:
			return 2
		default:
			return 0
		}
	}))
}

// Registry registro subyacente (tests y exportadores).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler handler HTTP en formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
