package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa los colectores del cliente. Un *Metrics nil es válido y no
// registra nada, así los paquetes no tienen que chequear configuración.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	polls    *prometheus.CounterVec
	reverts  *prometheus.CounterVec
}

// New registra los colectores en reg. Si reg es nil usa un registry propio.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare_client",
			Name:      "requests_total",
			Help:      "API requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "petcare_client",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare_client",
			Name:      "poll_ticks_total",
			Help:      "Polling ticks by view and result.",
		}, []string{"view", "result"}),
		reverts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petcare_client",
			Name:      "optimistic_reverts_total",
			Help:      "Optimistic local updates reverted after a server failure.",
		}, []string{"flow"}),
	}

	reg.MustRegister(m.requests, m.duration, m.polls, m.reverts)
	return m
}

// ObserveRequest registra una llamada. code=0 significa sin respuesta (red).
func (m *Metrics) ObserveRequest(method, route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	c := "network"
	if code > 0 {
		c = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(method, route, c).Inc()
	m.duration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) PollTick(view string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.polls.WithLabelValues(view, result).Inc()
}

func (m *Metrics) OptimisticRevert(flow string) {
	if m == nil {
		return
	}
	m.reverts.WithLabelValues(flow).Inc()
}
