package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Relay outcomes recorded on the requests counter.
const (
	OutcomeSuccess        = "success"
	OutcomeInputError     = "input_error"
	OutcomeTransportError = "transport_error"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeInternalError  = "internal_error"
)

// RelayMetrics exposes counters/histograms for the edit relay.
type RelayMetrics struct {
	requestsTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editrelay",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Total edit requests by outcome",
		}, []string{"outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "editrelay",
			Subsystem: "relay",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of chat completion calls to the provider",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}, []string{"status"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editrelay",
			Subsystem: "relay",
			Name:      "upstream_tokens_total",
			Help:      "Tokens reported by the provider",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.upstreamLatency, m.tokensTotal)
	return m
}

func (m *RelayMetrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records call latency; status 0 means a transport failure.
func (m *RelayMetrics) ObserveUpstream(status int, seconds float64) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "transport_error"
	}
	m.upstreamLatency.WithLabelValues(label).Observe(seconds)
}

func (m *RelayMetrics) ObserveTokens(prompt, completion int) {
	if m == nil {
		return
	}
	if prompt > 0 {
		m.tokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.tokensTotal.WithLabelValues("completion").Add(float64(completion))
	}
}
