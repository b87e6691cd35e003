package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRelayMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRelayMetrics(reg)

	m.ObserveRequest(OutcomeSuccess)
	m.ObserveRequest(OutcomeSuccess)
	m.ObserveRequest(OutcomeUpstreamError)
	m.ObserveUpstream(200, 1.5)
	m.ObserveUpstream(0, 0.1)
	m.ObserveTokens(120, 40)
	m.ObserveTokens(0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(OutcomeUpstreamError)))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.tokensTotal.WithLabelValues("prompt")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.tokensTotal.WithLabelValues("completion")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamLatency))
}

func TestRelayMetricsNilSafe(t *testing.T) {
	var m *RelayMetrics
	m.ObserveRequest(OutcomeInputError)
	m.ObserveUpstream(503, 0.2)
	m.ObserveTokens(1, 1)
}
