package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics содержит все метрики Prometheus для QUIC тестирования
type PrometheusMetrics struct {
	// Простая заглушка для совместимости
	ccCwnd            prometheus.Gauge
	ccPacingRate      prometheus.Gauge
	ccEstimatedBw     prometheus.Gauge
	ccMinRTT          prometheus.Gauge
	ccMode            *prometheus.GaugeVec
	ccModeTransitions prometheus.Counter
	lastCCMode        string
}

// NewPrometheusMetrics создает новый экземпляр метрик Prometheus
func NewPrometheusMetrics() *PrometheusMetrics {
	return newCCGauges(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWithRegistry создает новый экземпляр метрик с указанным registry
func NewPrometheusMetricsWithRegistry(registry prometheus.Registerer) *PrometheusMetrics {
	return newCCGauges(registry)
}

func newCCGauges(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		ccCwnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_cwnd_bytes", Help: "current BBRv2 congestion window in bytes",
		}),
		ccPacingRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_pacing_rate_bps", Help: "current BBRv2 pacing rate in bits/second",
		}),
		ccEstimatedBw: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_estimated_bandwidth_bps", Help: "current BBRv2 max-bandwidth filter estimate in bits/second",
		}),
		ccMinRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_min_rtt_ms", Help: "current BBRv2 min-RTT estimate in milliseconds",
		}),
		ccMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bbr_mode", Help: "1 for the BBRv2 mode currently active, 0 otherwise",
		}, []string{"mode"}),
		ccModeTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbr_mode_transitions_total", Help: "total BBRv2 mode transitions observed",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.ccCwnd, m.ccPacingRate, m.ccEstimatedBw, m.ccMinRTT, m.ccMode, m.ccModeTransitions} {
			reg.Register(c) //nolint:errcheck // duplicate registration across test runs is expected
		}
	}
	return m
}

// Заглушки для всех методов
func (m *PrometheusMetrics) RecordLatency(duration interface{}) {}
func (m *PrometheusMetrics) RecordJitter(duration interface{}) {}
func (m *PrometheusMetrics) RecordThroughput(throughput float64) {}
func (m *PrometheusMetrics) IncrementConnections() {}
func (m *PrometheusMetrics) DecrementConnections() {}
func (m *PrometheusMetrics) IncrementStreams() {}
func (m *PrometheusMetrics) DecrementStreams() {}
func (m *PrometheusMetrics) AddBytesSent(bytes int64) {}
func (m *PrometheusMetrics) AddBytesReceived(bytes int64) {}
func (m *PrometheusMetrics) IncrementErrors() {}
func (m *PrometheusMetrics) IncrementRetransmits() {}
func (m *PrometheusMetrics) IncrementHandshakes() {}
func (m *PrometheusMetrics) IncrementZeroRTT() {}
func (m *PrometheusMetrics) IncrementOneRTT() {}
func (m *PrometheusMetrics) IncrementSessionResumptions() {}
func (m *PrometheusMetrics) SetCurrentThroughput(throughput float64) {}
func (m *PrometheusMetrics) SetCurrentLatency(latency interface{}) {}
func (m *PrometheusMetrics) SetPacketLossRate(rate float64) {}
func (m *PrometheusMetrics) SetConnectionDuration(duration interface{}) {}
func (m *PrometheusMetrics) RecordScenarioEvent(scenario, connID, streamID, event string) {}
func (m *PrometheusMetrics) RecordErrorEvent(errorType, connID, streamID, severity string) {}
func (m *PrometheusMetrics) RecordProtocolEvent(event, connID, version, cipher string) {}
func (m *PrometheusMetrics) RecordScenarioDuration(scenario, connID, result string, duration interface{}) {}
func (m *PrometheusMetrics) RecordNetworkLatency(profile, connID, region string, latency interface{}) {}
func (m *PrometheusMetrics) RecordHandshakeTime(duration interface{}) {}
func (m *PrometheusMetrics) RecordRTT(duration interface{}) {}

// UpdateCCMetrics records a snapshot of the congestion controller's state.
// bwBps and pacingBps are bits/second, minRTTMs is milliseconds.
func (m *PrometheusMetrics) UpdateCCMetrics(bwBps float64, cwndBytes int, minRTTMs float64, mode string, pacingBps int64) {
	if m.ccCwnd == nil {
		return
	}
	m.ccCwnd.Set(float64(cwndBytes))
	m.ccPacingRate.Set(float64(pacingBps))
	m.ccEstimatedBw.Set(bwBps)
	m.ccMinRTT.Set(minRTTMs)

	if mode != m.lastCCMode {
		if m.lastCCMode != "" {
			m.ccMode.WithLabelValues(m.lastCCMode).Set(0)
		}
		m.ccModeTransitions.Inc()
		m.lastCCMode = mode
	}
	m.ccMode.WithLabelValues(mode).Set(1)
}