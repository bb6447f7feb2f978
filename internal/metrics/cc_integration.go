package metrics

import (
	"quic-test/internal/congestion"
	"time"
)

// CCIntegration интегрирует Prometheus метрики с congestion control
type CCIntegration struct {
	metrics *PrometheusMetrics
	sc      *congestion.SendController
}

// NewCCIntegration создает новую интеграцию
func NewCCIntegration(metrics *PrometheusMetrics, sc *congestion.SendController) *CCIntegration {
	return &CCIntegration{
		metrics: metrics,
		sc:      sc,
	}
}

// UpdateMetrics обновляет все метрики congestion control
func (cci *CCIntegration) UpdateMetrics() {
	state := cci.sc.GetState()

	cci.metrics.UpdateCCMetrics(
		float64(state.MaxBandwidth),
		int(state.Cwnd),
		float64(state.MinRtt)/1e3, // microseconds to milliseconds
		state.Mode,
		int64(state.PacingRate),
	)
}

// StartMetricsCollection запускает периодический сбор метрик
func (cci *CCIntegration) StartMetricsCollection(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		
		for range ticker.C {
			cci.UpdateMetrics()
		}
	}()
}

