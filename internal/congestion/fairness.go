package congestion

import (
	"math"
	"sort"
	"time"
)

// JainFairnessIndex measures how evenly a set of competing flows share
// bandwidth: (Σx_i)² / (n·Σx_i²), 1.0 for perfectly equal throughputs and
// 1/n for one flow taking everything. Grounded on the teacher's
// bbrv3_metrics.go, kept as a host-metrics helper independent of the
// BBRv2 model itself (the controller doesn't need it; the dashboard does).
func JainFairnessIndex(throughputs []float64) float64 {
	if len(throughputs) == 0 {
		return 0.0
	}
	if len(throughputs) == 1 {
		return 1.0
	}

	var sum, sumSquares float64
	for _, t := range throughputs {
		if t < 0 {
			t = 0
		}
		sum += t
		sumSquares += t * t
	}
	if sum == 0 || sumSquares == 0 {
		return 0.0
	}

	n := float64(len(throughputs))
	return (sum * sum) / (n * sumSquares)
}

// CalculateRTTPercentiles reports the p50/p95/p99 of a batch of RTT
// samples, for host dashboards layering latency distribution on top of
// Controller.Metrics()'s single current MinRtt. Grounded on the
// teacher's bbrv3_metrics.go, with the sort idiomatic-ized to sort.Float64s.
func CalculateRTTPercentiles(rttSamples []time.Duration) (p50, p95, p99 time.Duration) {
	if len(rttSamples) == 0 {
		return 0, 0, 0
	}

	samples := make([]float64, len(rttSamples))
	for i, rtt := range rttSamples {
		samples[i] = float64(rtt.Nanoseconds()) / 1e6
	}
	sort.Float64s(samples)

	n := len(samples)
	idx := func(pct float64) int {
		i := int(float64(n) * pct)
		if i >= n {
			i = n - 1
		}
		return i
	}

	p50 = time.Duration(samples[idx(0.50)] * 1e6)
	p95 = time.Duration(samples[idx(0.95)] * 1e6)
	p99 = time.Duration(samples[idx(0.99)] * 1e6)
	return
}

// CalculateJitter is the standard deviation of a batch of RTT samples.
func CalculateJitter(rttSamples []time.Duration) time.Duration {
	if len(rttSamples) == 0 {
		return 0
	}

	samples := make([]float64, len(rttSamples))
	for i, rtt := range rttSamples {
		samples[i] = float64(rtt.Nanoseconds()) / 1e6
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		diff := s - mean
		variance += diff * diff
	}
	variance /= float64(len(samples))

	return time.Duration(math.Sqrt(variance) * 1e6)
}
