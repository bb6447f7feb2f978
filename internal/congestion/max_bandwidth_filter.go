package congestion

// maxBandwidthFilter is a 2-slot max filter advanced once per round trip:
// slot 1 accumulates the current round's samples, advance() promotes it to
// slot 0 and starts a fresh slot 1. get() reports the max of both, so a
// round with zero samples doesn't immediately erase the prior round's
// estimate. Grounded on original_source/bbr_model.h's MaxBandwidthFilter.
type maxBandwidthFilter struct {
	maxBw [2]BitRate
}

func (f *maxBandwidthFilter) update(sample BitRate) {
	f.maxBw[1] = maxBandwidth(sample, f.maxBw[1])
}

func (f *maxBandwidthFilter) advance() {
	if f.maxBw[1] == ZeroBandwidth {
		return
	}
	f.maxBw[0] = f.maxBw[1]
	f.maxBw[1] = ZeroBandwidth
}

func (f *maxBandwidthFilter) get() BitRate {
	return maxBandwidth(f.maxBw[0], f.maxBw[1])
}
