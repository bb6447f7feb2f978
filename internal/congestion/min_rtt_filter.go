package congestion

// minRttFilter tracks the minimum observed RTT and when it was last set,
// aging it out only on explicit forceUpdate (the probing modes own when
// that expiry happens). Grounded on original_source/bbr_model.h's
// MinRttFilter.
type minRttFilter struct {
	minRtt          TimeDelta
	minRttTimestamp Timestamp
}

func newMinRttFilter(initial TimeDelta, initialTimestamp Timestamp) *minRttFilter {
	return &minRttFilter{minRtt: initial, minRttTimestamp: initialTimestamp}
}

// update folds in a new sample if it's smaller than the current minimum,
// or if no timestamp has ever been recorded.
func (f *minRttFilter) update(sampleRtt TimeDelta, atTime Timestamp) {
	if sampleRtt < f.minRtt || !f.minRttTimestamp.IsValid() {
		f.minRtt = sampleRtt
		f.minRttTimestamp = atTime
	}
}

// forceUpdate unconditionally replaces the estimate. model.maybeMinRttExpired
// uses it when the window has expired and a fresh floor must be established,
// and model.postponeMinRttTimestamp uses it to push the timestamp forward.
func (f *minRttFilter) forceUpdate(sampleRtt TimeDelta, atTime Timestamp) {
	f.minRtt = sampleRtt
	f.minRttTimestamp = atTime
}

func (f *minRttFilter) get() TimeDelta       { return f.minRtt }
func (f *minRttFilter) timestamp() Timestamp { return f.minRttTimestamp }
