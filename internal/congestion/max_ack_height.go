package congestion

// maxAckHeightTracker measures "extra acked" bytes — bytes delivered faster
// than the estimated bandwidth would predict — within aggregation epochs.
// Grounded on original_source/bandwidth_sampler.{h,cpp} MaxAckHeightTracker.
type maxAckHeightTracker struct {
	filter    *windowedFilter
	threshold float64 // default 2.0; tests may lower it to 1.8 (spec §9 open question b)

	epochStart          Timestamp
	epochBytes          ByteCount
	numAggregationEpochs uint64
}

func newMaxAckHeightTracker(windowRounds int64) *maxAckHeightTracker {
	return &maxAckHeightTracker{
		filter:    newWindowedFilter(windowRounds),
		threshold: 2.0,
		epochStart: InvalidTimestamp,
	}
}

func (t *maxAckHeightTracker) get() ByteCount { return t.filter.getBest() }

func (t *maxAckHeightTracker) setWindowLength(rounds int64) { t.filter.setWindowLength(rounds) }

func (t *maxAckHeightTracker) setThreshold(threshold float64) { t.threshold = threshold }

// NumEpochs is a host-visible stat: how many aggregation epochs have
// started since the tracker was created (spec §8 scenario 7).
func (t *maxAckHeightTracker) NumEpochs() uint64 { return t.numAggregationEpochs }

// update implements spec §4.B: returns the bytes acked in the current epoch
// above what bw would predict.
func (t *maxAckHeightTracker) update(bw BitRate, round int64, ackTime Timestamp, bytesAcked ByteCount) ByteCount {
	if !t.epochStart.IsValid() {
		t.startEpoch(ackTime, bytesAcked)
		return 0
	}

	expected := bw.BytesOverDelta(ackTime.Sub(t.epochStart))
	if float64(t.epochBytes) <= t.threshold*float64(expected) {
		t.startEpoch(ackTime, bytesAcked)
		return 0
	}

	t.epochBytes += bytesAcked
	extra := t.epochBytes - expected
	if t.epochBytes < expected {
		extra = 0
	}
	t.filter.update(extra, round)
	return extra
}

func (t *maxAckHeightTracker) startEpoch(ackTime Timestamp, bytesAcked ByteCount) {
	t.epochBytes = bytesAcked
	t.epochStart = ackTime
	t.numAggregationEpochs++
}
