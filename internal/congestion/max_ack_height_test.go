package congestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// maxAckHeightStep is one (ackTime, bytesAcked) point fed to update() at a
// fixed synthetic rate of 1000 bytes/ms (an 8Mbps bw), used to drive two
// independently-thresholded trackers through the same delivery trace.
type maxAckHeightStep struct {
	ackTimeMs  int64
	bytesAcked ByteCount
}

func runMaxAckHeightTrace(threshold float64, steps []maxAckHeightStep) uint64 {
	tr := newMaxAckHeightTracker(0)
	tr.setThreshold(threshold)
	const bw = BitRate(8000000) // 1000 bytes/ms
	for _, st := range steps {
		tr.update(bw, 0, Timestamp(st.ackTimeMs*1000), st.bytesAcked)
	}
	return tr.NumEpochs()
}

// TestMaxAckHeightTracker_ThresholdControlsEpochBoundaries feeds the same
// delivery trace through two thresholds and checks that a tighter
// threshold (1.1) keeps classifying the accumulating epoch as one ongoing
// aggregation event for longer than a looser one (1.8), which resets to a
// fresh epoch as soon as the accumulated excess falls back within its
// (larger) multiple of the expected byte count.
func TestMaxAckHeightTracker_ThresholdControlsEpochBoundaries(t *testing.T) {
	trace := []maxAckHeightStep{
		{0, 3000},
		{1, 3000},
		{2, 1000},
		{3, 1000},
		{4, 1000},
		{5, 1000},
	}

	gotLoose := runMaxAckHeightTrace(1.8, trace)
	gotTight := runMaxAckHeightTrace(1.1, trace)

	assert.Equal(t, uint64(2), gotLoose)
	assert.Equal(t, uint64(1), gotTight)
}

// TestMaxAckHeightTracker_FirstUpdateStartsEpochWithoutExtra covers the
// "no prior epoch" branch: the very first update always opens epoch 1 and
// reports zero extra-acked bytes.
func TestMaxAckHeightTracker_FirstUpdateStartsEpochWithoutExtra(t *testing.T) {
	tr := newMaxAckHeightTracker(0)
	tr.setThreshold(2.0)

	extra := tr.update(BitRate(8000000), 0, Timestamp(0), 5000)
	assert.Equal(t, ByteCount(0), extra)
	assert.Equal(t, uint64(1), tr.NumEpochs())
}

// TestMaxAckHeightTracker_SustainedBurstAccumulatesExtra checks that a
// burst well above the expected delivery rate keeps accumulating within a
// single epoch and reports a growing extra-acked height.
func TestMaxAckHeightTracker_SustainedBurstAccumulatesExtra(t *testing.T) {
	tr := newMaxAckHeightTracker(0)
	tr.setThreshold(2.0)
	const bw = BitRate(8000000) // 1000 bytes/ms

	tr.update(bw, 0, Timestamp(0), 5000)
	extra := tr.update(bw, 0, Timestamp(1000), 5000)

	// expected at 1ms = 1000 bytes; epochBytes before this call (5000) far
	// exceeds threshold*expected (2000), so the tracker stays in the same
	// epoch and reports the excess over the expected delivery.
	assert.Equal(t, uint64(1), tr.NumEpochs())
	assert.Equal(t, ByteCount(10000-1000), extra)
}
