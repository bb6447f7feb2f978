package congestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestModel() *model {
	params := DefaultParams()
	return newModel(&params, InfiniteTimeDelta, InvalidTimestamp, params.StartupCwndGain, params.StartupPacingGain)
}

// TestModel_EndOfRoundTripDoesNotRetoggleWithinSameRound covers the
// universal invariant that once an event reports end_of_round_trip, later
// events in the same round never toggle it again until a genuinely new
// round's boundary is crossed.
func TestModel_EndOfRoundTripDoesNotRetoggleWithinSameRound(t *testing.T) {
	m := newTestModel()

	m.onPktSent(1, 1000, 0, 0, true)
	m.onPktSent(2, 1000, 1000, 1000, true)
	m.onPktSent(3, 1000, 2000, 2000, true)

	ev1 := newCongestionEvent()
	ev1.PriorBytesInFlight = 3000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 1, Bytes: 1000}}, nil, ev1, 3000)
	assert.True(t, ev1.EndOfRoundTrip)

	ev2 := newCongestionEvent()
	ev2.PriorBytesInFlight = 2000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 2, Bytes: 1000}}, nil, ev2, 4000)
	assert.False(t, ev2.EndOfRoundTrip)

	ev3 := newCongestionEvent()
	ev3.PriorBytesInFlight = 1000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 3, Bytes: 1000}}, nil, ev3, 5000)
	assert.False(t, ev3.EndOfRoundTrip)

	m.onPktSent(4, 1000, 0, 5000, true)
	ev4 := newCongestionEvent()
	ev4.PriorBytesInFlight = 1000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 4, Bytes: 1000}}, nil, ev4, 6000)
	assert.True(t, ev4.EndOfRoundTrip, "acking past the frozen round boundary starts a new round")
}

// TestModel_MinRttTracksLowestSample checks that the min-RTT filter only
// ever moves down on plain update(), never back up, until something
// explicitly forces it (PROBE_RTT's expiry path, not exercised here).
func TestModel_MinRttTracksLowestSample(t *testing.T) {
	m := newTestModel()

	m.onPktSent(1, 1000, 0, 0, true)
	ev1 := newCongestionEvent()
	ev1.PriorBytesInFlight = 1000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 1, Bytes: 1000}}, nil, ev1, 5000)
	assert.Equal(t, TimeDelta(5000), m.MinRtt())

	m.onPktSent(2, 1000, 0, 5000, true)
	ev2 := newCongestionEvent()
	ev2.PriorBytesInFlight = 1000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 2, Bytes: 1000}}, nil, ev2, 6000)
	assert.Equal(t, TimeDelta(1000), m.MinRtt(), "a lower sample replaces the floor")

	m.onPktSent(3, 1000, 0, 6000, true)
	ev3 := newCongestionEvent()
	ev3.PriorBytesInFlight = 1000
	m.onCongestionEvent([]AckedPacket{{SeqNo: 3, Bytes: 1000}}, nil, ev3, 16000)
	assert.Equal(t, TimeDelta(1000), m.MinRtt(), "a higher sample must not raise the floor")
}

// TestModel_RemoveObsoletePacketsDelegatesToSampler checks the wiring
// Controller.RemoveObsoletePackets depends on: endCongestionEvent must
// reach the sampler's own record store.
func TestModel_RemoveObsoletePacketsDelegatesToSampler(t *testing.T) {
	m := newTestModel()

	m.onPktSent(1, 1000, 0, 0, true)
	m.onPktSent(2, 1000, 1000, 1000, true)

	m.endCongestionEvent(3)
	assert.True(t, m.sampler.records.empty())
}
