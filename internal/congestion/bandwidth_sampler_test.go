package congestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBandwidthSampler_ConstantRate drives three 1280-byte sends spaced 10ms apart,
// acking packet i at the instant packet i+1 is sent and keeping exactly
// one packet in flight at a time.
func TestBandwidthSampler_ConstantRate(t *testing.T) {
	s := newBandwidthSampler(0, 2.0, false)

	const size = ByteCount(1280)
	const interval = TimeDelta(10000) // 10ms in microseconds
	const wantBw = BitRate(1024000)   // 1280B*8/10ms

	s.onPacketSent(1, size, 0, 0, true)

	sample := s.onPktAcked(1, Timestamp(interval))
	require.True(t, sample.StateAtSend.IsValid)
	assert.Equal(t, wantBw, sample.Bandwidth)
	assert.Equal(t, interval, sample.Rtt)

	s.onPacketSent(2, size, 0, Timestamp(interval), true)
	sample = s.onPktAcked(2, Timestamp(2*interval))
	require.True(t, sample.StateAtSend.IsValid)
	assert.Equal(t, wantBw, sample.Bandwidth)
	assert.Equal(t, interval, sample.Rtt)

	s.onPacketSent(3, size, 0, Timestamp(2*interval), true)
	sample = s.onPktAcked(3, Timestamp(3*interval))
	require.True(t, sample.StateAtSend.IsValid)
	assert.Equal(t, wantBw, sample.Bandwidth)
	assert.Equal(t, interval, sample.Rtt)
}

// TestBandwidthSampler_LossHalvesDeliveredBandwidth acks only every other
// packet of a constant-rate flight: delivered bytes per interval drop to
// half, so the ack-rate half of the sample should drop to half too.
func TestBandwidthSampler_LossHalvesDeliveredBandwidth(t *testing.T) {
	s := newBandwidthSampler(0, 2.0, false)

	const size = ByteCount(1280)
	const interval = TimeDelta(1000) // 1ms

	s.onPacketSent(1, size, 0, 0, true)
	s.onPacketSent(2, size, size, Timestamp(interval), true)

	// Packet 1 is lost, packet 2 is acked two intervals after packet 1 was sent.
	event := s.onCongestionEvent(Timestamp(2*interval),
		[]AckedPacket{{SeqNo: 2, Bytes: size, ReceiveTime: Timestamp(2 * interval)}},
		[]LostPacket{{SeqNo: 1, Bytes: size}},
		InfiniteBandwidth, InfiniteBandwidth, 0)

	require.True(t, event.LastPacketSendState.IsValid)
	// Only one of the two packets sent in [0, 2ms) was ever acked: the
	// ack-rate half of the sample is bytes/elapsed = 1280B / 2ms, half of
	// the 1280B / 1ms constant send rate.
	assert.Equal(t, Bandwidth(size, 2*interval), event.SampleMaxBandwidth)
	assert.Equal(t, ByteCount(size), s.totalBytesLost)
	assert.Equal(t, ByteCount(size), s.totalBytesAcked)
}

// TestBandwidthSampler_AppLimitedMarking checks that on_app_limited only
// marks packets sent after the call, and that earlier in-flight packets
// keep reporting is_app_limited=false when later acked.
func TestBandwidthSampler_AppLimitedMarking(t *testing.T) {
	s := newBandwidthSampler(0, 2.0, false)

	s.onPacketSent(1, 1280, 0, 0, true)
	s.onAppLimited()
	assert.True(t, s.isAppLimited())

	sample := s.onPktAcked(1, Timestamp(1000))
	require.True(t, sample.StateAtSend.IsValid)
	assert.False(t, sample.StateAtSend.IsAppLimited, "packet sent before on_app_limited must not be marked")

	s.onPacketSent(2, 1280, 0, Timestamp(1000), true)
	sample = s.onPktAcked(2, Timestamp(2000))
	require.True(t, sample.StateAtSend.IsValid)
	assert.True(t, sample.StateAtSend.IsAppLimited, "packet sent after on_app_limited must be marked")
	assert.False(t, s.isAppLimited(), "acking past the marked packet clears the flag")
}

// TestBandwidthSampler_TotalsMonotonicAndBounded exercises invariant 2:
// total_bytes_acked + total_bytes_lost never exceeds total_bytes_sent.
func TestBandwidthSampler_TotalsMonotonicAndBounded(t *testing.T) {
	s := newBandwidthSampler(0, 2.0, false)

	prevSent := ByteCount(0)
	for i := uint64(1); i <= 6; i++ {
		s.onPacketSent(i, 1000, 0, Timestamp(i*1000), true)
		require.GreaterOrEqual(t, s.totalBytesSent, prevSent)
		prevSent = s.totalBytesSent

		if i%2 == 0 {
			s.onPktAcked(i, Timestamp(i*1000+500))
		} else {
			s.onPktLost(i, 1000)
		}
		assert.LessOrEqual(t, s.totalBytesAcked+s.totalBytesLost, s.totalBytesSent)
	}
}

// TestBandwidthSampler_RemoveObsoletePacketsIdempotent covers invariant 4:
// remove_obsolete_pkts(k) twice is the same as once.
func TestBandwidthSampler_RemoveObsoletePacketsIdempotent(t *testing.T) {
	s := newBandwidthSampler(0, 2.0, false)

	for i := uint64(1); i <= 4; i++ {
		s.onPacketSent(i, 1000, 0, Timestamp(i*1000), true)
	}
	for i := uint64(1); i <= 4; i++ {
		s.onPktAcked(i, Timestamp(i*1000+500))
	}

	s.removeObsoletePackets(5)
	assert.True(t, s.records.empty())

	s.removeObsoletePackets(5)
	assert.True(t, s.records.empty())
}
