package congestion

import "math"

// AckedPacket is one packet the host has learned was delivered.
type AckedPacket struct {
	SeqNo       uint64
	Bytes       ByteCount
	ReceiveTime Timestamp
}

// LostPacket is one packet the host has declared lost.
type LostPacket struct {
	SeqNo uint64
	Bytes ByteCount
}

// BandwidthSample is the per-packet rate/rtt measurement produced by
// onPktAcked. A zero value (state not valid) means no sample could be made,
// e.g. the very first acked packet in a flight.
type BandwidthSample struct {
	Bandwidth   BitRate
	Rtt         TimeDelta
	StateAtSend sendTimeState
}

// CongestionEventSample summarizes everything learned from one batch of
// acks and losses handled together, for the model to fold into its state.
// Grounded on original_source/bandwidth_sampler.h's CongestionEventSample
// (spec §4.C).
type CongestionEventSample struct {
	SampleMaxBandwidth  BitRate
	SampleIsAppLimited  bool
	SampleRtt           TimeDelta
	SampleMaxInflight   ByteCount
	ExtraAcked          ByteCount
	LastPacketSendState sendTimeState
}

func newCongestionEventSample() CongestionEventSample {
	return CongestionEventSample{
		SampleMaxBandwidth: InfiniteBandwidth, // not-yet-set sentinel; caller checks StateAtSend.IsValid before trusting it
		SampleRtt:          InfiniteTimeDelta,
	}
}

// ackPoint is one (time, cumulative bytes acked) coordinate.
type ackPoint struct {
	ackTime         Timestamp
	totalBytesAcked ByteCount
}

// recentAckPoints keeps the two most recent distinct-time ack points, used
// to pick an A0 anchor for the ack-rate half of a bandwidth sample.
// Grounded on original_source/bandwidth_sampler.h's RecentAckPoints.
type recentAckPoints struct {
	points [2]ackPoint
}

func (r *recentAckPoints) update(ackTime Timestamp, totalBytesAcked ByteCount) {
	if ackTime < r.points[1].ackTime {
		// Clock went backwards; keep the smaller timestamp for the most recent point.
		r.points[1].ackTime = ackTime
	} else if ackTime > r.points[1].ackTime {
		r.points[0] = r.points[1]
		r.points[1].ackTime = ackTime
	}
	r.points[1].totalBytesAcked = totalBytesAcked
}

func (r *recentAckPoints) clear() { r.points[0], r.points[1] = ackPoint{}, ackPoint{} }

func (r *recentAckPoints) recentPoint() ackPoint { return r.points[1] }

func (r *recentAckPoints) lessRecentPoint() ackPoint {
	if r.points[0].totalBytesAcked != 0 {
		return r.points[0]
	}
	return r.points[1]
}

// bandwidthSampler derives per-packet send and ack rates from the raw
// stream of sent/acked/lost packets. Grounded verbatim on
// original_source/bandwidth_sampler.cpp/h (spec §4.C).
type bandwidthSampler struct {
	totalBytesSent     ByteCount
	totalBytesAcked    ByteCount
	totalBytesLost     ByteCount
	totalBytesNeutered ByteCount

	totalBytesSentAtLastAckedPacket ByteCount

	lastSentPacket          uint64
	lastAckedPacketSentTime Timestamp
	lastAckedPacketAckTime  Timestamp

	startedAsAppLimited bool
	isAppLimitedFlag    bool
	endOfAppLimitedPhase uint64

	records sendRecordStore

	ackPoints recentAckPoints

	maxAckHeight *maxAckHeightTracker

	totalBytesAckedAfterLastAckEvent ByteCount

	a0Candidates []ackPoint
}

func newBandwidthSampler(ackTrackWindowRounds int64, ackAggregationThreshold float64, startAsAppLimited bool) *bandwidthSampler {
	heightTracker := newMaxAckHeightTracker(ackTrackWindowRounds)
	heightTracker.setThreshold(ackAggregationThreshold)
	s := &bandwidthSampler{
		startedAsAppLimited: startAsAppLimited,
		isAppLimitedFlag:    startAsAppLimited,
		records:             *newSendRecordStore(),
		maxAckHeight:        heightTracker,
	}
	return s
}

// onPacketSent records a send. needRetransmittable mirrors the source's
// "need_retransmite" flag: ack-only/padding-only packets still advance
// lastSentPacket but otherwise don't perturb sampler state.
func (s *bandwidthSampler) onPacketSent(seqNo uint64, bytes ByteCount, bytesInFlight ByteCount, atTime Timestamp, needRetransmittable bool) {
	s.lastSentPacket = seqNo
	if !needRetransmittable {
		return
	}

	s.totalBytesSent += bytes

	if bytesInFlight == 0 {
		// Assume we received the last ack at this moment: with nothing in
		// flight, ack compression can't be a concern, so treat the send
		// rate as effectively infinite by restarting the A0 tracking here.
		s.lastAckedPacketAckTime = atTime
		s.totalBytesSentAtLastAckedPacket = s.totalBytesSent
		s.lastAckedPacketSentTime = atTime

		s.ackPoints.clear()
		s.ackPoints.update(atTime, s.totalBytesAcked)

		s.a0Candidates = s.a0Candidates[:0]
		s.a0Candidates = append(s.a0Candidates, s.ackPoints.recentPoint())
	}

	state := sendTimeState{
		IsValid:         false,
		IsAppLimited:    s.isAppLimitedFlag,
		TotalBytesSent:  s.totalBytesSent,
		TotalBytesAcked: s.totalBytesAcked,
		TotalBytesLost:  s.totalBytesLost,
		BytesInFlight:   bytes + bytesInFlight,
	}

	s.records.insert(seqNo, &sentPacketRecord{
		bytes:                           bytes,
		sentTime:                        atTime,
		totalBytesSentAtLastAckedPacket: s.totalBytesSentAtLastAckedPacket,
		lastAckedPacketSentTime:         s.lastAckedPacketSentTime,
		lastAckedPacketAckTime:          s.lastAckedPacketAckTime,
		state:                           state,
	})
}

// onCongestionEvent processes a batch of losses then acks, in that order
// (losses always reduce inflight before acks can raise sample_max_inflight).
func (s *bandwidthSampler) onCongestionEvent(ackTime Timestamp, ackedPkts []AckedPacket, lostPkts []LostPacket, maxBw BitRate, estimatedBwUpperBound BitRate, roundCount int64) CongestionEventSample {
	event := newCongestionEventSample()

	var lastLostState sendTimeState
	for _, pkt := range lostPkts {
		st := s.onPktLost(pkt.SeqNo, pkt.Bytes)
		if st.IsValid {
			lastLostState = st
		}
	}

	if len(ackedPkts) == 0 {
		event.LastPacketSendState = lastLostState
		return event
	}

	var lastAckedState sendTimeState
	for _, pkt := range ackedPkts {
		sample := s.onPktAcked(pkt.SeqNo, ackTime)
		if !sample.StateAtSend.IsValid {
			continue
		}

		lastAckedState = sample.StateAtSend

		if sample.Rtt != InfiniteTimeDelta && sample.Rtt < event.SampleRtt {
			event.SampleRtt = sample.Rtt
		}
		if sample.Bandwidth.IsValid() && (event.SampleMaxBandwidth == InfiniteBandwidth || sample.Bandwidth > event.SampleMaxBandwidth) {
			event.SampleMaxBandwidth = sample.Bandwidth
			event.SampleIsAppLimited = sample.StateAtSend.IsAppLimited
		}

		inflightSample := s.totalBytesAcked - lastAckedState.TotalBytesAcked
		if inflightSample > event.SampleMaxInflight {
			event.SampleMaxInflight = inflightSample
		}
	}
	if event.SampleMaxBandwidth == InfiniteBandwidth {
		// No ack produced a usable bandwidth sample; collapse the
		// not-yet-set sentinel down to zero so the model doesn't mistake
		// it for a genuine +inf measurement.
		event.SampleMaxBandwidth = 0
	}

	switch {
	case !lastLostState.IsValid:
		event.LastPacketSendState = lastAckedState
	case !lastAckedState.IsValid:
		event.LastPacketSendState = lastLostState
	default:
		if lostPkts[len(lostPkts)-1].SeqNo > ackedPkts[len(ackedPkts)-1].SeqNo {
			event.LastPacketSendState = lastLostState
		} else {
			event.LastPacketSendState = lastAckedState
		}
	}

	clipped := maxBandwidth(maxBw, event.SampleMaxBandwidth)
	clipped = minBandwidth(clipped, estimatedBwUpperBound)

	event.ExtraAcked = s.extraAcked(clipped, roundCount)

	return event
}

func (s *bandwidthSampler) onPktLost(seqNo uint64, bytes ByteCount) sendTimeState {
	s.totalBytesLost += bytes
	rec, ok := s.records.get(seqNo)
	if !ok {
		return sendTimeState{}
	}
	return toSendTimeState(rec)
}

func (s *bandwidthSampler) onPktAcked(seqNo uint64, ackTime Timestamp) BandwidthSample {
	rec, ok := s.records.get(seqNo)
	if !ok {
		return BandwidthSample{}
	}

	s.totalBytesAcked += rec.bytes
	s.totalBytesSentAtLastAckedPacket = rec.state.TotalBytesSent
	s.lastAckedPacketSentTime = rec.sentTime
	s.lastAckedPacketAckTime = ackTime

	s.ackPoints.update(ackTime, s.totalBytesAcked)

	if s.isAppLimitedFlag {
		// Exit app-limited in two cases: (1) no end marker was ever set,
		// meaning every packet so far was sent while buffered/pending data
		// existed; (2) this ack is past the marked end-of-phase packet.
		if s.endOfAppLimitedPhase == math.MaxUint64 || seqNo > s.endOfAppLimitedPhase {
			s.isAppLimitedFlag = false
		}
	}

	if !rec.lastAckedPacketSentTime.IsValid() {
		// No packet had been acked yet when this one was sent: nothing to compare against.
		return BandwidthSample{}
	}

	var sendRate BitRate = InfiniteBandwidth
	if rec.sentTime > rec.lastAckedPacketSentTime {
		sendRate = Bandwidth(rec.state.TotalBytesSent-rec.totalBytesSentAtLastAckedPacket, rec.sentTime.Sub(rec.lastAckedPacketSentTime))
	}

	a0, ok := s.chooseA0(rec.state.TotalBytesAcked)
	if !ok {
		a0 = ackPoint{ackTime: rec.lastAckedPacketAckTime, totalBytesAcked: rec.state.TotalBytesAcked}
	}

	ackRate := Bandwidth(s.totalBytesAcked-a0.totalBytesAcked, ackTime.Sub(a0.ackTime))

	return BandwidthSample{
		Bandwidth:   minBandwidth(sendRate, ackRate),
		Rtt:         ackTime.Sub(rec.sentTime),
		StateAtSend: toSendTimeState(rec),
	}
}

func (s *bandwidthSampler) extraAcked(maxBw BitRate, roundCount int64) ByteCount {
	newlyAcked := s.totalBytesAcked - s.totalBytesAckedAfterLastAckEvent
	if newlyAcked == 0 {
		return 0
	}
	s.totalBytesAckedAfterLastAckEvent = s.totalBytesAcked
	extra := s.maxAckHeight.update(maxBw, roundCount, s.lastAckedPacketAckTime, newlyAcked)
	if extra == 0 {
		s.a0Candidates = append(s.a0Candidates, s.ackPoints.lessRecentPoint())
	}
	return extra
}

// chooseA0 scans the candidate queue (oldest first) for the last candidate
// whose total_bytes_acked does not exceed target, dropping older candidates
// as it goes so the queue never grows unbounded. Returns false only when
// the queue is empty.
func (s *bandwidthSampler) chooseA0(target ByteCount) (ackPoint, bool) {
	if len(s.a0Candidates) == 0 {
		return ackPoint{}, false
	}
	if len(s.a0Candidates) == 1 {
		return s.a0Candidates[0], true
	}

	for i := 1; i < len(s.a0Candidates); i++ {
		if s.a0Candidates[i].totalBytesAcked > target {
			point := s.a0Candidates[i-1]
			s.a0Candidates = s.a0Candidates[i-1:]
			return point, true
		}
	}
	// Every candidate's total_bytes_acked is <= target.
	point := s.a0Candidates[len(s.a0Candidates)-1]
	s.a0Candidates = s.a0Candidates[len(s.a0Candidates)-1:]
	return point, true
}

func (s *bandwidthSampler) onPktNeutered(seqNo uint64) {
	rec, ok := s.records.erase(seqNo)
	if !ok {
		return
	}
	s.totalBytesNeutered += rec.bytes
}

// removeObsoletePackets drops every tracked record with seq < upTo.
func (s *bandwidthSampler) removeObsoletePackets(upTo uint64) {
	s.records.removeObsolete(upTo)
}

func (s *bandwidthSampler) onAppLimited() {
	s.isAppLimitedFlag = true
	s.endOfAppLimitedPhase = s.lastSentPacket
}

func (s *bandwidthSampler) isAppLimited() bool { return s.isAppLimitedFlag }

func toSendTimeState(rec *sentPacketRecord) sendTimeState {
	st := rec.state
	st.IsValid = true
	return st
}
