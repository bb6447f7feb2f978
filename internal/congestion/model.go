package congestion

import "go.uber.org/zap"

// CongestionEvent carries everything learned while processing one batch of
// acks/losses, threaded through model and mode updates by pointer so modes
// never need a back-reference to the model that produced it. Grounded on
// original_source/bbr_model.h's BbrCongestionEvent (spec §4.G/§9 redesign
// note: no upward pointers from modes).
type CongestionEvent struct {
	PriorCwnd         ByteCount
	PriorBytesInFlight ByteCount
	BytesInFlight     ByteCount
	BytesAcked        ByteCount
	BytesLost         ByteCount

	EndOfRoundTrip        bool
	LastSampleIsAppLimited bool
	IsProbingForBandwidth bool

	SampleMinRtt        TimeDelta
	SampleMaxBandwidth  BitRate
	LastPacketSendState sendTimeState

	EventTime Timestamp
}

func newCongestionEvent() *CongestionEvent {
	return &CongestionEvent{SampleMinRtt: InfiniteTimeDelta}
}

// model owns the filters and sampler and folds raw send/ack/loss events
// into the running BBR state: max bandwidth, min RTT, and the inflight/bw
// lower and upper bounds. Grounded on original_source/bbr_model.cpp/h
// (component G, spec §4.G).
type model struct {
	params *Params

	cwndGain   float64
	pacingGain float64

	rttFilter *minRttFilter
	bwFilter  maxBandwidthFilter
	rounds    *roundTripCounter
	sampler   *bandwidthSampler

	bytesLostInRound  ByteCount
	lossEventsInRound uint64

	latestMaxBw            BitRate
	latestMaxInflightBytes ByteCount

	bwLo          BitRate
	inflightLo    ByteCount
	inflightHi    ByteCount
}

const infiniteInflight = ByteCount(1<<63 - 1)

func newModel(params *Params, initMinRtt TimeDelta, initMinRttTimestamp Timestamp, cwndGain, pacingGain float64) *model {
	return &model{
		params:     params,
		cwndGain:   cwndGain,
		pacingGain: pacingGain,
		rttFilter:  newMinRttFilter(initMinRtt, initMinRttTimestamp),
		rounds:     newRoundTripCounter(),
		sampler:    newBandwidthSampler(params.AckTrackWindowRounds, params.AckAggregationThreshold, params.StartAsAppLimited),
		bwLo:       InfiniteBandwidth,
		inflightLo: infiniteInflight,
		inflightHi: infiniteInflight,
	}
}

func (m *model) onPktSent(seqNo uint64, pktSize ByteCount, inflightBytes ByteCount, atTime Timestamp, needRetransmitted bool) {
	m.rounds.onPktSent(seqNo)
	m.sampler.onPacketSent(seqNo, pktSize, inflightBytes, atTime, needRetransmitted)
}

// onCongestionEvent implements spec §4.G's nine-step sequence.
func (m *model) onCongestionEvent(ackedPkts []AckedPacket, lostPkts []LostPacket, event *CongestionEvent, atTime Timestamp) {
	priorAcked := m.sampler.totalBytesAcked
	priorLost := m.sampler.totalBytesLost

	event.EventTime = atTime

	if len(ackedPkts) > 0 {
		event.EndOfRoundTrip = m.rounds.onPktAcked(ackedPkts[len(ackedPkts)-1].SeqNo)
	}

	sample := m.sampler.onCongestionEvent(atTime, ackedPkts, lostPkts, m.MaxBw(), m.BwLowerBound(), int64(m.rounds.roundTripCount()))
	if sample.LastPacketSendState.IsValid {
		event.LastPacketSendState = sample.LastPacketSendState
		event.LastSampleIsAppLimited = sample.LastPacketSendState.IsAppLimited
	}

	// Skip updating the max-bandwidth filter on loss-only events, or when no
	// acked packet had a send record: total_bytes_acked won't have moved.
	if priorAcked != m.sampler.totalBytesAcked {
		if !sample.SampleIsAppLimited || sample.SampleMaxBandwidth > m.MaxBw() {
			event.SampleMaxBandwidth = sample.SampleMaxBandwidth
			m.bwFilter.update(event.SampleMaxBandwidth)
		}
	}

	if sample.SampleRtt != InfiniteTimeDelta {
		event.SampleMinRtt = sample.SampleRtt
		m.rttFilter.update(event.SampleMinRtt, atTime)
	}

	event.BytesAcked = m.sampler.totalBytesAcked - priorAcked
	event.BytesLost = m.sampler.totalBytesLost - priorLost

	if event.PriorBytesInFlight >= event.BytesAcked+event.BytesLost {
		event.BytesInFlight = event.PriorBytesInFlight - event.BytesAcked - event.BytesLost
	} else {
		debugLogger.Warn("bbr: prior_bytes_in_flight smaller than acked+lost, clamping to 0",
			zap.Uint64("prior_bytes_in_flight", uint64(event.PriorBytesInFlight)),
			zap.Uint64("bytes_acked", uint64(event.BytesAcked)),
			zap.Uint64("bytes_lost", uint64(event.BytesLost)))
		event.BytesInFlight = 0
	}

	if event.BytesLost > 0 {
		m.bytesLostInRound += event.BytesLost
		m.lossEventsInRound++
	}

	m.latestMaxBw = maxBandwidth(m.latestMaxBw, sample.SampleMaxBandwidth)
	m.latestMaxInflightBytes = maxByteCount(m.latestMaxInflightBytes, sample.SampleMaxInflight)

	if !event.EndOfRoundTrip {
		return
	}

	m.adaptLowerBounds(event)

	if sample.SampleMaxBandwidth > ZeroBandwidth {
		m.latestMaxBw = sample.SampleMaxBandwidth
	}
	if sample.SampleMaxInflight > 0 {
		m.latestMaxInflightBytes = sample.SampleMaxInflight
	}
}

// endCongestionEvent is the companion call the original left unimplemented
// (bbr_model.h declares it, bbr_model.cpp defines it, but nothing in the
// retrieved bbr_algorithm.cpp ever calls it — a supplemented wiring per
// spec §9/DESIGN.md): releases send records for packets the host has fully
// retired by forwarding the boundary to the sampler. Controller.RemoveObsoletePackets
// calls it and does nothing else.
func (m *model) endCongestionEvent(leastUnackedPktNo uint64) {
	m.sampler.removeObsoletePackets(leastUnackedPktNo)
}

func (m *model) restartRound() {
	m.bytesLostInRound = 0
	m.lossEventsInRound = 0
	m.rounds.restart()
}

// adaptLowerBounds implements spec §4.G's adapt_lower_bounds, called only
// at the end of a round and never while a probe-bw cycle is underway.
func (m *model) adaptLowerBounds(event *CongestionEvent) {
	if !event.EndOfRoundTrip || event.IsProbingForBandwidth {
		return
	}
	if event.BytesLost == 0 {
		return
	}

	if m.bwLo == InfiniteBandwidth {
		m.bwLo = m.MaxBw()
	}
	m.bwLo = maxBandwidth(m.latestMaxBw, BitRate(float64(m.bwLo)*(1.0-m.params.Beta)))

	if m.params.IgnoreInflightLo {
		return
	}
	if m.inflightLo == infiniteInflight {
		m.inflightLo = event.PriorCwnd
	}
	m.inflightLo = maxByteCount(m.latestMaxInflightBytes, ByteCount(float64(m.inflightLo)*(1.0-m.params.Beta)))
}

// isInflightTooHigh implements spec §4.G.
func (m *model) isInflightTooHigh(event *CongestionEvent) bool {
	sendState := event.LastPacketSendState
	if !sendState.IsValid {
		return false
	}
	atSend := inflightAtSend(sendState)
	if atSend > 0 && m.bytesLostInRound > 0 {
		threshold := ByteCount(float64(atSend) * m.params.LossThreshold)
		return m.bytesLostInRound > threshold
	}
	return false
}

func (m *model) capInflightLo(cap ByteCount) {
	if m.params.IgnoreInflightLo {
		return
	}
	if m.inflightLo != infiniteInflight && m.inflightLo > cap {
		m.inflightLo = cap
	}
}

func (m *model) inflightHiWithHeadroom() ByteCount {
	headroom := ByteCount(float64(m.inflightHi) * m.params.InflightHiHeadroomFraction)
	if m.inflightHi > headroom {
		return m.inflightHi - headroom
	}
	return 0
}

// maybeMinRttExpired implements spec §4.G.
func (m *model) maybeMinRttExpired(event *CongestionEvent) bool {
	if !m.rttFilter.timestamp().IsValid() || event.EventTime < m.rttFilter.timestamp().Add(m.params.MinRttWin) {
		return false
	}
	if event.SampleMinRtt == InfiniteTimeDelta {
		return false
	}
	m.rttFilter.forceUpdate(event.SampleMinRtt, event.EventTime)
	return true
}

// cwndLimited implements spec §4.G.
func (m *model) cwndLimited(event *CongestionEvent) bool {
	priorBytesInFlight := event.BytesInFlight + event.BytesAcked + event.BytesLost
	return priorBytesInFlight >= event.PriorCwnd
}

func (m *model) postponeMinRttTimestamp(duration TimeDelta) {
	m.rttFilter.forceUpdate(m.MinRtt(), m.rttFilter.timestamp().Add(duration))
}

// bdp returns bandwidth-delay product in bytes at the given gain (1.0 if omitted by caller).
func (m *model) bdp(bw BitRate, gain float64) ByteCount {
	return bw.BytesOverDelta(TimeDelta(float64(m.rttFilter.get()) * gain))
}

func (m *model) MaxBw() BitRate          { return m.bwFilter.get() }
func (m *model) BwLowerBound() BitRate   { return m.bwLo }
func (m *model) LossEventsInRound() uint64 { return m.lossEventsInRound }
func (m *model) MinRtt() TimeDelta       { return m.rttFilter.get() }

// EstimatedBw is the bandwidth used for pacing/cwnd targets: the smaller of
// the observed max and the loss-adapted lower bound, matching the outer
// controller's "estimated_bw" references in spec §4.I.
func (m *model) EstimatedBw() BitRate {
	return minBandwidth(m.MaxBw(), m.BwLowerBound())
}

func (m *model) MaxAckHeight() ByteCount { return m.sampler.maxAckHeight.get() }

// NumAckAggregationEpochs is a host-visible stat (spec §8 scenario 7).
func (m *model) NumAckAggregationEpochs() uint64 { return m.sampler.maxAckHeight.NumEpochs() }

func (m *model) TotalBytesAcked() ByteCount { return m.sampler.totalBytesAcked }

func (m *model) SetInflightHighBound(inflightHi ByteCount) { m.inflightHi = inflightHi }
func (m *model) InflightHi() ByteCount                     { return m.inflightHi }
func (m *model) InflightLo() ByteCount                     { return m.inflightLo }
func (m *model) ClearBwLo()                                { m.bwLo = InfiniteBandwidth }
func (m *model) ClearInflightLo()                          { m.inflightLo = infiniteInflight }

func (m *model) SetPacingGain(gain float64) { m.pacingGain = gain }
func (m *model) SetCwndGain(gain float64)   { m.cwndGain = gain }
func (m *model) PacingGain() float64        { return m.pacingGain }
func (m *model) CwndGain() float64          { return m.cwndGain }

func (m *model) OnPktNeutered(seqNo uint64)      { m.sampler.onPktNeutered(seqNo) }
func (m *model) OnAppLimited()                   { m.sampler.onAppLimited() }
func (m *model) IsAppLimited() bool              { return m.sampler.isAppLimited() }
func (m *model) AdvanceMaxBwFilter()             { m.bwFilter.advance() }
