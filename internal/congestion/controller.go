package congestion

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"go.uber.org/zap"
)

const maxModeChanges = 4

// Controller is the BBRv2 congestion controller: it owns the model, the
// four mode state machines, and the host-facing cwnd/pacing-rate outputs.
// Grounded on original_source/bbr_algorithm.cpp/h (component I, spec
// §4.I); the BBR_MODE_DISPATCH macro is replaced by an explicit switch
// over curMode, per spec §9's redesign note.
type Controller struct {
	params Params
	rng    RNG

	initCwnd ByteCount
	curCwnd  ByteCount
	pacingRate BitRate

	m *model

	curMode    BbrMode
	startup    startupMode
	drain      drainMode
	probeBw    probeBwMode
	probeRtt   probeRttMode

	lastQuiescenceStart Timestamp
}

// NewController builds a controller at the configuration's initial
// congestion window, gains pinned to STARTUP's values until the first
// mode transition.
func NewController(params Params) *Controller {
	m := newModel(&params, InfiniteTimeDelta, InvalidTimestamp, params.StartupCwndGain, params.StartupPacingGain)
	c := &Controller{
		params:              params,
		rng:                 NewDefaultRNG(),
		initCwnd:            params.InitialCwnd,
		curCwnd:             params.InitialCwnd,
		m:                   m,
		curMode:             ModeStartup,
		probeBw:             *newProbeBwMode(),
		lastQuiescenceStart: InvalidTimestamp,
	}
	return c
}

// SetRNG overrides the default crypto/rand-backed generator, used by
// tests that need deterministic probe-wait draws.
func (c *Controller) SetRNG(rng RNG) { c.rng = rng }

func (c *Controller) ctx() *modeContext {
	return &modeContext{
		params:         &c.params,
		model:          c.m,
		cwnd:           c.curCwnd,
		minCwnd:        c.params.MinCwnd,
		targetInflight: c.TargetCwnd(1.0),
		rng:            c.rng,
	}
}

// OnPacketSent records a send and, if the flow was idle, closes out the
// preceding quiescent period first.
func (c *Controller) OnPacketSent(seqNo uint64, bytes ByteCount, bytesInFlight ByteCount, t Timestamp, retransmittable bool) {
	if bytesInFlight == 0 {
		c.onExitQuiescence(t)
	}
	c.m.onPktSent(seqNo, bytes, bytesInFlight, t, retransmittable)
}

// OnCongestionEvent processes a batch of acks/losses through the model,
// then lets the current mode react, possibly transitioning modes up to
// maxModeChanges times within this single call.
func (c *Controller) OnCongestionEvent(priorInflight ByteCount, t Timestamp, acked []AckedPacket, lost []LostPacket) {
	ce := newCongestionEvent()
	ce.PriorCwnd = c.curCwnd
	ce.PriorBytesInFlight = priorInflight
	ce.IsProbingForBandwidth = c.isProbing()

	c.m.onCongestionEvent(acked, lost, ce, t)

	changesLeft := maxModeChanges
	for {
		next := c.dispatchOnCongestionEvent(priorInflight, ce)
		if next == c.curMode {
			break
		}

		c.dispatchLeave(t, ce)
		c.curMode = next
		c.dispatchEnter(t, ce)

		changesLeft--
		if changesLeft <= 0 {
			debugLogger.Warn("bbr: mode-change budget exhausted in one congestion event", zap.Int("budget", maxModeChanges))
			break
		}
	}

	c.updatePacingRate(ce.BytesAcked)
	c.updateCwnd(ce.BytesAcked)

	if ce.BytesInFlight == 0 {
		c.onExitQuiescence(t)
	}
}

// OnPktNeutered forgets a packet's send record without treating it as lost.
func (c *Controller) OnPktNeutered(seqNo uint64) { c.m.OnPktNeutered(seqNo) }

// RemoveObsoletePackets releases send records for everything below upTo.
func (c *Controller) RemoveObsoletePackets(upTo uint64) { c.m.endCongestionEvent(upTo) }

// OnAppLimited marks the flow as app-limited from the most recently sent packet onward.
func (c *Controller) OnAppLimited() { c.m.OnAppLimited() }

func (c *Controller) IsAppLimited() bool { return c.m.IsAppLimited() }

// CanSend returns how many more bytes may be sent right now.
func (c *Controller) CanSend(bytesInFlight ByteCount) ByteCount {
	if bytesInFlight > c.curCwnd {
		return 0
	}
	return c.curCwnd - bytesInFlight
}

func (c *Controller) Cwnd() ByteCount      { return c.curCwnd }
func (c *Controller) PacingRate() BitRate  { return c.pacingRate }
func (c *Controller) MinRtt() TimeDelta    { return c.m.MinRtt() }
func (c *Controller) Mode() BbrMode        { return c.curMode }

func (c *Controller) isProbing() bool {
	switch c.curMode {
	case ModeStartup:
		return c.startup.isProbing()
	case ModeDrain:
		return c.drain.isProbing()
	case ModeProbeBw:
		return c.probeBw.isProbing()
	default:
		return false
	}
}

func (c *Controller) dispatchOnCongestionEvent(priorInflight ByteCount, ce *CongestionEvent) BbrMode {
	ctx := c.ctx()
	switch c.curMode {
	case ModeStartup:
		return c.startup.onCongestionEvent(ctx, ce)
	case ModeDrain:
		return c.drain.onCongestionEvent(ctx, ce)
	case ModeProbeBw:
		return c.probeBw.onCongestionEvent(ctx, priorInflight, ce)
	case ModeProbeRtt:
		return c.probeRtt.onCongestionEvent(ctx, ce)
	default:
		return c.curMode
	}
}

func (c *Controller) dispatchLeave(t Timestamp, ce *CongestionEvent) {
	switch c.curMode {
	case ModeStartup:
		c.startup.leave(t, ce)
	case ModeDrain:
		c.drain.leave(t, ce)
	case ModeProbeBw:
		c.probeBw.leave(t, ce)
	case ModeProbeRtt:
		c.probeRtt.leave(t, ce)
	}
}

func (c *Controller) dispatchEnter(t Timestamp, ce *CongestionEvent) {
	ctx := c.ctx()
	switch c.curMode {
	case ModeStartup:
		c.startup.enter(t, ce)
	case ModeDrain:
		c.drain.enter(t, ce)
	case ModeProbeBw:
		c.probeBw.enter(t, ce, ctx)
	case ModeProbeRtt:
		c.probeRtt.enter(t, ce, ctx)
	}
}

func (c *Controller) cwndUpperLimit() ByteCount {
	ctx := c.ctx()
	switch c.curMode {
	case ModeStartup:
		return c.startup.cwndUpperLimit(ctx)
	case ModeDrain:
		return c.drain.cwndUpperLimit(ctx)
	case ModeProbeBw:
		return c.probeBw.cwndUpperLimit(ctx)
	case ModeProbeRtt:
		return c.probeRtt.cwndUpperLimit(ctx)
	default:
		return infiniteInflight
	}
}

// updatePacingRate implements spec §4.I.
func (c *Controller) updatePacingRate(bytesAcked ByteCount) {
	if c.m.EstimatedBw() == ZeroBandwidth {
		return
	}

	if c.m.TotalBytesAcked() == bytesAcked {
		// First ACK: cwnd is still the initial window.
		c.pacingRate = Bandwidth(c.curCwnd, c.m.MinRtt())
		return
	}

	target := BitRate(c.m.PacingGain() * float64(c.m.EstimatedBw()))
	if c.startup.fullBwReachedFlag() {
		c.pacingRate = target
		return
	}
	if target > c.pacingRate {
		c.pacingRate = target
	}
}

// updateCwnd implements spec §4.I.
func (c *Controller) updateCwnd(bytesAcked ByteCount) {
	priorCwnd := c.curCwnd
	target := c.TargetCwnd(c.m.CwndGain())

	if c.startup.fullBwReachedFlag() {
		target += c.m.MaxAckHeight()
		c.curCwnd = minByteCount(priorCwnd+bytesAcked, target)
	} else if priorCwnd < target || priorCwnd < 2*c.initCwnd {
		c.curCwnd = priorCwnd + bytesAcked
	}

	c.curCwnd = minByteCount(c.curCwnd, c.cwndUpperLimit())
	c.curCwnd = maxByteCount(c.curCwnd, c.params.MinCwnd)
}

// TargetCwnd implements spec §4.I's target_cwnd(gain).
func (c *Controller) TargetCwnd(gain float64) ByteCount {
	return maxByteCount(c.m.bdp(c.m.EstimatedBw(), gain), c.params.MinCwnd)
}

func (c *Controller) onExitQuiescence(t Timestamp) {
	if !c.lastQuiescenceStart.IsValid() {
		return
	}
	quiescenceStart := c.lastQuiescenceStart
	if t < quiescenceStart {
		quiescenceStart = t
	}

	next := c.dispatchOnExitQuiescence(quiescenceStart, t)
	if next != c.curMode {
		c.dispatchLeave(t, nil)
		c.curMode = next
		c.dispatchEnter(t, nil)
	}
	c.lastQuiescenceStart = InvalidTimestamp
}

func (c *Controller) dispatchOnExitQuiescence(quiescenceStart, now Timestamp) BbrMode {
	switch c.curMode {
	case ModeStartup:
		return c.startup.onExitQuiescence(quiescenceStart, now)
	case ModeDrain:
		return c.drain.onExitQuiescence(quiescenceStart, now)
	case ModeProbeBw:
		return c.probeBw.onExitQuiescence(quiescenceStart, now)
	case ModeProbeRtt:
		return c.probeRtt.onExitQuiescence(quiescenceStart, now)
	default:
		return c.curMode
	}
}

// Metrics is a point-in-time snapshot for the host's dashboards, shaped
// after the teacher's flat metrics struct but carrying the real model
// state instead of a toy controller's.
type Metrics struct {
	Mode          string
	Cwnd          ByteCount
	PacingRate    BitRate
	MinRtt        TimeDelta
	MaxBandwidth  BitRate
	BwLo          BitRate
	InflightHi    ByteCount
	InflightLo    ByteCount
	RoundTripCount uint64
	AppLimited    bool
	MaxAckHeight  ByteCount
	AckAggregationEpochs uint64
}

func (c *Controller) Metrics() Metrics {
	return Metrics{
		Mode:           c.curMode.String(),
		Cwnd:           c.curCwnd,
		PacingRate:     c.pacingRate,
		MinRtt:         c.m.MinRtt(),
		MaxBandwidth:   c.m.MaxBw(),
		BwLo:           c.m.BwLowerBound(),
		InflightHi:     c.m.InflightHi(),
		InflightLo:     c.m.InflightLo(),
		RoundTripCount: c.m.rounds.roundTripCount(),
		AppLimited:     c.m.IsAppLimited(),
		MaxAckHeight:   c.m.MaxAckHeight(),
		AckAggregationEpochs: c.m.NumAckAggregationEpochs(),
	}
}

// defaultRNG draws uniform values from crypto/rand, guarded by a mutex
// since the controller contract allows concurrent read access to metrics
// even though mutation must be single-threaded (spec §5).
type defaultRNG struct {
	mu sync.Mutex
}

// NewDefaultRNG returns the controller's default randomness source.
func NewDefaultRNG() RNG { return &defaultRNG{} }

func (r *defaultRNG) UniformUint32(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		debugLogger.Warn("bbr: crypto/rand read failed, falling back to zero draw", zap.Error(err))
		return 0
	}
	return binary.BigEndian.Uint32(buf[:]) % n
}
