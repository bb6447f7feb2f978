package congestion

// probeBwCyclePhase is PROBE_BW's internal sub-phase.
type probeBwCyclePhase uint8

const (
	probeBwNotStarted probeBwCyclePhase = iota
	probeBwUp
	probeBwDown
	probeBwCruise
	probeBwRefill
)

type adaptUpperBoundsResult uint8

const (
	adaptOk adaptUpperBoundsResult = iota
	adaptProbedTooHigh
	adaptInflightHighNotSet
	adaptInvalidSample
)

// probeBwMode cycles through DOWN → CRUISE → REFILL → UP, continually
// re-probing for more bandwidth while keeping queueing bounded. Grounded
// on original_source/bbr_probe_bw.cpp/h (spec §4.H), the largest and most
// stateful of the four modes.
type probeBwMode struct {
	phase          probeBwCyclePhase
	cycleStartTime Timestamp
	roundsInPhase  uint64
	phaseStartTime Timestamp
	roundsSinceProbe uint64
	probeWaitTime  TimeDelta
	probeUpRounds  uint64
	probeUpBytes   ByteCount
	probeUpAcked   ByteCount
	hasAdvancedMaxBw bool
	isSampleFromProbing bool

	lastCycleProbedTooHigh    bool
	lastCycleStoppedRiskyProbe bool
}

func newProbeBwMode() *probeBwMode {
	return &probeBwMode{probeUpBytes: infiniteInflight}
}

func (p *probeBwMode) isProbing() bool {
	return p.phase == probeBwRefill || p.phase == probeBwUp
}

func (p *probeBwMode) enter(now Timestamp, ce *CongestionEvent, ctx *modeContext) {
	if p.phase == probeBwNotStarted {
		p.enterProbeDown(false, false, now, ctx)
		return
	}
	p.cycleStartTime = now
	switch p.phase {
	case probeBwCruise:
		p.enterProbeCruise(now, ctx)
	case probeBwRefill:
		p.enterProbeRefill(p.probeUpRounds, now, ctx)
	}
}

func (p *probeBwMode) leave(now Timestamp, ce *CongestionEvent) {}

func (p *probeBwMode) onCongestionEvent(ctx *modeContext, priorInflight ByteCount, ce *CongestionEvent) BbrMode {
	if ce.EndOfRoundTrip {
		if p.cycleStartTime != ce.EventTime {
			p.roundsSinceProbe++
		}
		if p.phaseStartTime != ce.EventTime {
			p.roundsInPhase++
		}
	}

	switchToProbeRtt := false

	switch p.phase {
	case probeBwUp:
		p.updateProbeUp(ctx, priorInflight, ce)
	case probeBwDown:
		p.updateProbeDown(ctx, priorInflight, ce)
		if p.phase != probeBwDown && ctx.model.maybeMinRttExpired(ce) {
			switchToProbeRtt = true
		}
	case probeBwCruise:
		p.updateProbeCruise(ctx, ce)
	case probeBwRefill:
		p.updateProbeRefill(ctx, ce)
	}

	if !switchToProbeRtt {
		ctx.model.SetPacingGain(p.pacingGain(ctx))
		ctx.model.SetCwndGain(ctx.params.ProbeBwCwndGain)
	}

	if switchToProbeRtt {
		return ModeProbeRtt
	}
	return ModeProbeBw
}

func (p *probeBwMode) enterProbeDown(probedTooHigh, stoppedRiskyProbe bool, now Timestamp, ctx *modeContext) {
	p.lastCycleProbedTooHigh = probedTooHigh
	p.lastCycleStoppedRiskyProbe = stoppedRiskyProbe

	p.cycleStartTime = now
	p.phase = probeBwDown
	p.roundsInPhase = 0
	p.phaseStartTime = now

	// bbr2_pick_probe_wait: exactly two draws from the RNG.
	p.roundsSinceProbe = uint64(ctx.rng.UniformUint32(uint32(ctx.params.BwProbeRandRounds)))
	p.probeWaitTime = ctx.params.BwProbeBaseDuration + TimeDelta(ctx.rng.UniformUint32(uint32(ctx.params.BwProbeRandDuration)))

	p.probeUpBytes = infiniteInflight
	p.hasAdvancedMaxBw = false
	ctx.model.restartRound()
}

func (p *probeBwMode) exitProbeDown(ctx *modeContext) {
	if !p.hasAdvancedMaxBw {
		ctx.model.AdvanceMaxBwFilter()
		p.hasAdvancedMaxBw = true
	}
}

func (p *probeBwMode) enterProbeUp(now Timestamp, ctx *modeContext) {
	p.phase = probeBwUp
	p.roundsInPhase = 0
	p.phaseStartTime = now
	p.isSampleFromProbing = true
	p.raiseInflightHi(ctx)
	ctx.model.restartRound()
}

func (p *probeBwMode) enterProbeCruise(now Timestamp, ctx *modeContext) {
	if p.phase == probeBwDown {
		p.exitProbeDown(ctx)
	}
	ctx.model.capInflightLo(ctx.model.InflightHi())
	p.phase = probeBwCruise
	p.roundsInPhase = 0
	p.phaseStartTime = now
	p.isSampleFromProbing = false
}

func (p *probeBwMode) enterProbeRefill(probeUpRounds uint64, now Timestamp, ctx *modeContext) {
	if p.phase == probeBwDown {
		p.exitProbeDown(ctx)
	}
	p.phase = probeBwRefill
	p.roundsInPhase = 0
	p.phaseStartTime = now
	p.isSampleFromProbing = false
	p.lastCycleStoppedRiskyProbe = false

	ctx.model.ClearBwLo()
	ctx.model.ClearInflightLo()
	p.probeUpRounds = probeUpRounds
	p.probeUpAcked = 0
	ctx.model.restartRound()
}

func (p *probeBwMode) raiseInflightHi(ctx *modeContext) {
	growthThisRound := ByteCount(1) << p.probeUpRounds
	if p.probeUpRounds+1 < 30 {
		p.probeUpRounds++
	} else {
		p.probeUpRounds = 30
	}

	probeUpBytes := ctx.cwnd / growthThisRound
	p.probeUpBytes = maxByteCount(probeUpBytes, ctx.params.Mss)
}

func (p *probeBwMode) updateProbeDown(ctx *modeContext, priorInflight ByteCount, ce *CongestionEvent) {
	if p.roundsInPhase == 1 && ce.EndOfRoundTrip {
		p.isSampleFromProbing = false

		if !ce.LastSampleIsAppLimited {
			// Our current bw sample is our best recent chance at finding
			// the flow's highest available bandwidth: forget last cycle's
			// samples by advancing the window now.
			ctx.model.AdvanceMaxBwFilter()
			p.hasAdvancedMaxBw = true
		}

		if p.lastCycleStoppedRiskyProbe && !p.lastCycleProbedTooHigh {
			p.enterProbeRefill(0, ce.EventTime, ctx)
			return
		}
	}

	p.maybeAdaptUpperBounds(ctx, ce)

	if p.isTimeToProbeBw(ctx, ce) {
		p.enterProbeRefill(0, ce.EventTime, ctx)
		return
	}

	if p.hasStayedLongEnoughInProbeDown(ctx, ce) {
		p.enterProbeCruise(ce.EventTime, ctx)
		return
	}

	inflightWithHeadroom := ctx.model.inflightHiWithHeadroom()
	if priorInflight > inflightWithHeadroom {
		return
	}

	bdp := ctx.model.bdp(ctx.model.MaxBw(), 1.0)
	if priorInflight < bdp {
		p.enterProbeCruise(ce.EventTime, ctx)
	}
}

func (p *probeBwMode) updateProbeUp(ctx *modeContext, priorInflight ByteCount, ce *CongestionEvent) {
	if p.maybeAdaptUpperBounds(ctx, ce) == adaptProbedTooHigh {
		p.enterProbeDown(true, false, ce.EventTime, ctx)
		return
	}
	p.probeInflightHighUpward(ctx, ce)

	isRisky := false
	isQueuing := false

	if p.lastCycleProbedTooHigh && priorInflight >= ctx.model.InflightHi() {
		isRisky = true
	} else if p.roundsInPhase > 0 {
		bdp := ctx.model.bdp(ctx.model.MaxBw(), 1.0)
		queuingThresholdExtra := 2 * ctx.params.Mss
		queuingThreshold := ByteCount(ctx.params.ProbeBwProbeInflightGain*float64(bdp)) + queuingThresholdExtra
		isQueuing = priorInflight >= queuingThreshold
	}

	if isRisky || isQueuing {
		p.enterProbeDown(false, isRisky, ce.EventTime, ctx)
	}
}

func (p *probeBwMode) updateProbeCruise(ctx *modeContext, ce *CongestionEvent) {
	p.maybeAdaptUpperBounds(ctx, ce)
	if p.isTimeToProbeBw(ctx, ce) {
		p.enterProbeRefill(0, ce.EventTime, ctx)
	}
}

func (p *probeBwMode) updateProbeRefill(ctx *modeContext, ce *CongestionEvent) {
	p.maybeAdaptUpperBounds(ctx, ce)
	if p.roundsInPhase > 0 && ce.EndOfRoundTrip {
		p.enterProbeUp(ce.EventTime, ctx)
	}
}

func (p *probeBwMode) probeInflightHighUpward(ctx *modeContext, ce *CongestionEvent) {
	if !ctx.model.cwndLimited(ce) {
		return
	}
	if ce.PriorCwnd < ctx.model.InflightHi() {
		return
	}

	p.probeUpAcked += ce.BytesAcked
	if p.probeUpAcked >= p.probeUpBytes {
		delta := p.probeUpAcked / p.probeUpBytes
		p.probeUpAcked -= delta * p.probeUpBytes
		newInflightHi := ctx.model.InflightHi() + delta*ctx.params.Mss
		if newInflightHi > ctx.model.InflightHi() {
			ctx.model.SetInflightHighBound(newInflightHi)
		}
	}

	if ce.EndOfRoundTrip {
		p.raiseInflightHi(ctx)
	}
}

func (p *probeBwMode) maybeAdaptUpperBounds(ctx *modeContext, ce *CongestionEvent) adaptUpperBoundsResult {
	sendState := ce.LastPacketSendState
	if !sendState.IsValid {
		return adaptInvalidSample
	}
	hasEnoughLossEvents := ctx.model.LossEventsInRound() >= uint64(ctx.params.ProbeBwFullLossCount)
	if ctx.model.isInflightTooHigh(ce) && hasEnoughLossEvents {
		if p.isSampleFromProbing {
			p.handleInflightTooHigh(ctx, sendState.IsAppLimited, inflightAtSend(sendState))
			return adaptProbedTooHigh
		}
		return adaptOk
	}

	if ctx.model.InflightHi() == infiniteInflight {
		return adaptInflightHighNotSet
	}

	inflightAtSendVal := inflightAtSend(sendState)
	if inflightAtSendVal > ctx.model.InflightHi() {
		ctx.model.SetInflightHighBound(inflightAtSendVal)
	}
	return adaptOk
}

func (p *probeBwMode) handleInflightTooHigh(ctx *modeContext, appLimited bool, bytesInflight ByteCount) {
	p.isSampleFromProbing = false
	if appLimited {
		return
	}
	var target ByteCount
	if ctx.params.LimitInflightHiByCwnd {
		cwndTarget := ByteCount(float64(ctx.cwnd) * (1 - ctx.params.Beta))
		target = cwndTarget
	} else {
		target = ByteCount(float64(ctx.targetInflight) * (1 - ctx.params.Beta))
	}
	ctx.model.SetInflightHighBound(maxByteCount(bytesInflight, target))
}

func (p *probeBwMode) isTimeToProbeBw(ctx *modeContext, ce *CongestionEvent) bool {
	if ce.EventTime.Sub(p.cycleStartTime) > p.probeWaitTime {
		return true
	}
	return p.isTimeToProbeForRenoCoexistence(ctx, 1.0)
}

func (p *probeBwMode) isTimeToProbeForRenoCoexistence(ctx *modeContext, probeWaitFraction float64) bool {
	rounds := uint64(ctx.params.ProbeBwProbeMaxRounds)
	if ctx.params.ProbeBwProbeRenoGain > 0.0 {
		renoRounds := uint64(ctx.params.ProbeBwProbeRenoGain * float64(ctx.targetInflight) / float64(ctx.params.Mss))
		if renoRounds < rounds {
			rounds = renoRounds
		}
	}
	return float64(p.roundsSinceProbe) >= float64(rounds)*probeWaitFraction
}

func (p *probeBwMode) hasStayedLongEnoughInProbeDown(ctx *modeContext, ce *CongestionEvent) bool {
	return ce.EventTime.Sub(p.cycleStartTime) > ctx.model.MinRtt()
}

func (p *probeBwMode) pacingGain(ctx *modeContext) float64 {
	switch p.phase {
	case probeBwUp:
		return ctx.params.ProbeBwProbeUpPacingGain
	case probeBwDown:
		return ctx.params.ProbeBwProbeDownPacingGain
	default:
		return ctx.params.ProbeBwDefaultPacingGain
	}
}

func (p *probeBwMode) onExitQuiescence(quiescenceStart, now Timestamp) BbrMode { return ModeProbeBw }

func (p *probeBwMode) cwndUpperLimit(ctx *modeContext) ByteCount { return infiniteInflight }
