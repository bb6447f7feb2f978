package congestion

// probeRttMode briefly caps inflight to re-measure the true minimum RTT
// once the filtered estimate has gone stale. Grounded on
// original_source/bbr_probe_rtt.cpp/h (spec §4.H).
type probeRttMode struct {
	exitTime Timestamp
}

func (p *probeRttMode) isProbing() bool { return false }

func (p *probeRttMode) enter(now Timestamp, ce *CongestionEvent, ctx *modeContext) {
	ctx.model.SetPacingGain(1.0)
	ctx.model.SetCwndGain(1.0)
	p.exitTime = InvalidTimestamp
}

func (p *probeRttMode) leave(now Timestamp, ce *CongestionEvent) {}

func (p *probeRttMode) onCongestionEvent(ctx *modeContext, ce *CongestionEvent) BbrMode {
	if !p.exitTime.IsValid() {
		if ce.BytesInFlight <= p.inflightTarget(ctx) || ce.BytesInFlight <= ctx.minCwnd {
			p.exitTime = ce.EventTime.Add(ctx.params.ProbeRttDuration)
		}
		return ModeProbeRtt
	}
	if p.exitTime.Before(ce.EventTime) {
		return ModeProbeBw
	}
	return ModeProbeRtt
}

func (p *probeRttMode) onExitQuiescence(quiescenceStart, now Timestamp) BbrMode {
	if p.exitTime.Before(now) {
		return ModeProbeBw
	}
	return ModeProbeRtt
}

func (p *probeRttMode) inflightTarget(ctx *modeContext) ByteCount {
	return ctx.model.bdp(ctx.model.MaxBw(), ctx.params.ProbeRttInflightTargetBdpFraction)
}

func (p *probeRttMode) cwndUpperLimit(ctx *modeContext) ByteCount {
	upper := minByteCount(ctx.model.InflightLo(), ctx.model.inflightHiWithHeadroom())
	return minByteCount(upper, p.inflightTarget(ctx))
}
