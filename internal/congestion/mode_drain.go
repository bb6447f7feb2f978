package congestion

// drainMode follows STARTUP: pacing gain drops below 1 to empty the queue
// built up while searching for the bottleneck. Grounded on
// original_source/bbr_drain.cpp/h (spec §4.H).
type drainMode struct{}

func (d *drainMode) isProbing() bool { return false }

func (d *drainMode) onCongestionEvent(ctx *modeContext, ce *CongestionEvent) BbrMode {
	ctx.model.SetPacingGain(ctx.params.DrainPacingGain)
	ctx.model.SetCwndGain(ctx.params.DrainCwndGain)

	target := d.drainTarget(ctx)
	if ce.BytesInFlight <= target {
		return ModeProbeBw
	}
	return ModeDrain
}

func (d *drainMode) drainTarget(ctx *modeContext) ByteCount {
	bdp := ctx.model.bdp(ctx.model.MaxBw(), 1.0)
	return maxByteCount(bdp, ctx.minCwnd)
}

func (d *drainMode) enter(now Timestamp, ce *CongestionEvent) {}
func (d *drainMode) leave(now Timestamp, ce *CongestionEvent) {}

func (d *drainMode) cwndUpperLimit(ctx *modeContext) ByteCount { return ctx.model.InflightLo() }

func (d *drainMode) onExitQuiescence(quiescenceStart, now Timestamp) BbrMode { return ModeDrain }
