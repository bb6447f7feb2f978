package congestion

// startupMode is the opening phase: gains pinned high, driving for the
// bottleneck bandwidth until growth flattens or losses get excessive.
// Grounded on original_source/bbr_startup.cpp/h (spec §4.H).
type startupMode struct {
	fullBwReached        bool
	fullBwBaseline       BitRate
	roundsWithoutBwGrowth uint64
}

func (s *startupMode) isProbing() bool     { return true }
func (s *startupMode) fullBwReachedFlag() bool { return s.fullBwReached }

func (s *startupMode) onCongestionEvent(ctx *modeContext, ce *CongestionEvent) BbrMode {
	s.checkFullBwReached(ctx, ce)
	s.checkExcessiveLosses(ctx, ce)

	ctx.model.SetCwndGain(ctx.params.StartupCwndGain)
	ctx.model.SetPacingGain(ctx.params.StartupPacingGain)

	if s.fullBwReached {
		return ModeDrain
	}
	return ModeStartup
}

// checkFullBwReached follows spec §4.H's literal if/else wording (update
// baseline and reset the counter on growth, else increment it) rather than
// the unconditional post-reset increment in the original source.
func (s *startupMode) checkFullBwReached(ctx *modeContext, ce *CongestionEvent) {
	if s.fullBwReached || !ce.EndOfRoundTrip || ce.LastSampleIsAppLimited {
		return
	}
	threshold := BitRate(float64(s.fullBwBaseline) * ctx.params.StartupFullBwThreshold)
	curMaxBw := ctx.model.MaxBw()
	if curMaxBw >= threshold {
		s.fullBwBaseline = curMaxBw
		s.roundsWithoutBwGrowth = 0
	} else {
		s.roundsWithoutBwGrowth++
	}
	s.fullBwReached = s.roundsWithoutBwGrowth >= ctx.params.StartupFullBwRounds
}

func (s *startupMode) checkExcessiveLosses(ctx *modeContext, ce *CongestionEvent) {
	if s.fullBwReached {
		return
	}
	if !ce.EndOfRoundTrip {
		return
	}
	if ctx.model.LossEventsInRound() >= uint64(ctx.params.StartupFullLossCount) && ctx.model.isInflightTooHigh(ce) {
		ctx.model.SetInflightHighBound(ctx.model.bdp(ctx.model.MaxBw(), 1.0))
		s.fullBwReached = true
	}
}

func (s *startupMode) enter(now Timestamp, ce *CongestionEvent) {}
func (s *startupMode) leave(now Timestamp, ce *CongestionEvent) {}

func (s *startupMode) cwndUpperLimit(ctx *modeContext) ByteCount { return infiniteInflight }

func (s *startupMode) onExitQuiescence(quiescenceStart, now Timestamp) BbrMode { return ModeStartup }
