package congestion

// Params holds every tunable of the congestion controller, gathered into a
// single value so the whole stack (model, modes, controller) shares one
// configuration snapshot. Grounded on original_source/bbr_model.h's
// Bbrparams plus the constants scattered through bbr_algorithm.cpp's probe
// phases and spec §6's configuration table.
type Params struct {
	Beta              float64
	IgnoreInflightLo  bool

	StartupFullBwThreshold float64
	StartupFullBwRounds    uint64
	StartupFullLossCount   uint8
	ProbeBwFullLossCount   uint8
	LossThreshold          float64

	StartupCwndGain   float64
	StartupPacingGain float64
	DrainCwndGain     float64
	DrainPacingGain   float64

	ProbeBwCwndGain          float64
	ProbeBwProbeInflightGain float64
	ProbeBwProbeUpPacingGain float64
	ProbeBwProbeDownPacingGain float64
	ProbeBwDefaultPacingGain float64

	BwProbeRandRounds   int64
	BwProbeBaseDuration TimeDelta
	BwProbeRandDuration TimeDelta

	InflightHiHeadroomFraction float64
	MinRttWin                  TimeDelta

	Mss ByteCount

	ProbeBwProbeMaxRounds int64
	ProbeBwProbeRenoGain  float64

	ProbeRttDuration                   TimeDelta
	ProbeRttInflightTargetBdpFraction float64

	MinCwnd ByteCount

	// AckAggregationThreshold is the max-ack-height epoch-reset threshold
	// (spec §9 open question b); 2.0 matches the shipped default, tests may
	// lower it to 1.8 to match the original's tcp_bbr2.c comment.
	AckAggregationThreshold float64

	// AckTrackWindowRounds sizes the max-ack-height windowed filter, in rounds.
	AckTrackWindowRounds int64

	// LimitInflightHiByCwnd selects between cwnd and target_inflight as the
	// basis for handle_inflight_too_high's non-app-limited target.
	LimitInflightHiByCwnd bool

	// StartAsAppLimited seeds the bandwidth sampler's initial app-limited
	// flag (spec §9 supplemented feature; original hardcodes true).
	StartAsAppLimited bool

	InitialCwnd ByteCount
}

// DefaultParams returns the configuration table from spec §6.
func DefaultParams() Params {
	mss := ByteCount(1460)
	return Params{
		Beta:             0.3,
		IgnoreInflightLo: false,

		StartupFullBwThreshold: 1.25,
		StartupFullBwRounds:    3,
		StartupFullLossCount:   8,
		ProbeBwFullLossCount:   2,
		LossThreshold:          0.02,

		StartupCwndGain:   2.885,
		StartupPacingGain: 2.885,
		DrainCwndGain:     2.885,
		DrainPacingGain:   1.0 / 2.885,

		ProbeBwCwndGain:            2.0,
		ProbeBwProbeInflightGain:   1.25,
		ProbeBwProbeUpPacingGain:   1.25,
		ProbeBwProbeDownPacingGain: 0.75,
		ProbeBwDefaultPacingGain:   1.0,

		BwProbeRandRounds:   2,
		BwProbeBaseDuration: TimeDelta(2_000_000),
		BwProbeRandDuration: TimeDelta(1_000_000),

		InflightHiHeadroomFraction: 0.01,
		MinRttWin:                  TimeDelta(10_000_000),

		Mss: mss,

		ProbeBwProbeMaxRounds: 63,
		ProbeBwProbeRenoGain:  1.0,

		ProbeRttDuration:                  TimeDelta(200_000),
		ProbeRttInflightTargetBdpFraction: 0.5,

		MinCwnd: 4 * mss,

		AckAggregationThreshold: 2.0,
		AckTrackWindowRounds:    10,

		LimitInflightHiByCwnd: true,
		StartAsAppLimited:     true,

		InitialCwnd: 32 * mss,
	}
}

// RNG is the seedable uniform generator the controller draws from for
// probe-wait randomization. Exactly two draws happen per enterProbeDown
// call (spec §9), so tests can supply a fake that asserts that invariant.
type RNG interface {
	UniformUint32(n uint32) uint32
}
