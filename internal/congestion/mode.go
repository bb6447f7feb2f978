package congestion

// BbrMode tags which of the four top-level phases the controller is in.
// A tagged-variant dispatched via switch replaces the original's
// BBR_MODE_DISPATCH macro and virtual mode objects (spec §9 redesign
// note): none of the mode structs below hold a pointer back to the
// controller or to each other.
type BbrMode uint8

const (
	ModeStartup BbrMode = iota
	ModeDrain
	ModeProbeBw
	ModeProbeRtt
)

func (m BbrMode) String() string {
	switch m {
	case ModeStartup:
		return "STARTUP"
	case ModeDrain:
		return "DRAIN"
	case ModeProbeBw:
		return "PROBE_BW"
	case ModeProbeRtt:
		return "PROBE_RTT"
	default:
		return "UNKNOWN"
	}
}

// modeContext is the read-only slice of controller state a mode needs to
// make its decision, passed explicitly at every call instead of a
// back-pointer to the controller. Grounded on original_source's
// BbrAlgorithm members that bbr_startup.cpp/bbr_drain.cpp/
// bbr_probe_bw.cpp/bbr_probe_rtt.cpp reach through their bbr_ pointer for.
type modeContext struct {
	params         *Params
	model          *model
	cwnd           ByteCount
	minCwnd        ByteCount
	targetInflight ByteCount
	rng            RNG
}
