package congestion

import "math"

// Timestamp is a monotonic microsecond counter. The host transport drives
// time explicitly by passing it into every entry point; the core never
// reads the wall clock itself.
type Timestamp int64

// TimeDelta is a signed microsecond duration.
type TimeDelta int64

// ByteCount counts bytes (payload sizes, totals, windows).
type ByteCount uint64

// BitRate is bits per second.
type BitRate int64

const (
	// InvalidTimestamp marks a Timestamp that was never set.
	InvalidTimestamp = Timestamp(math.MinInt64)
	// InfiniteTimestamp is the "never" sentinel used by PROBE_RTT's exit_time.
	InfiniteTimestamp = Timestamp(math.MaxInt64)

	// ZeroTimeDelta is the zero duration, spelled out for readability at call sites.
	ZeroTimeDelta = TimeDelta(0)
	// InfiniteTimeDelta represents an unbounded/never-measured duration.
	InfiniteTimeDelta = TimeDelta(math.MaxInt64)
	// MinusInfiniteTimeDelta is the negative counterpart, used as a seed for min-reductions.
	MinusInfiniteTimeDelta = TimeDelta(math.MinInt64)

	// ZeroBandwidth is an explicit zero rate.
	ZeroBandwidth = BitRate(0)
	// InfiniteBandwidth marks a rate that should never gate sending (e.g. the
	// very first bandwidth sample, where send_rate is defined as +inf).
	InfiniteBandwidth = BitRate(math.MaxInt64)
)

// IsValid reports whether t was ever assigned a real value.
func (t Timestamp) IsValid() bool { return t != InvalidTimestamp }

// IsInfinite reports the "never happens" sentinel.
func (t Timestamp) IsInfinite() bool { return t == InfiniteTimestamp }

// Add returns t+d, saturating at the infinite sentinels instead of overflowing.
func (t Timestamp) Add(d TimeDelta) Timestamp {
	if t.IsInfinite() || d == InfiniteTimeDelta {
		return InfiniteTimestamp
	}
	if !t.IsValid() || d == MinusInfiniteTimeDelta {
		return InvalidTimestamp
	}
	sum := int64(t) + int64(d)
	if sum < int64(InvalidTimestamp)+1 {
		return InvalidTimestamp
	}
	if sum > int64(InfiniteTimestamp)-1 {
		return InfiniteTimestamp
	}
	return Timestamp(sum)
}

// Sub returns t-o as a TimeDelta.
func (t Timestamp) Sub(o Timestamp) TimeDelta {
	if !t.IsValid() || !o.IsValid() {
		return MinusInfiniteTimeDelta
	}
	if t.IsInfinite() || o.IsInfinite() {
		if t.IsInfinite() && o.IsInfinite() {
			return ZeroTimeDelta
		}
		if t.IsInfinite() {
			return InfiniteTimeDelta
		}
		return MinusInfiniteTimeDelta
	}
	return TimeDelta(int64(t) - int64(o))
}

// Before reports t < o, treating invalid timestamps as never "before".
func (t Timestamp) Before(o Timestamp) bool {
	return t.IsValid() && o.IsValid() && t < o
}

// IsInfinite reports the saturated-duration sentinels.
func (d TimeDelta) IsInfinite() bool {
	return d == InfiniteTimeDelta || d == MinusInfiniteTimeDelta
}

// Seconds converts the microsecond delta to a float64 of seconds.
func (d TimeDelta) Seconds() float64 {
	return float64(d) / 1e6
}

// Bandwidth computes bytes/duration, returning InfiniteBandwidth when the
// duration is non-positive (per spec §7's numeric-degenerate policy: the
// sample is still produced, just carrying a sentinel rate).
func Bandwidth(bytes ByteCount, d TimeDelta) BitRate {
	if d <= 0 || d.IsInfinite() {
		return InfiniteBandwidth
	}
	bits := float64(bytes) * 8.0
	return BitRate(bits * 1e6 / float64(d))
}

// BytesOverDelta computes rate*duration, in bytes.
func (bw BitRate) BytesOverDelta(d TimeDelta) ByteCount {
	if bw <= 0 || d <= 0 {
		return 0
	}
	if bw == InfiniteBandwidth || d.IsInfinite() {
		return ByteCount(math.MaxInt64)
	}
	bytes := float64(bw) * d.Seconds() / 8.0
	if bytes < 0 {
		return 0
	}
	return ByteCount(bytes)
}

// TimeDeltaFor computes bytes/rate, as a duration.
func TimeDeltaFor(bytes ByteCount, bw BitRate) TimeDelta {
	if bw <= 0 {
		return InfiniteTimeDelta
	}
	seconds := float64(bytes) * 8.0 / float64(bw)
	return TimeDelta(seconds * 1e6)
}

// IsValid reports whether bw carries a real measurement.
func (bw BitRate) IsValid() bool { return bw != InfiniteBandwidth }

func minBandwidth(a, b BitRate) BitRate {
	if a < b {
		return a
	}
	return b
}

func maxBandwidth(a, b BitRate) BitRate {
	if a > b {
		return a
	}
	return b
}

func minTimeDelta(a, b TimeDelta) TimeDelta {
	if a < b {
		return a
	}
	return b
}

func maxByteCount(a, b ByteCount) ByteCount {
	if a > b {
		return a
	}
	return b
}

func minByteCount(a, b ByteCount) ByteCount {
	if a < b {
		return a
	}
	return b
}
