package congestion

import "time"

// DeliveryRate is a coarse, wall-clock throughput sample independent of
// the BBR core's own bandwidth estimate — used by the host's reporting
// tools to display observed throughput alongside Controller.Metrics().
// Adapted from the teacher's RateSample/Sampler pair.
type DeliveryRate struct {
	Delivered    int64
	DeliveredAt  time.Time
	FirstSentAt  time.Time
	Interval     time.Duration
	BytesAcked   int64
	IsAppLimited bool
}

// DeliveryMonitor accumulates a running delivered-bytes counter the way a
// dashboard would, without touching any BBR state.
type DeliveryMonitor struct {
	delivered   int64
	deliveredAt time.Time
	firstSentAt time.Time
	appLimited  bool
}

func NewDeliveryMonitor() *DeliveryMonitor {
	return &DeliveryMonitor{}
}

func (s *DeliveryMonitor) OnPacketSent(now time.Time, size int, isAppLimited bool) {
	if s.firstSentAt.IsZero() {
		s.firstSentAt = now
	}
	if isAppLimited {
		s.appLimited = true
	}
}

func (s *DeliveryMonitor) OnAck(now time.Time, ackedBytes int) DeliveryRate {
	s.delivered += int64(ackedBytes)

	rs := DeliveryRate{
		Delivered:    s.delivered,
		DeliveredAt:  now,
		FirstSentAt:  s.firstSentAt,
		Interval:     now.Sub(s.firstSentAt),
		BytesAcked:   int64(ackedBytes),
		IsAppLimited: s.appLimited,
	}

	if rs.Interval < time.Millisecond {
		rs.Interval = time.Millisecond
	}

	s.firstSentAt = now
	s.appLimited = false

	return rs
}

func (rs *DeliveryRate) BandwidthBps() float64 {
	if rs.Interval <= 0 {
		return 0
	}
	return float64(rs.BytesAcked) / rs.Interval.Seconds()
}

func (rs *DeliveryRate) BandwidthMbps() float64 {
	return rs.BandwidthBps() * 8 / (1024 * 1024)
}

func (rs *DeliveryRate) IsValid() bool {
	return rs.Interval > 0 && rs.BytesAcked > 0
}

func (s *DeliveryMonitor) Reset() {
	s.delivered = 0
	s.deliveredAt = time.Time{}
	s.firstSentAt = time.Time{}
	s.appLimited = false
}

func (s *DeliveryMonitor) GetDelivered() int64 { return s.delivered }
func (s *DeliveryMonitor) IsAppLimited() bool  { return s.appLimited }
