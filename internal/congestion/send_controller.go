package congestion

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

var debugLogger *zap.Logger

func init() {
	var err error
	debugLogger, err = zap.NewDevelopment()
	if err != nil {
		debugLogger = zap.NewNop()
	}
}

// SetDebugLogger sets the debug logger for congestion control.
func SetDebugLogger(logger *zap.Logger) { debugLogger = logger }

// SendController is the host-facing facade: it assigns the monotonic
// sequence numbers the sampler keys on, converts host wall-clock time
// into the core's microsecond Timestamp, drives the Pacer token bucket
// from Controller.PacingRate(), and keeps an independent DeliveryMonitor
// sample for dashboards that want a second, core-independent throughput
// reading. Grounded on the teacher's original send_controller.go shape.
type SendController struct {
	ctrl     *Controller
	pacer    *Pacer
	delivery *DeliveryMonitor

	epoch         time.Time
	nextSeqNo     uint64
	bytesInFlight ByteCount
	inflight      []inflightRecord
}

type inflightRecord struct {
	seqNo uint64
	bytes ByteCount
}

// NewSendController builds a facade around a fresh BBRv2 Controller at the
// given MTU and initial congestion window.
func NewSendController(mtu int, initialCwndBytes int) *SendController {
	params := DefaultParams()
	params.Mss = ByteCount(mtu)
	params.InitialCwnd = ByteCount(initialCwndBytes)
	params.MinCwnd = minByteCount(params.MinCwnd, params.InitialCwnd)

	return &SendController{
		ctrl:     NewController(params),
		pacer:    NewPacer(mtu),
		delivery: NewDeliveryMonitor(),
	}
}

func (sc *SendController) toTimestamp(now time.Time) Timestamp {
	if sc.epoch.IsZero() {
		sc.epoch = now
	}
	return Timestamp(now.Sub(sc.epoch).Microseconds())
}

// OnPacketSent records a send against both the BBRv2 core and the
// dashboard-facing delivery monitor, returning the sequence number
// assigned to this packet.
func (sc *SendController) OnPacketSent(now time.Time, size int, isAppLimited bool) uint64 {
	defer func() {
		if r := recover(); r != nil {
			debugLogger.Error("panic in SendController.OnPacketSent",
				zap.String("error", fmt.Sprintf("%v", r)), zap.Int("size", size))
			panic(r)
		}
	}()

	sc.nextSeqNo++
	seq := sc.nextSeqNo
	t := sc.toTimestamp(now)
	bytes := ByteCount(size)

	sc.bytesInFlight += bytes
	sc.inflight = append(sc.inflight, inflightRecord{seqNo: seq, bytes: bytes})

	sc.ctrl.OnPacketSent(seq, bytes, sc.bytesInFlight, t, true)
	if isAppLimited {
		sc.ctrl.OnAppLimited()
	}
	sc.delivery.OnPacketSent(now, size, isAppLimited)
	return seq
}

// popInflight removes send records from the front of the FIFO until at
// least targetBytes have been accounted for, returning the sequence
// number of the last record it consumed. The host here (a thin QUIC
// demonstration client, not a full ack-frame parser) only reports
// acked/lost byte counts, not which packets they cover, so oldest-first
// is the best correlation available.
func (sc *SendController) popInflight(targetBytes ByteCount) (lastSeq uint64, consumed ByteCount) {
	for consumed < targetBytes && len(sc.inflight) > 0 {
		rec := sc.inflight[0]
		sc.inflight = sc.inflight[1:]
		consumed += rec.bytes
		lastSeq = rec.seqNo
	}
	return lastSeq, consumed
}

// OnAck folds a batch of newly-acked bytes into the controller. The rtt
// argument is not used: the core derives RTT from the send and ack timestamps.
func (sc *SendController) OnAck(now time.Time, ackedBytes int, rtt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			debugLogger.Error("panic in SendController.OnAck",
				zap.String("error", fmt.Sprintf("%v", r)), zap.Int("ackedBytes", ackedBytes))
			panic(r)
		}
	}()

	seq, consumed := sc.popInflight(ByteCount(ackedBytes))
	if consumed == 0 {
		return
	}
	sc.bytesInFlight = sc.subSaturatingByteCount(sc.bytesInFlight, consumed)

	t := sc.toTimestamp(now)
	prior := sc.bytesInFlight + consumed
	acked := []AckedPacket{{SeqNo: seq, Bytes: consumed, ReceiveTime: t}}
	sc.ctrl.OnCongestionEvent(prior, t, acked, nil)

	sc.delivery.OnAck(now, int(consumed))
	sc.pacer.SetRateFromBitRate(sc.ctrl.PacingRate())
}

// OnLoss folds a batch of lost bytes into the controller, using the same
// oldest-first correlation as OnAck.
func (sc *SendController) OnLoss(bytesLost int) {
	if bytesLost <= 0 {
		return
	}
	seq, consumed := sc.popInflight(ByteCount(bytesLost))
	if consumed == 0 {
		return
	}
	sc.bytesInFlight = sc.subSaturatingByteCount(sc.bytesInFlight, consumed)

	now := time.Now()
	t := sc.toTimestamp(now)
	prior := sc.bytesInFlight + consumed
	lost := []LostPacket{{SeqNo: seq, Bytes: consumed}}
	sc.ctrl.OnCongestionEvent(prior, t, nil, lost)
	sc.pacer.SetRateFromBitRate(sc.ctrl.PacingRate())
}

// CanSend checks pacing and cwnd headroom together.
func (sc *SendController) CanSend(now time.Time, size int) bool {
	if !sc.pacer.Allow(now, size) {
		return false
	}
	return sc.ctrl.CanSend(sc.bytesInFlight) >= ByteCount(size)
}

// RemoveObsoletePackets forgets send-record bookkeeping below upTo.
func (sc *SendController) RemoveObsoletePackets(upTo uint64) {
	sc.ctrl.RemoveObsoletePackets(upTo)
	kept := sc.inflight[:0]
	for _, rec := range sc.inflight {
		if rec.seqNo >= upTo {
			kept = append(kept, rec)
		}
	}
	sc.inflight = kept
}

func (sc *SendController) GetCWND() int           { return int(sc.ctrl.Cwnd()) }
func (sc *SendController) GetPacingRate() int64   { return int64(sc.ctrl.PacingRate()) }
func (sc *SendController) GetBandwidth() float64  { return float64(sc.ctrl.Metrics().MaxBandwidth) }
func (sc *SendController) GetMinRTT() time.Duration {
	return time.Duration(sc.ctrl.MinRtt()) * time.Microsecond
}

// GetState returns a full metrics snapshot, the shape dashboards and the
// Prometheus/OTel wiring read from.
func (sc *SendController) GetState() Metrics { return sc.ctrl.Metrics() }

// GetAlgorithm is retained for callers that branch on algorithm name;
// this package implements exactly one, so it always returns "bbrv2".
func (sc *SendController) GetAlgorithm() string { return "bbrv2" }

func (sc *SendController) subSaturatingByteCount(a, b ByteCount) ByteCount {
	if b >= a {
		return 0
	}
	return a - b
}
