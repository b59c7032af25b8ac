package rtcpstats

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
)

// ReceiverRecorder tracks the per-SSRC inbound statistics needed to emit
// RFC 3550 Receiver Reports, per spec §4.7: cumulative lost count, the
// extended highest sequence number, the RFC 3550 §A.8 interarrival jitter
// estimate, and the last-SR bookkeeping for DLSR.
type ReceiverRecorder struct {
	mu sync.Mutex

	senderSSRC uint32
	ssrc       uint32
	clockRate  uint32

	haveBaseSeq bool
	baseSeq     uint16
	highest     int64 // extended highest sequence number received

	received  uint32 // total packets received
	expectedPrior uint32
	receivedPrior uint32

	haveLastArrival bool
	lastArrivalRTP  int64 // arrival time expressed in RTP clock units
	lastTransit     int64
	jitter          float64

	haveLastSR bool
	lastSRNTP  uint32 // middle 32 bits of the last SR's NTP timestamp
	lastSRRecv time.Time
}

// NewReceiverRecorder constructs a ReceiverRecorder for one inbound SSRC.
func NewReceiverRecorder(senderSSRC, ssrc uint32, clockRate uint32) *ReceiverRecorder {
	return &ReceiverRecorder{senderSSRC: senderSSRC, ssrc: ssrc, clockRate: clockRate}
}

// extend mirrors the jitter buffer's wrap-aware sequence extension.
func extend(highest int64, haveHighest bool, seq uint16) int64 {
	if !haveHighest {
		return int64(seq)
	}
	highCycle := highest &^ 0xFFFF
	highSeq := uint16(highest & 0xFFFF)
	delta := int32(seq) - int32(highSeq)
	switch {
	case delta < -0x7FFF:
		return highCycle + 0x10000 + int64(seq)
	case delta > 0x7FFF:
		return highCycle - 0x10000 + int64(seq)
	default:
		return highCycle + int64(seq)
	}
}

// OnPacketReceived records one inbound RTP packet's sequence number,
// RTP timestamp, and local arrival time, updating the extended highest
// sequence number and the interarrival jitter estimate.
func (r *ReceiverRecorder) OnPacketReceived(seq uint16, rtpTimestamp uint32, arrival time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.received++

	if !r.haveBaseSeq {
		r.haveBaseSeq = true
		r.baseSeq = seq
		r.highest = int64(seq)
	} else {
		idx := extend(r.highest, true, seq)
		if idx > r.highest {
			r.highest = idx
		}
	}

	arrivalRTP := int64(float64(arrival.UnixNano()) / 1e9 * float64(r.clockRate))
	transit := arrivalRTP - int64(rtpTimestamp)

	if r.haveLastArrival {
		d := transit - r.lastTransit
		if d < 0 {
			d = -d
		}
		r.jitter += (float64(d) - r.jitter) / 16
	}
	r.lastArrivalRTP = arrivalRTP
	r.lastTransit = transit
	r.haveLastArrival = true
}

// OnSenderReport records the receipt of a Sender Report for the DLSR/LSR
// fields of the next Receiver Report, per spec §4.7.
func (r *ReceiverRecorder) OnSenderReport(ntpTime uint64, received time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.haveLastSR = true
	r.lastSRNTP = uint32(ntpTime >> 16)
	r.lastSRRecv = received
}

// Report builds a ReceptionReport for "now", per RFC 3550 §6.4.1 as
// specialized by spec §4.7.
func (r *ReceiverRecorder) Report(now time.Time) rtcp.ReceptionReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	expected := uint32(r.highest-int64(r.baseSeq)) + 1
	var lost uint32
	if expected > r.received {
		lost = expected - r.received
	}

	expectedInterval := expected - r.expectedPrior
	receivedInterval := r.received - r.receivedPrior
	lostInterval := expectedInterval - receivedInterval
	r.expectedPrior = expected
	r.receivedPrior = r.received

	var fractionLost uint8
	if expectedInterval != 0 && lostInterval > 0 {
		fractionLost = uint8((lostInterval << 8) / expectedInterval)
	}

	var dlsr uint32
	if r.haveLastSR {
		dlsr = uint32(now.Sub(r.lastSRRecv).Seconds() * 65536)
	}

	return rtcp.ReceptionReport{
		SSRC:               r.ssrc,
		FractionLost:       fractionLost,
		TotalLost:          lost & 0xFFFFFF,
		LastSequenceNumber: uint32(r.highest) & 0xFFFFFFFF,
		Jitter:             uint32(r.jitter),
		LastSenderReport:   r.lastSRNTP,
		Delay:              dlsr,
	}
}

// ReceiverReport wraps Report in the containing RTCP packet addressed from
// senderSSRC, per spec §4.7.
func (r *ReceiverRecorder) ReceiverReport(now time.Time) *rtcp.ReceiverReport {
	return &rtcp.ReceiverReport{
		SSRC:    r.senderSSRC,
		Reports: []rtcp.ReceptionReport{r.Report(now)},
	}
}
