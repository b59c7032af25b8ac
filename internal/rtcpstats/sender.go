// Package rtcpstats implements the Sender Report and Receiver Report
// recorders of spec §4.6 and §4.7.
package rtcpstats

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
)

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// toNTP converts a wall-clock time to an RFC 3550 64-bit NTP timestamp.
func toNTP(t time.Time) uint64 {
	secs := uint64(t.Unix()+ntpEpochOffset) << 32
	frac := uint64(float64(t.Nanosecond()) * (1 << 32) / 1e9)
	return secs | frac
}

// SenderRecorder accumulates the outbound packet/octet counts and the
// clock mapping needed to emit RFC 3550 Sender Reports for one SSRC, per
// spec §4.6.
type SenderRecorder struct {
	mu sync.Mutex

	ssrc       uint32
	clockRate  uint32
	packets    uint32
	octets     uint32

	haveMapping   bool
	mappingNTP    time.Time
	mappingRTP    uint32
}

// NewSenderRecorder constructs a SenderRecorder for the given SSRC and
// codec clock rate.
func NewSenderRecorder(ssrc uint32, clockRate uint32) *SenderRecorder {
	return &SenderRecorder{ssrc: ssrc, clockRate: clockRate}
}

// OnPacketSent records one outbound RTP packet's size and RTP timestamp.
// The first call establishes the NTP<->RTP clock mapping used to
// extrapolate the sender report's rtp_timestamp field thereafter.
func (s *SenderRecorder) OnPacketSent(rtpTimestamp uint32, payloadLen int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packets++
	s.octets += uint32(payloadLen)

	if !s.haveMapping {
		s.haveMapping = true
		s.mappingNTP = now
		s.mappingRTP = rtpTimestamp
	}
}

// Report builds a Sender Report for "now", extrapolating the current RTP
// timestamp from the stored clock mapping (spec §4.6). If no packet has
// ever been sent, the mapping defaults to (now, 0).
func (s *SenderRecorder) Report(now time.Time) *rtcp.SenderReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	rtpTimestamp := s.mappingRTP
	if s.haveMapping {
		elapsed := now.Sub(s.mappingNTP).Seconds()
		rtpTimestamp = s.mappingRTP + uint32(elapsed*float64(s.clockRate))
	}

	return &rtcp.SenderReport{
		SSRC:        s.ssrc,
		NTPTime:     toNTP(now),
		RTPTime:     rtpTimestamp,
		PacketCount: s.packets,
		OctetCount:  s.octets,
	}
}
