package webrtc

import "time"

// SettingEngine carries the engine-level knobs that sit outside the W3C
// RTCConfiguration surface: tuning for the NACK generator/responder and
// jitter buffer this module runs internally, mirroring the real
// pion/webrtc SettingEngine's role as an escape hatch for behavior the
// public API has no dictionary field for.
//
// The zero value is every package default (nack.MaxNACK, nack.RingSize,
// jitterbuffer.DefaultLatency); a SettingEngine only needs to set the
// fields it wants to override.
type SettingEngine struct {
	nackMaxCount        uint8
	rtxRingSize         int
	jitterBufferLatency time.Duration
}

// SetNACKMaxCount overrides the number of times a receiver reports a given
// lost sequence number before giving up on it, in place of nack.MaxNACK.
func (e *SettingEngine) SetNACKMaxCount(count uint8) {
	e.nackMaxCount = count
}

// SetRTXRingSize overrides the number of most-recent outbound packets a
// sender retains for retransmission, in place of nack.RingSize.
func (e *SettingEngine) SetRTXRingSize(size int) {
	e.rtxRingSize = size
}

// SetJitterBufferLatency overrides the receive-side jitter buffer's
// gap/initial-wait timer duration, in place of jitterbuffer.DefaultLatency.
func (e *SettingEngine) SetJitterBufferLatency(d time.Duration) {
	e.jitterBufferLatency = d
}
