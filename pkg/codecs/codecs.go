// Package codecs implements the payloader/depayloader pipelines of
// spec §4.8: VP8, H264, Opus, and telephone-event (DTMF).
package codecs

import "strings"

// Payloader fragments one encoded frame into RTP payloads no larger than
// mtu bytes each. SSRC, sequence number, and RTP timestamp are stamped by
// the sender, not the payloader.
type Payloader interface {
	Payload(mtu uint16, frame []byte) [][]byte
}

// Depayloader extracts the media payload carried by one RTP packet's
// payload bytes.
type Depayloader interface {
	Unmarshal(payload []byte) ([]byte, error)
}

// NewDepayloader returns the Depayloader for mimeType (e.g. "video/VP8"),
// or nil if mimeType has none (telephone-event is depayloaded separately,
// via TelephoneEventDepayloader's richer signature, and RTX packets carry
// no media of their own). A fresh instance must be used per receiver
// stream: H264Depayloader accumulates FU-A fragment state across calls.
func NewDepayloader(mimeType string) Depayloader {
	switch strings.ToLower(mimeType) {
	case "video/vp8":
		return &VP8Depayloader{}
	case "video/h264":
		return &H264Depayloader{}
	case "audio/opus":
		return &OpusDepayloader{}
	default:
		return nil
	}
}
