package webrtc

import (
	"strconv"
	"strings"
)

// RTPCodecType identifies whether an RTPCodecParameters describes audio or
// video media, per spec §3.
type RTPCodecType int

const (
	// RTPCodecTypeAudio indicates an audio codec.
	RTPCodecTypeAudio RTPCodecType = iota + 1
	// RTPCodecTypeVideo indicates a video codec.
	RTPCodecTypeVideo
)

func (t RTPCodecType) String() string {
	switch t {
	case RTPCodecTypeAudio:
		return "audio"
	case RTPCodecTypeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// NewRTPCodecType maps an SDP media-name ("audio"/"video") to its type.
func NewRTPCodecType(s string) RTPCodecType {
	switch strings.ToLower(s) {
	case "audio":
		return RTPCodecTypeAudio
	case "video":
		return RTPCodecTypeVideo
	default:
		return RTPCodecType(0)
	}
}

// PayloadType is the RTP payload type, 0-127 per spec §3.
type PayloadType uint8

// RTCPFeedback signals the support of a given RTCP feedback message, as
// carried by a=rtcp-fb lines.
type RTCPFeedback struct {
	Type       string
	Parameter  string
}

// RTPCodecCapability provides information about codec capabilities, the
// MIME-type/clock-rate/channels/fmtp/feedback tuple, independent of any
// negotiated payload type.
type RTPCodecCapability struct {
	MimeType    string
	ClockRate   uint32
	Channels    uint16
	SDPFmtpLine string
	RTCPFeedback []RTCPFeedback
}

// MimeTypeKind returns audio/video depending on the capability's MIME type
// prefix, e.g. "audio/opus" -> audio.
func (c RTPCodecCapability) MimeTypeKind() RTPCodecType {
	switch {
	case strings.HasPrefix(strings.ToLower(c.MimeType), "audio/"):
		return RTPCodecTypeAudio
	case strings.HasPrefix(strings.ToLower(c.MimeType), "video/"):
		return RTPCodecTypeVideo
	default:
		return RTPCodecType(0)
	}
}

// IsRTX reports whether this capability describes an RTX (retransmission)
// codec, i.e. MIME type "video/rtx" or "audio/rtx". Only the MIME type is
// checked; the apt= fmtp parameter is read separately by aptPayloadType.
func (c RTPCodecCapability) IsRTX() bool {
	return strings.EqualFold(c.MimeType, "video/rtx") || strings.EqualFold(c.MimeType, "audio/rtx")
}

// aptPayloadType parses "apt=<pt>" out of SDPFmtpLine, returning false if
// absent or malformed.
func (c RTPCodecCapability) aptPayloadType() (PayloadType, bool) {
	for _, kv := range strings.Split(c.SDPFmtpLine, ";") {
		kv = strings.TrimSpace(kv)
		if !strings.HasPrefix(strings.ToLower(kv), "apt=") {
			continue
		}
		pt, err := strconv.Atoi(kv[len("apt="):])
		if err != nil {
			return 0, false
		}
		return PayloadType(pt), true
	}
	return 0, false
}

// RTPCodecParameters binds an RTPCodecCapability to a concrete negotiated
// payload type, per spec §3 RTPCodecParameters.
type RTPCodecParameters struct {
	RTPCodecCapability
	PayloadType PayloadType
}

// codecParametersEqual implements the answer/offer fmtp-equivalence rule of
// spec §4.1: MIME type (case-insensitive), clock rate, channels (audio) and
// fmtp equivalence (H264 profile-level-id byte-equal, VP8/Opus ignore fmtp).
func codecParametersEqual(a, b RTPCodecCapability) bool {
	if !strings.EqualFold(a.MimeType, b.MimeType) {
		return false
	}
	if a.ClockRate != b.ClockRate {
		return false
	}
	if a.MimeTypeKind() == RTPCodecTypeAudio && a.Channels != b.Channels {
		return false
	}
	if strings.EqualFold(a.MimeType, "video/h264") {
		return fmtpParam(a.SDPFmtpLine, "profile-level-id") == fmtpParam(b.SDPFmtpLine, "profile-level-id")
	}
	// VP8, Opus, and all other codecs ignore fmtp for matching purposes.
	return true
}

func fmtpParam(fmtp, key string) string {
	for _, kv := range strings.Split(fmtp, ";") {
		kv = strings.TrimSpace(kv)
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], key) {
			return parts[1]
		}
	}
	return ""
}
