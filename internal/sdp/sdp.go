// Package sdp implements the Session Description Processor of spec §4.1:
// parsing/rendering SDP text, offer/answer m-line construction, and codec
// intersection. It is a pure translator, deliberately kept side-effect
// free so it can be unit-tested without a transport (spec §9).
package sdp

import (
	"net/url"
	"strconv"

	"github.com/pion/sdp/v3"
)

// Direction mirrors the four W3C RTCRtpTransceiverDirection values that
// can appear on an m-line (an m-line is never itself "stopped").
type Direction int

const (
	DirectionSendrecv Direction = iota
	DirectionSendonly
	DirectionRecvonly
	DirectionInactive
)

func (d Direction) String() string {
	switch d {
	case DirectionSendonly:
		return "sendonly"
	case DirectionRecvonly:
		return "recvonly"
	case DirectionInactive:
		return "inactive"
	default:
		return "sendrecv"
	}
}

// RTCPFeedback is one a=rtcp-fb capability ("nack", "nack pli",
// "goog-remb", ...), independent of the root package's RTCPFeedback type
// (kept separate to avoid an import cycle between webrtc and internal/sdp).
type RTCPFeedback struct {
	Type      string
	Parameter string
}

// Codec is the subset of RTPCodecParameters the SDP layer needs to render
// an m-line and intersect offer/answer capabilities, independent of the
// root package's richer RTPCodecParameters (kept separate to avoid an
// import cycle between webrtc and internal/sdp).
type Codec struct {
	PayloadType  uint8
	MimeType     string // e.g. "audio/opus", "video/VP8", "video/rtx"
	ClockRate    uint32
	Channels     uint16
	Fmtp         string
	RTCPFeedback []RTCPFeedback
}

// MediaSection is one parsed or to-be-rendered m-line.
type MediaSection struct {
	Kind           string // "audio" or "video"
	MID            string
	Codecs         []Codec
	HeaderExtensions []HeaderExtension
	Direction      Direction
	SSRCs          []uint32
	// SSRCGroupFID is the primary/RTX SSRC pair rendered as
	// "a=ssrc-group:FID <primary> <rtx>" when both are present, per the
	// RFC 4588 flow-identification grouping semantics spec §6 requires
	// for an RTX-paired sender.
	SSRCGroupFID []uint32
	ICEUfrag       string
	ICEPwd         string
	Fingerprint    string
	Setup          string
}

// HeaderExtension is one negotiated extmap entry.
type HeaderExtension struct {
	ID  int
	URI string
}

// Description is the parsed form of a SessionDescription's SDP text.
type Description struct {
	MediaSections []MediaSection
	raw           *sdp.SessionDescription
}

// Parse unmarshals sdpText into a Description using pion/sdp/v3.
func Parse(sdpText string) (*Description, error) {
	parsed := &sdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(sdpText)); err != nil {
		return nil, err
	}

	desc := &Description{raw: parsed}
	for _, m := range parsed.MediaDescriptions {
		desc.MediaSections = append(desc.MediaSections, mediaSectionFromSDP(m))
	}
	return desc, nil
}

func mediaSectionFromSDP(m *sdp.MediaDescription) MediaSection {
	section := MediaSection{Kind: m.MediaName.Media, Direction: DirectionSendrecv}

	fmtpByPT := map[string]string{}
	rtpmapByPT := map[string]string{}
	fbByPT := map[string][]RTCPFeedback{}

	for _, a := range m.Attributes {
		switch a.Key {
		case "mid":
			section.MID = a.Value
		case "ice-ufrag":
			section.ICEUfrag = a.Value
		case "ice-pwd":
			section.ICEPwd = a.Value
		case "fingerprint":
			section.Fingerprint = a.Value
		case "setup":
			section.Setup = a.Value
		case "sendrecv":
			section.Direction = DirectionSendrecv
		case "sendonly":
			section.Direction = DirectionSendonly
		case "recvonly":
			section.Direction = DirectionRecvonly
		case "inactive":
			section.Direction = DirectionInactive
		case "rtpmap":
			pt, rest := splitFirstToken(a.Value)
			rtpmapByPT[pt] = rest
		case "fmtp":
			pt, rest := splitFirstToken(a.Value)
			fmtpByPT[pt] = rest
		case "ssrc":
			pt, _ := splitFirstToken(a.Value)
			if ssrc, err := strconv.ParseUint(pt, 10, 32); err == nil {
				section.SSRCs = appendUniqueSSRC(section.SSRCs, uint32(ssrc))
			}
		case "extmap":
			id, uri := parseExtmap(a.Value)
			if uri != "" {
				section.HeaderExtensions = append(section.HeaderExtensions, HeaderExtension{ID: id, URI: uri})
			}
		case "rtcp-fb":
			pt, rest := splitFirstToken(a.Value)
			fbType, param := splitFirstToken(rest)
			fbByPT[pt] = append(fbByPT[pt], RTCPFeedback{Type: fbType, Parameter: param})
		case "ssrc-group":
			kind, rest := splitFirstToken(a.Value)
			if kind != "FID" {
				continue
			}
			for _, tok := range splitFields(rest) {
				if ssrc, err := strconv.ParseUint(tok, 10, 32); err == nil {
					section.SSRCGroupFID = append(section.SSRCGroupFID, uint32(ssrc))
				}
			}
		}
	}

	for _, fmt := range m.MediaName.Formats {
		pt64, err := strconv.ParseUint(fmt, 10, 8)
		if err != nil {
			continue
		}
		codec := Codec{PayloadType: uint8(pt64), Fmtp: fmtpByPT[fmt], RTCPFeedback: fbByPT[fmt]}
		if rtpmap, ok := rtpmapByPT[fmt]; ok {
			codec.MimeType, codec.ClockRate, codec.Channels = parseRTPMap(m.MediaName.Media, rtpmap)
		}
		section.Codecs = append(section.Codecs, codec)
	}

	return section
}

// splitFields splits s on runs of spaces, skipping empty tokens.
func splitFields(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

func appendUniqueSSRC(ssrcs []uint32, s uint32) []uint32 {
	for _, existing := range ssrcs {
		if existing == s {
			return ssrcs
		}
	}
	return append(ssrcs, s)
}

// splitFirstToken splits "token rest-of-line" on the first space.
func splitFirstToken(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// parseRTPMap parses an rtpmap value of the form "<name>/<clockrate>[/<channels>]"
// into a full MIME type, clock rate, and channel count.
func parseRTPMap(kind, rtpmap string) (mime string, clockRate uint32, channels uint16) {
	name := rtpmap
	rate := ""
	chans := ""

	slash1 := indexByte(rtpmap, '/')
	if slash1 < 0 {
		return kind + "/" + rtpmap, 0, 0
	}
	name = rtpmap[:slash1]
	rest := rtpmap[slash1+1:]
	slash2 := indexByte(rest, '/')
	if slash2 < 0 {
		rate = rest
	} else {
		rate = rest[:slash2]
		chans = rest[slash2+1:]
	}

	if v, err := strconv.ParseUint(rate, 10, 32); err == nil {
		clockRate = uint32(v)
	}
	if chans != "" {
		if v, err := strconv.ParseUint(chans, 10, 16); err == nil {
			channels = uint16(v)
		}
	}
	return kind + "/" + name, clockRate, channels
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// parseExtmap parses an extmap value of the form "<id>[/<direction>] <uri>".
func parseExtmap(value string) (int, string) {
	idPart, rest := splitFirstToken(value)
	if slash := indexByte(idPart, '/'); slash >= 0 {
		idPart = idPart[:slash]
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, ""
	}
	uri, _ := splitFirstToken(rest)
	if uri == "" {
		uri = rest
	}
	return id, uri
}

// Render marshals a slice of MediaSections, plus session-level ICE/DTLS
// bundling info, into SDP text via pion/sdp/v3's builder API.
func Render(sessionID uint64, sections []MediaSection) string {
	d := sdp.NewJSEPSessionDescription(false)
	d.Origin.SessionID = sessionID

	var bundleMIDs []string
	for _, section := range sections {
		bundleMIDs = append(bundleMIDs, section.MID)

		media := sdp.NewJSEPMediaDescription(section.Kind, nil).
			WithValueAttribute("mid", section.MID)

		if len(section.Codecs) == 0 {
			media.MediaName.Port.Value = 0
			d = d.WithMedia(media)
			continue
		}

		media = media.
			WithICECredentials(section.ICEUfrag, section.ICEPwd).
			WithPropertyAttribute(section.Direction.String())

		if section.Fingerprint != "" {
			media = media.WithFingerprint("sha-256", section.Fingerprint)
		}
		if section.Setup != "" {
			media = media.WithValueAttribute("setup", section.Setup)
		}

		for _, codec := range section.Codecs {
			name := codec.MimeType
			if slash := indexByte(codec.MimeType, '/'); slash >= 0 {
				name = codec.MimeType[slash+1:]
			}
			media = media.WithCodec(codec.PayloadType, name, codec.ClockRate, codec.Channels, codec.Fmtp)
			for _, fb := range codec.RTCPFeedback {
				line := strconv.FormatUint(uint64(codec.PayloadType), 10) + " " + fb.Type
				if fb.Parameter != "" {
					line += " " + fb.Parameter
				}
				media = media.WithPropertyAttribute("rtcp-fb:" + line)
			}
		}

		for _, ext := range section.HeaderExtensions {
			media = media.WithExtMap(sdp.ExtMap{Value: ext.ID, URI: mustParseURI(ext.URI)})
		}

		for _, ssrc := range section.SSRCs {
			media = media.WithPropertyAttribute("ssrc:" + strconv.FormatUint(uint64(ssrc), 10))
		}

		if len(section.SSRCGroupFID) == 2 {
			media = media.WithPropertyAttribute("ssrc-group:FID " +
				strconv.FormatUint(uint64(section.SSRCGroupFID[0]), 10) + " " +
				strconv.FormatUint(uint64(section.SSRCGroupFID[1]), 10))
		}

		d = d.WithMedia(media)
	}

	d = d.WithValueAttribute("group", "BUNDLE "+joinStrings(bundleMIDs, " "))

	out, err := d.Marshal()
	if err != nil {
		return ""
	}
	return string(out)
}

func mustParseURI(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}
