package webrtc

import "github.com/rtcweb/webrtc/internal/sdp"

// SessionDescription is the `{type, sdp}` pair exchanged via
// SetLocalDescription/SetRemoteDescription, per spec §3. It lazily caches
// its parsed form so repeated access (renegotiation diffing, codec
// intersection) does not re-parse the SDP text.
type SessionDescription struct {
	Type SDPType
	SDP  string

	parsed *sdp.Description
}

// Parsed returns the cached parsed form, parsing SDP on first access.
func (d *SessionDescription) Parsed() (*sdp.Description, error) {
	if d.parsed != nil {
		return d.parsed, nil
	}
	parsed, err := sdp.Parse(d.SDP)
	if err != nil {
		return nil, err
	}
	d.parsed = parsed
	return parsed, nil
}

// NewSessionDescription wraps pre-rendered SDP text as a SessionDescription
// of the given type, used by CreateOffer/CreateAnswer.
func NewSessionDescription(typ SDPType, sdpText string) SessionDescription {
	return SessionDescription{Type: typ, SDP: sdpText}
}
