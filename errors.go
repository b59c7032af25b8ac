package webrtc

import "errors"

// Sentinel errors wrapped by pkg/rtcerr typed errors, following the same
// pattern as the Pion-era RTCPeerConnection (rtcerr.InvalidStateError{Err: ErrConnectionClosed}).
var (
	// ErrConnectionClosed is raised for any operation attempted after Close.
	ErrConnectionClosed = errors.New("webrtc: peerconnection closed")

	// ErrNoTransceiver is raised when an operation references a transceiver
	// that does not exist on this PeerConnection.
	ErrNoTransceiver = errors.New("webrtc: no such transceiver")

	// ErrUnknownTrack is raised from SendRTP when the track is not owned by
	// this PeerConnection.
	ErrUnknownTrack = errors.New("webrtc: unknown track")

	// ErrNoCodecNegotiated is raised from SendRTP when no codec has been
	// agreed for the transceiver's kind.
	ErrNoCodecNegotiated = errors.New("webrtc: no codec negotiated")

	// ErrInvalidSDP indicates the SDP text could not be parsed or is
	// semantically incompatible with the current state.
	ErrInvalidSDP = errors.New("webrtc: invalid sdp")

	// ErrSignalingStateCannotSetLocalOffer/Answer are raised by
	// SetLocalDescription, and ErrSignalingStateCannotSetRemoteOffer/Answer
	// by SetRemoteDescription, when the description's type is not valid in
	// the current signaling state (the Answer variant for an answer, the
	// Offer variant for any other type).
	ErrSignalingStateCannotSetLocalOffer    = errors.New("webrtc: cannot set local offer in current signaling state")
	ErrSignalingStateCannotSetLocalAnswer   = errors.New("webrtc: cannot set local answer in current signaling state")
	ErrSignalingStateCannotSetRemoteOffer   = errors.New("webrtc: cannot set remote offer in current signaling state")
	ErrSignalingStateCannotSetRemoteAnswer  = errors.New("webrtc: cannot set remote answer in current signaling state")
	ErrSignalingStateCannotRollback         = errors.New("webrtc: cannot rollback in current signaling state")

	// ErrUnsupportedCodec indicates a TrackLocal could not be bound because
	// no compatible codec exists in the negotiated parameters.
	ErrUnsupportedCodec = errors.New("webrtc: unsupported codec")

	// ErrUnbindFailed indicates Unbind was called on a TrackLocal that was
	// never bound to the given context.
	ErrUnbindFailed = errors.New("webrtc: unbind failed, track was never bound")

	// ErrCertificateExpired indicates a configured certificate has expired.
	ErrCertificateExpired = errors.New("webrtc: certificate expired")

	// ErrModifyingPeerIdentity, ErrModifyingCertificates, ErrModifyingBundlePolicy,
	// ErrModifyingRTCPMuxPolicy, ErrModifyingICECandidatePoolSize guard
	// SetConfiguration's immutable fields, per the W3C steps.
	ErrModifyingPeerIdentity         = errors.New("webrtc: peerIdentity cannot be modified")
	ErrModifyingCertificates         = errors.New("webrtc: certificates cannot be modified")
	ErrModifyingBundlePolicy         = errors.New("webrtc: bundlePolicy cannot be modified")
	ErrModifyingRTCPMuxPolicy        = errors.New("webrtc: rtcpMuxPolicy cannot be modified")
	ErrModifyingICECandidatePoolSize = errors.New("webrtc: iceCandidatePoolSize cannot be modified after setLocalDescription")
)
