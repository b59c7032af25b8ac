package webrtc

// SignalingState indicates the signaling state of the offer/answer process,
// per spec §3 / §4.1. The PeerConnection's signaling state never transitions
// on its own except through SetLocalDescription/SetRemoteDescription/Close.
type SignalingState int

const (
	// SignalingStateStable indicates there is no offer/answer exchange in
	// progress.
	SignalingStateStable SignalingState = iota + 1

	// SignalingStateHaveLocalOffer indicates a local offer has been applied,
	// awaiting a remote answer.
	SignalingStateHaveLocalOffer

	// SignalingStateHaveRemoteOffer indicates a remote offer has been
	// applied, awaiting a local answer.
	SignalingStateHaveRemoteOffer

	// SignalingStateHaveLocalPranswer indicates a remote offer was applied
	// and a local provisional answer was applied.
	SignalingStateHaveLocalPranswer

	// SignalingStateHaveRemotePranswer indicates a local offer was applied
	// and a remote provisional answer was applied.
	SignalingStateHaveRemotePranswer

	// SignalingStateClosed indicates the PeerConnection has been closed.
	SignalingStateClosed
)

func (s SignalingState) String() string {
	switch s {
	case SignalingStateStable:
		return "stable"
	case SignalingStateHaveLocalOffer:
		return "have-local-offer"
	case SignalingStateHaveRemoteOffer:
		return "have-remote-offer"
	case SignalingStateHaveLocalPranswer:
		return "have-local-pranswer"
	case SignalingStateHaveRemotePranswer:
		return "have-remote-pranswer"
	case SignalingStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SDPType is the type of an SDP used in CreateOffer/CreateAnswer/
// SetLocalDescription/SetRemoteDescription, per spec §3.
type SDPType int

const (
	// SDPTypeOffer indicates an SDP describing a request to start a session.
	SDPTypeOffer SDPType = iota + 1
	// SDPTypePranswer indicates a provisional answer.
	SDPTypePranswer
	// SDPTypeAnswer indicates a definitive answer.
	SDPTypeAnswer
	// SDPTypeRollback indicates a cancellation of any pending offer.
	SDPTypeRollback
)

func (t SDPType) String() string {
	switch t {
	case SDPTypeOffer:
		return "offer"
	case SDPTypePranswer:
		return "pranswer"
	case SDPTypeAnswer:
		return "answer"
	case SDPTypeRollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// checkNextSignalingState validates a signaling-state transition against the
// table in spec §4.1, returning the resulting state or an error.
func checkNextSignalingState(cur SignalingState, op stateChangeOp, sdpType SDPType) (SignalingState, error) {
	if sdpType == SDPTypeRollback {
		if cur == SignalingStateStable {
			return cur, nil
		}
		return SignalingStateStable, nil
	}

	switch op {
	case stateChangeOpSetLocal:
		switch sdpType {
		case SDPTypeOffer:
			if cur != SignalingStateStable && cur != SignalingStateHaveLocalOffer {
				return cur, ErrSignalingStateCannotSetLocalOffer
			}
			return SignalingStateHaveLocalOffer, nil
		case SDPTypeAnswer:
			if cur != SignalingStateHaveRemoteOffer {
				return cur, ErrSignalingStateCannotSetLocalAnswer
			}
			return SignalingStateStable, nil
		case SDPTypePranswer:
			if cur != SignalingStateHaveRemoteOffer && cur != SignalingStateHaveLocalPranswer {
				return cur, ErrSignalingStateCannotSetLocalAnswer
			}
			return SignalingStateHaveLocalPranswer, nil
		}
	case stateChangeOpSetRemote:
		switch sdpType {
		case SDPTypeOffer:
			if cur != SignalingStateStable && cur != SignalingStateHaveRemoteOffer {
				return cur, ErrSignalingStateCannotSetRemoteOffer
			}
			return SignalingStateHaveRemoteOffer, nil
		case SDPTypeAnswer:
			if cur != SignalingStateHaveLocalOffer {
				return cur, ErrSignalingStateCannotSetRemoteAnswer
			}
			return SignalingStateStable, nil
		case SDPTypePranswer:
			if cur != SignalingStateHaveLocalOffer && cur != SignalingStateHaveRemotePranswer {
				return cur, ErrSignalingStateCannotSetRemoteAnswer
			}
			return SignalingStateHaveRemotePranswer, nil
		}
	}
	return cur, ErrInvalidSDP
}

type stateChangeOp int

const (
	stateChangeOpSetLocal stateChangeOp = iota + 1
	stateChangeOpSetRemote
)
