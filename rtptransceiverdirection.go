package webrtc

// RTPTransceiverDirection indicates the direction of an RTPTransceiver, per
// spec §3.
type RTPTransceiverDirection int

const (
	// RTPTransceiverDirectionSendrecv indicates the transceiver sends and
	// receives.
	RTPTransceiverDirectionSendrecv RTPTransceiverDirection = iota + 1
	// RTPTransceiverDirectionSendonly indicates the transceiver only sends.
	RTPTransceiverDirectionSendonly
	// RTPTransceiverDirectionRecvonly indicates the transceiver only
	// receives.
	RTPTransceiverDirectionRecvonly
	// RTPTransceiverDirectionInactive indicates the transceiver neither
	// sends nor receives.
	RTPTransceiverDirectionInactive
	// RTPTransceiverDirectionStopped indicates the transceiver has been
	// irreversibly stopped, per spec §3's invariant.
	RTPTransceiverDirectionStopped
)

func (d RTPTransceiverDirection) String() string {
	switch d {
	case RTPTransceiverDirectionSendrecv:
		return "sendrecv"
	case RTPTransceiverDirectionSendonly:
		return "sendonly"
	case RTPTransceiverDirectionRecvonly:
		return "recvonly"
	case RTPTransceiverDirectionInactive:
		return "inactive"
	case RTPTransceiverDirectionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// negotiatedDirection computes the intersection of a local desired direction
// and a remote offered direction, per the W3C offer/answer direction table
// referenced in spec §4.1.
func negotiatedDirection(local, remote RTPTransceiverDirection) RTPTransceiverDirection {
	localSend := local == RTPTransceiverDirectionSendrecv || local == RTPTransceiverDirectionSendonly
	localRecv := local == RTPTransceiverDirectionSendrecv || local == RTPTransceiverDirectionRecvonly
	remoteSend := remote == RTPTransceiverDirectionSendrecv || remote == RTPTransceiverDirectionSendonly
	remoteRecv := remote == RTPTransceiverDirectionSendrecv || remote == RTPTransceiverDirectionRecvonly

	send := localSend && remoteRecv
	recv := localRecv && remoteSend

	switch {
	case send && recv:
		return RTPTransceiverDirectionSendrecv
	case send:
		return RTPTransceiverDirectionSendonly
	case recv:
		return RTPTransceiverDirectionRecvonly
	default:
		return RTPTransceiverDirectionInactive
	}
}
