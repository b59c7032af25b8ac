package webrtc

import (
	"sync"

	"github.com/rtcweb/webrtc/pkg/rtcerr"
)

// RTPTransceiver represents a combination of an RTPSender and an
// RTPReceiver that share a common MID, per spec §3. Once MID is set it
// never changes; once stopped, direction cannot leave Stopped.
type RTPTransceiver struct {
	mu sync.RWMutex

	kind      RTPCodecType
	mid       string
	direction RTPTransceiverDirection
	currentDirection RTPTransceiverDirection
	stopped   bool
	fired     bool

	sender   *RTPSender
	receiver *RTPReceiver

	codecs           []RTPCodecParameters
	headerExtensions []headerExtension
}

func newRTPTransceiver(kind RTPCodecType, direction RTPTransceiverDirection, sender *RTPSender, receiver *RTPReceiver) *RTPTransceiver {
	t := &RTPTransceiver{
		kind:      kind,
		direction: direction,
	}
	t.setSender(sender)
	t.setReceiver(receiver)
	return t
}

// Kind returns audio or video.
func (t *RTPTransceiver) Kind() RTPCodecType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.kind
}

// Mid returns the negotiated MID, or "" if not yet negotiated.
func (t *RTPTransceiver) Mid() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mid
}

// setMid assigns the MID on first negotiation. Per spec §3's invariant, once
// set it is never overwritten.
func (t *RTPTransceiver) setMid(mid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mid == "" {
		t.mid = mid
	}
}

// Sender returns the RTPTransceiver's RTPSender, or nil for a transceiver
// created without a local track.
func (t *RTPTransceiver) Sender() *RTPSender {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sender
}

func (t *RTPTransceiver) setSender(s *RTPSender) {
	if s != nil {
		s.transceiver = t
	}
	t.sender = s
}

// Receiver returns the RTPTransceiver's RTPReceiver, always non-nil.
func (t *RTPTransceiver) Receiver() *RTPReceiver {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.receiver
}

func (t *RTPTransceiver) setReceiver(r *RTPReceiver) {
	if r != nil {
		r.transceiver = t
	}
	t.receiver = r
}

// Direction returns the transceiver's configured (desired) direction.
func (t *RTPTransceiver) Direction() RTPTransceiverDirection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.direction
}

// CurrentDirection returns the last negotiated direction.
func (t *RTPTransceiver) CurrentDirection() RTPTransceiverDirection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentDirection
}

// SetDirection changes the transceiver's desired direction. Returns
// InvalidStateError if the transceiver is stopped, matching spec §3's
// invariant that a stopped transceiver's direction cannot change.
func (t *RTPTransceiver) SetDirection(d RTPTransceiverDirection) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return &rtcerr.InvalidStateError{Err: errTransceiverStopped}
	}
	t.direction = d
	return nil
}

func (t *RTPTransceiver) setCurrentDirection(d RTPTransceiverDirection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentDirection = d
}

// Stopped reports whether Stop has been called.
func (t *RTPTransceiver) Stopped() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stopped
}

// Stop irreversibly stops the RTPTransceiver.
func (t *RTPTransceiver) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil
	}
	t.stopped = true
	t.direction = RTPTransceiverDirectionStopped
	t.currentDirection = RTPTransceiverDirectionStopped
	return nil
}

// fireOnce reports true exactly once for a given transceiver: used by the
// PeerConnection controller to decide whether to fire the Track event for a
// newly-bound receiver (§4.11).
func (t *RTPTransceiver) fireOnce() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return false
	}
	t.fired = true
	return true
}

// setNegotiatedCodecs records the codec list/header extensions this
// transceiver negotiated with the remote peer, per spec §3. The first codec
// is preferred.
func (t *RTPTransceiver) setNegotiatedCodecs(codecs []RTPCodecParameters, exts []headerExtension) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.codecs = codecs
	t.headerExtensions = exts
}

// NegotiatedCodecs returns the negotiated codec list, first entry preferred.
func (t *RTPTransceiver) NegotiatedCodecs() []RTPCodecParameters {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RTPCodecParameters, len(t.codecs))
	copy(out, t.codecs)
	return out
}

var errTransceiverStopped = staticErr("webrtc: transceiver is stopped")

// satisfyTypeAndDirection plucks the first non-stopped transceiver of
// remoteKind from the passed list whose MID is unset or not yet in
// usedMIDs; direction is not considered. Mirrors the teacher's
// satisfyTypeAndDirection, used by the answer-side transceiver-matching
// step of spec §4.1.
func satisfyTypeAndDirection(remoteKind RTPCodecType, localTransceivers []*RTPTransceiver, usedMIDs map[string]bool) (*RTPTransceiver, int) {
	for i, t := range localTransceivers {
		if t.Kind() != remoteKind || t.Stopped() {
			continue
		}
		if t.Mid() != "" && usedMIDs[t.Mid()] {
			continue
		}
		return t, i
	}
	return nil, -1
}
