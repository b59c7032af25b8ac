package webrtc

import "sync"

// TrackRemote represents an inbound media stream received from the remote
// peer, surfaced to the application via the Track event (spec §4.11). It is
// a plain identity over the RTPReceiver's buffered output, not media bytes.
type TrackRemote struct {
	mu sync.RWMutex

	id   string
	rid  string // simulcast RID, "" when not simulcast
	kind RTPCodecType
	ssrc SSRC
	codec RTPCodecParameters

	receiver *RTPReceiver
}

func newTrackRemote(kind RTPCodecType, ssrc SSRC, rid string, receiver *RTPReceiver) *TrackRemote {
	return &TrackRemote{kind: kind, ssrc: ssrc, rid: rid, receiver: receiver, id: receiver.transceiver.Mid()}
}

// ID returns the track's MID-derived identifier.
func (t *TrackRemote) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// RID returns the simulcast RID this track was demultiplexed under, or "".
func (t *TrackRemote) RID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rid
}

// Kind returns audio or video.
func (t *TrackRemote) Kind() RTPCodecType { return t.kind }

// SSRC returns the SSRC this track was created with. Tracks surfaced by
// the Track event are created at negotiation, before any packet arrives,
// and report 0.
func (t *TrackRemote) SSRC() SSRC { return t.ssrc }

// Codec returns the negotiated codec this track is decoded with.
func (t *TrackRemote) Codec() RTPCodecParameters {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.codec
}

func (t *TrackRemote) setCodec(c RTPCodecParameters) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.codec = c
}
