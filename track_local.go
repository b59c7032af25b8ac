package webrtc

import "sync"

// TrackLocalWriter is implemented by whatever sink accepts stamped outbound
// RTP packets from a bound TrackLocal — ultimately the RTPSender's pipeline
// (stamp -> SRTP -> DTLS -> ICE, per spec §2 data flow). timestamp is the
// RTP timestamp the caller computed for this frame (its sampling instant in
// the codec's clock rate); per spec §4.11 the sender stamps SSRC/sequence
// but leaves this value untouched.
type TrackLocalWriter interface {
	WriteRTP(payload []byte, marker bool, timestamp uint32) error
}

// TrackLocalContext is handed to TrackLocal.Bind by the RTPSender once
// negotiation has produced an SSRC/payload type for this track, mirroring
// pion/webrtc's TrackLocalContext.
type TrackLocalContext struct {
	id          string
	ssrc        SSRC
	rtxSSRC     SSRC
	writeStream TrackLocalWriter
	codecs      []RTPCodecParameters
}

// ID returns the binding's track ID.
func (c TrackLocalContext) ID() string { return c.id }

// SSRC returns the bound SSRC.
func (c TrackLocalContext) SSRC() SSRC { return c.ssrc }

// RTXSSRC returns the bound RTX SSRC, or 0 if RTX was not negotiated.
func (c TrackLocalContext) RTXSSRC() SSRC { return c.rtxSSRC }

// WriteStream returns the sink this binding should write stamped RTP to.
func (c TrackLocalContext) WriteStream() TrackLocalWriter { return c.writeStream }

// CodecParameters returns the codecs negotiated for the m-line this track is
// bound to, ordered by preference.
func (c TrackLocalContext) CodecParameters() []RTPCodecParameters { return c.codecs }

// TrackLocal is a local media source: an abstract handle, not media bytes,
// per spec §3 ("an optional MediaStreamTrack reference"). A single
// TrackLocal may be bound to multiple RTPSenders across PeerConnections,
// sharable by reference.
type TrackLocal interface {
	Bind(TrackLocalContext) (RTPCodecParameters, error)
	Unbind(TrackLocalContext) error
	ID() string
	StreamID() string
	Kind() RTPCodecType
}

type trackBinding struct {
	id          string
	ssrc        SSRC
	rtxSSRC     SSRC
	payloadType PayloadType
	writeStream TrackLocalWriter
}

// TrackLocalStaticRTP is a TrackLocal that accepts pre-built RTP payload
// bytes and stamps them onto every bound sender. Grounded directly on
// pion/webrtc's TrackLocalStaticRTP (other_examples/15ec8445).
type TrackLocalStaticRTP struct {
	mu           sync.RWMutex
	bindings     []trackBinding
	codec        RTPCodecCapability
	id, streamID string
}

// NewTrackLocalStaticRTP returns a TrackLocalStaticRTP with the given codec
// capability, ID and stream (MediaStream) ID.
func NewTrackLocalStaticRTP(c RTPCodecCapability, id, streamID string) *TrackLocalStaticRTP {
	return &TrackLocalStaticRTP{codec: c, id: id, streamID: streamID}
}

// Bind asserts the requested codec is supported by the remote peer and
// records the SSRC/payload type to stamp future writes with.
func (s *TrackLocalStaticRTP) Bind(t TrackLocalContext) (RTPCodecParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, codec := range t.CodecParameters() {
		if codecParametersEqual(codec.RTPCodecCapability, s.codec) {
			s.bindings = append(s.bindings, trackBinding{
				id:          t.ID(),
				ssrc:        t.SSRC(),
				rtxSSRC:     t.RTXSSRC(),
				payloadType: codec.PayloadType,
				writeStream: t.WriteStream(),
			})
			return codec, nil
		}
	}
	return RTPCodecParameters{}, ErrUnsupportedCodec
}

// Unbind removes a binding previously established by Bind.
func (s *TrackLocalStaticRTP) Unbind(t TrackLocalContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bindings {
		if s.bindings[i].id == t.ID() {
			s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
			return nil
		}
	}
	return ErrUnbindFailed
}

// ID returns the track's identifier.
func (s *TrackLocalStaticRTP) ID() string { return s.id }

// StreamID returns the MediaStream group this track belongs to.
func (s *TrackLocalStaticRTP) StreamID() string { return s.streamID }

// Kind returns audio or video, derived from the configured codec's MIME type.
func (s *TrackLocalStaticRTP) Kind() RTPCodecType { return s.codec.MimeTypeKind() }

// WriteRTP stamps payload bytes onto every bound sender's write stream, with
// the given marker bit and RTP timestamp; SSRC/sequence are filled in
// downstream by each binding's RTPSender, per spec §4.11's stamping rule,
// which leaves the caller-supplied timestamp intact.
func (s *TrackLocalStaticRTP) WriteRTP(payload []byte, marker bool, timestamp uint32) error {
	s.mu.RLock()
	bindings := make([]trackBinding, len(s.bindings))
	copy(bindings, s.bindings)
	s.mu.RUnlock()

	var firstErr error
	for _, b := range bindings {
		if err := b.writeStream.WriteRTP(payload, marker, timestamp); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
