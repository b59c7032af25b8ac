package webrtc

import (
	"sync"
	"time"

	"github.com/pion/randutil"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/rtcweb/webrtc/internal/nack"
	"github.com/rtcweb/webrtc/internal/rtcpstats"
)

// RTPWriter is the egress side of the SRTP/DTLS/ICE pipeline: a packet
// handed to WriteRTP is encrypted and sent on the wire. It is the §6
// external collaborator boundary the RTPSender writes through, letting
// tests substitute a fake without a real ICE/DTLS/SRTP stack.
type RTPWriter interface {
	WriteRTP(pkt *rtp.Packet) error
}

// RTPSender owns one outbound SSRC (and an RTX SSRC when retransmission is
// negotiated), stamping, a sender report recorder, and a NACK responder
// (RTX cache), per spec §3's Sender data model.
type RTPSender struct {
	mu sync.Mutex

	id string

	track TrackLocal

	kind        RTPCodecType
	ssrc        SSRC
	rtxSSRC     SSRC
	payloadType PayloadType

	seq uint16

	transceiver *RTPTransceiver
	transport   RTPWriter

	report   *rtcpstats.SenderRecorder
	rtx      *nack.Responder
	haveRTX  bool

	midExtensionID int
	midConfirmed   bool
	mid            string

	stopped bool

	// rtxRingSize overrides nack.RingSize when set by applySettings; zero
	// means "use the package default".
	rtxRingSize int
}

// applySettings installs engine-level overrides for this sender's RTX
// retransmission ring capacity, in place of nack.RingSize.
func (s *RTPSender) applySettings(se SettingEngine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rtxRingSize = se.rtxRingSize
}

// NewRTPSender constructs an RTPSender for track, writing through
// transport once started. The sender id is a crypto-random string; the
// outbound SSRC comes from randutil's math-random generator.
func NewRTPSender(track TrackLocal, transport RTPWriter) (*RTPSender, error) {
	if track == nil {
		return nil, errRTPSenderTrackNil
	}

	id, err := randutil.GenerateCryptoRandomString(32, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	if err != nil {
		return nil, err
	}

	ssrc := SSRC(randutil.NewMathRandomGenerator().Uint32())

	return &RTPSender{
		id:        id,
		track:     track,
		kind:      track.Kind(),
		ssrc:      ssrc,
		transport: transport,
	}, nil
}

// Track returns the sender's current local track, or nil.
func (s *RTPSender) Track() TrackLocal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// SSRC returns the sender's outbound SSRC.
func (s *RTPSender) SSRC() SSRC {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ssrc
}

// RTXSSRC returns the sender's retransmission SSRC, or 0 if RTX was not
// negotiated (bind was never called with a non-zero RTX payload type).
// Used to render the a=ssrc-group:FID pairing spec §6 requires whenever a
// primary/RTX SSRC pair exists.
func (s *RTPSender) RTXSSRC() SSRC {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rtxSSRC
}

// ReplaceTrack swaps the underlying TrackLocal without renegotiation, per
// the W3C RTCRtpSender.replaceTrack contract; the new track must share the
// outgoing kind.
func (s *RTPSender) ReplaceTrack(track TrackLocal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track != nil && track.Kind() != s.kind {
		return errRTPSenderTrackKindMismatch
	}
	s.track = track
	return nil
}

// bind negotiates the sender's codec/RTX/header-extensions once SDP
// negotiation assigns them, starting the report recorder and (if a
// non-zero RTX payload type is given) a freshly-generated RTX SSRC and
// its NACK responder ring. codecs is the negotiated codec list for this
// sender's kind, most-preferred first; the track's Bind picks whichever
// entry its own codec capability matches.
func (s *RTPSender) bind(codecs []RTPCodecParameters, rtxPayloadType PayloadType, midExtensionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(codecs) == 0 {
		return ErrNoCodecNegotiated
	}

	s.midExtensionID = midExtensionID

	if rtxPayloadType != 0 {
		s.rtxSSRC = SSRC(randutil.NewMathRandomGenerator().Uint32())
		s.rtx = nack.NewResponderWithRingSize(uint32(s.rtxSSRC), uint8(rtxPayloadType), s.rtxRingSize)
		s.haveRTX = true
	}

	ctx := TrackLocalContext{
		id:          s.id,
		ssrc:        s.ssrc,
		rtxSSRC:     s.rtxSSRC,
		writeStream: senderWriteStream{s},
		codecs:      codecs,
	}

	if s.track == nil {
		return nil
	}
	chosen, err := s.track.Bind(ctx)
	if err != nil {
		return err
	}
	s.payloadType = chosen.PayloadType
	s.report = rtcpstats.NewSenderRecorder(uint32(s.ssrc), chosen.ClockRate)
	return nil
}

// senderWriteStream adapts RTPSender.sendRTP to the TrackLocalWriter
// interface the track's Bind call expects to write through.
type senderWriteStream struct{ s *RTPSender }

func (w senderWriteStream) WriteRTP(payload []byte, marker bool, timestamp uint32) error {
	return w.s.sendRTP(payload, marker, timestamp)
}

// SendRTP stamps and transmits one outbound frame's payload, per spec
// §4.11's outbound stamping rule: the sender fills SSRC (and, once RID is
// in play, the simulcast RID extension), assigns the next sequence
// number, leaves the caller-supplied RTP timestamp intact, and writes the
// MID extension until the remote has confirmed the MID/SSRC binding.
func (s *RTPSender) SendRTP(payload []byte, marker bool, timestamp uint32) error {
	return s.sendRTP(payload, marker, timestamp)
}

func (s *RTPSender) sendRTP(payload []byte, marker bool, timestamp uint32) error {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return ErrConnectionClosed
	}

	seq := s.seq
	s.seq++

	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         marker,
			PayloadType:    uint8(s.payloadType),
			SequenceNumber: seq,
			Timestamp:      timestamp,
			SSRC:           uint32(s.ssrc),
		},
		Payload: payload,
	}
	if !s.midConfirmed && s.midExtensionID != 0 && s.mid != "" {
		_ = pkt.Header.SetExtension(uint8(s.midExtensionID), []byte(s.mid))
	}

	report := s.report
	rtx := s.rtx
	transport := s.transport
	s.mu.Unlock()

	if report != nil {
		report.OnPacketSent(pkt.Timestamp, len(payload), time.Now())
	}
	if rtx != nil {
		rtx.Record(pkt)
	}
	if transport == nil {
		return nil
	}
	return transport.WriteRTP(pkt)
}

// setMid records the MID this sender's transceiver negotiated, stamped on
// outbound packets until confirmMID is called.
func (s *RTPSender) setMid(mid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mid = mid
}

// setTransport installs the RTPWriter outbound packets are written
// through, once the underlying SRTP session comes up (constructed after
// the DTLS handshake completes, later than the sender itself).
func (s *RTPSender) setTransport(transport RTPWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = transport
}

// SenderReport returns this sender's current RTCP Sender Report, or nil
// if no codec has been negotiated yet.
func (s *RTPSender) SenderReport(now time.Time) *rtcp.SenderReport {
	s.mu.Lock()
	report := s.report
	s.mu.Unlock()
	if report == nil {
		return nil
	}
	return report.Report(now)
}

// confirmMID marks the remote as having acknowledged this sender's
// MID/SSRC binding, after which the MID extension is no longer stamped
// (§4.11: "one cycle after negotiation").
func (s *RTPSender) confirmMID() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.midConfirmed = true
}

// HandleRTCP processes RTCP packets addressed to this sender: a
// TransportLayerNack triggers RTX retransmission of any still-cached
// packets (§4.5).
func (s *RTPSender) HandleRTCP(pkts []rtcp.Packet) error {
	s.mu.Lock()
	rtx := s.rtx
	transport := s.transport
	s.mu.Unlock()

	if rtx == nil || transport == nil {
		return nil
	}

	var firstErr error
	for _, p := range pkts {
		nackPkt, ok := p.(*rtcp.TransportLayerNack)
		if !ok {
			continue
		}
		var seqs []uint16
		for _, pair := range nackPkt.Nacks {
			seqs = append(seqs, pair.PacketList()...)
		}
		for _, pkt := range rtx.Respond(seqs) {
			if err := transport.WriteRTP(pkt); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Stop irreversibly stops the RTPSender, unbinding its track.
func (s *RTPSender) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	if s.track != nil && s.report != nil {
		_ = s.track.Unbind(TrackLocalContext{id: s.id})
	}
	return nil
}

var (
	errRTPSenderTrackNil          = staticErr("webrtc: RTPSender track must not be nil")
	errRTPSenderTrackKindMismatch = staticErr("webrtc: ReplaceTrack requires matching kind")
)
