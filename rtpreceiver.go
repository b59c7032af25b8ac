package webrtc

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/rtcweb/webrtc/internal/jitterbuffer"
	"github.com/rtcweb/webrtc/internal/mux"
	"github.com/rtcweb/webrtc/internal/nack"
	"github.com/rtcweb/webrtc/internal/rtcpstats"
	"github.com/rtcweb/webrtc/pkg/codecs"
)

// RTPReceiver owns the set of inbound SSRCs it has observed, a jitter
// buffer (video only), a report recorder, and a NACK generator per SSRC,
// per spec §3's Receiver data model. Streams are keyed by SSRC only: RID
// extensions are not read, so simulcast layers are not demultiplexed by
// RID.
type RTPReceiver struct {
	mu sync.Mutex

	kind           RTPCodecType
	senderSSRC     uint32
	transceiver    *RTPTransceiver
	depayloader    codecs.Depayloader
	onPacket       func(payload []byte, pkt *rtp.Packet)

	streams map[SSRC]*receiverStream

	tracks []*TrackRemote

	// jitterLatency and nackMaxCount override the jitterbuffer/nack package
	// defaults when set by applySettings; zero means "use the package
	// default".
	jitterLatency time.Duration
	nackMaxCount  uint8
}

// applySettings installs engine-level overrides for this receiver's jitter
// buffer latency and NACK report count, in place of the internal packages'
// compiled-in defaults.
func (r *RTPReceiver) applySettings(s SettingEngine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jitterLatency = s.jitterBufferLatency
	r.nackMaxCount = s.nackMaxCount
}

// receiverStream is one SSRC's worth of inbound bookkeeping: a jitter
// buffer for video (audio has no jitter buffer per spec §4.3's "per SSRC,
// for video"), a receiver report recorder, and a NACK generator.
type receiverStream struct {
	ssrc SSRC

	jb *jitterbuffer.JitterBuffer // nil for audio

	report *rtcpstats.ReceiverRecorder
	nack   *nack.Generator
}

// NewRTPReceiver constructs an RTPReceiver for the given kind, addressed
// from senderSSRC on any RTCP it emits (NACK feedback).
func NewRTPReceiver(kind RTPCodecType, senderSSRC uint32) *RTPReceiver {
	return &RTPReceiver{
		kind:       kind,
		senderSSRC: senderSSRC,
		streams:    make(map[SSRC]*receiverStream),
	}
}

// setDepayloader installs the negotiated codec's depayloader, used by
// OnRTP to surface decoded media bytes via onPacket.
func (r *RTPReceiver) setDepayloader(d codecs.Depayloader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depayloader = d
}

// OnPacket registers the callback fired with each depayloaded media frame,
// in delivery order, alongside the RTP packet it was extracted from.
func (r *RTPReceiver) OnPacket(f func(payload []byte, pkt *rtp.Packet)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPacket = f
}

func (r *RTPReceiver) streamFor(ssrc SSRC, clockRate uint32) *receiverStream {
	if s, ok := r.streams[ssrc]; ok {
		return s
	}
	s := &receiverStream{
		ssrc:   ssrc,
		report: rtcpstats.NewReceiverRecorder(r.senderSSRC, uint32(ssrc), clockRate),
		nack:   nack.NewGeneratorWithMaxNACK(r.senderSSRC, uint32(ssrc), r.nackMaxCount),
	}
	if r.kind == RTPCodecTypeVideo {
		s.jb = jitterbuffer.New(r.jitterLatency, func() { r.onJitterTimer(ssrc) })
	}
	r.streams[ssrc] = s
	return s
}

// onJitterTimer is the jitter buffer's gap/initial-wait timer callback: it
// drains whatever becomes emittable and depayloads it exactly as OnRTP
// would for a freshly-arrived packet.
func (r *RTPReceiver) onJitterTimer(ssrc SSRC) {
	for _, p := range r.drainTimer(ssrc) {
		r.deliver(p)
	}
}

func (r *RTPReceiver) deliver(p *rtp.Packet) {
	r.mu.Lock()
	depayloader := r.depayloader
	onPacket := r.onPacket
	r.mu.Unlock()

	if depayloader == nil {
		return
	}
	media, err := depayloader.Unmarshal(p.Payload)
	if err != nil {
		return // ParseError: silently dropped per spec §7
	}
	if onPacket != nil {
		onPacket(media, p)
	}
}

// OnRTP processes one inbound RTP packet already routed to this receiver
// by the demultiplexer (§4.2): it updates the per-SSRC report recorder and
// NACK generator, pushes video packets through the jitter buffer, and
// hands any now-emittable packets to the depayloader.
func (r *RTPReceiver) OnRTP(pkt *rtp.Packet, clockRate uint32, arrival time.Time) {
	r.mu.Lock()
	stream := r.streamFor(SSRC(pkt.SSRC), clockRate)
	r.mu.Unlock()

	stream.report.OnPacketReceived(pkt.SequenceNumber, pkt.Timestamp, arrival)
	stream.nack.OnPacket(pkt.SequenceNumber)

	var ready []*rtp.Packet
	if stream.jb != nil {
		ready = stream.jb.Push(pkt)
	} else {
		ready = []*rtp.Packet{pkt}
	}

	for _, p := range ready {
		r.deliver(p)
	}
}

// drainTimer collects any packets the jitter buffer emits once a gap
// timer fires, mirroring JitterBuffer.Push's return value. Called by
// onJitterTimer, the callback each stream's jitter buffer fires.
func (r *RTPReceiver) drainTimer(ssrc SSRC) []*rtp.Packet {
	r.mu.Lock()
	stream, ok := r.streams[ssrc]
	r.mu.Unlock()
	if !ok || stream.jb == nil {
		return nil
	}
	return stream.jb.TimerFired()
}

// HandleSenderReport records an inbound RTCP Sender Report against the
// named SSRC's receiver recorder, for the next Receiver Report's DLSR
// field (§4.7).
func (r *RTPReceiver) HandleSenderReport(sr *rtcp.SenderReport, received time.Time) {
	r.mu.Lock()
	stream, ok := r.streams[SSRC(sr.SSRC)]
	r.mu.Unlock()
	if !ok {
		return
	}
	stream.report.OnSenderReport(sr.NTPTime, received)
}

// Feedback returns one RTCP packet per inbound SSRC that currently has
// something to report: a ReceiverReport if any packets have arrived, and
// a TransportLayerNack if any sequence numbers are outstanding, per
// spec §4.4/§4.7.
func (r *RTPReceiver) Feedback(now time.Time) []rtcp.Packet {
	r.mu.Lock()
	streams := make([]*receiverStream, 0, len(r.streams))
	for _, s := range r.streams {
		streams = append(streams, s)
	}
	r.mu.Unlock()

	var out []rtcp.Packet
	for _, s := range streams {
		out = append(out, s.report.ReceiverReport(now))
		if fb := s.nack.GetFeedback(); fb != nil {
			out = append(out, fb)
		}
	}
	return out
}

// SSRCs returns every SSRC this receiver has observed.
func (r *RTPReceiver) SSRCs() []SSRC {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SSRC, 0, len(r.streams))
	for ssrc := range r.streams {
		out = append(out, ssrc)
	}
	return out
}

// demuxBinding is the subset of *mux.Demuxer the receiver needs when a
// simulcast RID extension requires per-encoding payload-type routing;
// kept as an interface so tests don't need the concrete demuxer.
type demuxBinding interface {
	BindPayloadType(payloadType uint8, mid string)
}

var _ demuxBinding = (*mux.Demuxer)(nil)
