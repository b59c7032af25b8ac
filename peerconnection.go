package webrtc

import (
	"time"

	"github.com/pion/ice/v2"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"golang.org/x/sync/errgroup"

	"github.com/rtcweb/webrtc/internal/mux"
	"github.com/rtcweb/webrtc/internal/sdp"
	"github.com/rtcweb/webrtc/pkg/codecs"
	"github.com/rtcweb/webrtc/pkg/rtcerr"
)

// commandQueueSize bounds the PeerConnection actor's inbound command
// mailbox (spec §5): a task per PeerConnection serially drains tagged
// commands off one bounded channel, eliminating internal locks on
// transceiver/codec/jitter state (spec.md §5's actor-per-PeerConnection
// model). Public operations that read or change PeerConnection state run
// as closures enqueued here; the On* callback setters assign their field
// directly.
const commandQueueSize = 256

// PeerConnection is the top-level controller of spec §4.11: it owns the
// ICE/DTLS/SRTP/SCTP transports, the transceiver list, and the signaling
// state machine, and serializes every state transition through a single
// actor goroutine.
type PeerConnection struct {
	mediaEngine *MediaEngine
	settings    SettingEngine

	inbox chan func()
	done  chan struct{}

	configuration Configuration

	signalingState      SignalingState
	connectionState     PeerConnectionState
	iceGatheringState   ICEGatheringState

	transceivers []*RTPTransceiver

	localDescription  *SessionDescription
	remoteDescription *SessionDescription

	demuxer        *mux.Demuxer
	midExtensionID int

	ice       ICETransport
	iceMux    *iceMux
	dtls      DTLSTransport
	srtp      *SRTPTransport
	sctp      *SCTPTransport
	role      DTLSRole
	localCert Certificate

	dataChannels map[uint16]*DataChannel
	nextStreamID uint16

	onICECandidate          func(ICECandidate)
	onICEConnectionChange   func(ICETransportState)
	onConnectionStateChange func(PeerConnectionState)
	onSignalingStateChange  func(SignalingState)
	onICEGatheringChange    func(ICEGatheringState)
	onTrack                 func(*TrackRemote, *RTPReceiver)
	onDataChannel           func(*DataChannel)

	statsTicker *time.Ticker
}

// NewPeerConnection constructs a PeerConnection using engine's registered
// codecs/header extensions and configuration's certificates, starting its
// actor goroutine immediately. Configuration.ICEServers is not passed to
// the ICE agent, which is created with a default configuration. Callers wanting engine-level
// NACK/jitter-buffer overrides should go through NewAPI instead, which
// threads a SettingEngine through to every transceiver this PeerConnection
// creates.
func NewPeerConnection(configuration Configuration, engine *MediaEngine) (*PeerConnection, error) {
	return newPeerConnection(configuration, engine, SettingEngine{})
}

func newPeerConnection(configuration Configuration, engine *MediaEngine, settings SettingEngine) (*PeerConnection, error) {
	// The MID extension id is fixed for the lifetime of the engine (assigned
	// once by RegisterHeaderExtension/RegisterDefaultCodecs), not
	// renegotiated per offer/answer, so it can be read off the engine and
	// handed to the demuxer up front, per spec §4.2/§4.11.
	midExtensionID := engine.extensionID(sdesMidURI)

	pc := &PeerConnection{
		mediaEngine:       engine,
		settings:          settings,
		inbox:             make(chan func(), commandQueueSize),
		done:              make(chan struct{}),
		configuration:     configuration,
		signalingState:    SignalingStateStable,
		connectionState:   PeerConnectionStateNew,
		iceGatheringState: ICEGatheringStateNew,
		demuxer:           mux.New(midExtensionID),
		midExtensionID:    midExtensionID,
		dataChannels:      make(map[uint16]*DataChannel),
		nextStreamID:      0,
	}

	agentCfg := &ice.AgentConfig{}
	iceTransport, err := NewPionICETransport(agentCfg)
	if err != nil {
		return nil, err
	}
	pc.ice = iceTransport
	pc.iceMux = newICEMux(iceTransport)

	var cert Certificate
	if len(configuration.Certificates) > 0 {
		cert = configuration.Certificates[0]
	}
	tlsCert, generated, err := generateSelfSignedCertificate()
	if err != nil {
		return nil, err
	}
	if cert.Equals(Certificate{}) {
		cert = generated
	}
	pc.localCert = cert
	pc.dtls = NewPionDTLSTransport(pc.iceMux.dtls, tlsCert)

	pc.ice.OnCandidate(func(c ICECandidate) { pc.enqueue(func() { pc.fireICECandidate(c) }) })
	pc.ice.OnConnectionStateChange(func(s ICETransportState) { pc.enqueue(func() { pc.handleICEStateChange(s) }) })
	pc.ice.OnGatheringStateChange(func(s ICEGatheringState) { pc.enqueue(func() { pc.handleGatheringStateChange(s) }) })
	pc.dtls.OnStateChange(func(s DTLSTransportState) { pc.enqueue(func() { pc.handleDTLSStateChange(s) }) })

	go pc.run()
	return pc, nil
}

// run is the actor loop: every inbound command, timer fire, and callback
// from ICE/DTLS/SRTP/SCTP executes here, one at a time, so transceiver,
// codec, and jitter state never needs its own lock.
func (pc *PeerConnection) run() {
	for {
		select {
		case fn := <-pc.inbox:
			fn()
		case <-pc.done:
			return
		}
	}
}

// enqueue schedules fn to run on the actor goroutine. Used by every
// public method (via a reply channel closed over by fn) and by every
// transport callback.
func (pc *PeerConnection) enqueue(fn func()) {
	select {
	case pc.inbox <- fn:
	case <-pc.done:
	}
}

// call enqueues fn and blocks until it has run, returning its error.
func (pc *PeerConnection) call(fn func() error) error {
	reply := make(chan error, 1)
	pc.enqueue(func() { reply <- fn() })
	select {
	case err := <-reply:
		return err
	case <-pc.done:
		return ErrConnectionClosed
	}
}

// AddTransceiverFromTrack creates a new RTPTransceiver bound to track,
// added to the end of the transceiver list (spec §4.11 addTrack).
func (pc *PeerConnection) AddTransceiverFromTrack(track TrackLocal, direction RTPTransceiverDirection) (*RTPTransceiver, error) {
	var t *RTPTransceiver
	err := pc.call(func() error {
		sender, err := NewRTPSender(track, nil)
		if err != nil {
			return err
		}
		sender.applySettings(pc.settings)
		receiver := NewRTPReceiver(track.Kind(), uint32(sender.SSRC()))
		receiver.applySettings(pc.settings)
		t = newRTPTransceiver(track.Kind(), direction, sender, receiver)
		pc.transceivers = append(pc.transceivers, t)
		return nil
	})
	return t, err
}

// AddTransceiverFromKind creates a transceiver for kind with the given
// direction and no local track (no sender), used to solicit a remote
// send-only m-line.
func (pc *PeerConnection) AddTransceiverFromKind(kind RTPCodecType, direction RTPTransceiverDirection) (*RTPTransceiver, error) {
	var t *RTPTransceiver
	err := pc.call(func() error {
		receiver := NewRTPReceiver(kind, 0)
		receiver.applySettings(pc.settings)
		t = newRTPTransceiver(kind, direction, nil, receiver)
		pc.transceivers = append(pc.transceivers, t)
		return nil
	})
	return t, err
}

// GetTransceivers returns a snapshot of every transceiver ever added.
func (pc *PeerConnection) GetTransceivers() []*RTPTransceiver {
	var out []*RTPTransceiver
	_ = pc.call(func() error {
		out = append(out, pc.transceivers...)
		return nil
	})
	return out
}

// CreateOffer renders an SDP offer from the current transceiver list, per
// spec §4.1's offer-creation rules.
func (pc *PeerConnection) CreateOffer() (SessionDescription, error) {
	var desc SessionDescription
	err := pc.call(func() error {
		sections := sdp.BuildOffer(pc.transceiverInfos(), pc.sessionParams())
		desc = NewSessionDescription(SDPTypeOffer, sdp.Render(1, sections))
		return nil
	})
	return desc, err
}

// CreateAnswer renders an SDP answer against the current remote
// description, per spec §4.1's answer-creation rules. Returns
// InvalidStateError if no remote offer is set.
func (pc *PeerConnection) CreateAnswer() (SessionDescription, error) {
	var desc SessionDescription
	err := pc.call(func() error {
		if pc.remoteDescription == nil {
			return &rtcerr.InvalidStateError{Err: errNoRemoteDescription}
		}
		parsed, err := pc.remoteDescription.Parsed()
		if err != nil {
			return err
		}
		sections := sdp.BuildAnswer(parsed, pc.transceiverInfos(), pc.sessionParams())
		desc = NewSessionDescription(SDPTypeAnswer, sdp.Render(2, sections))
		return nil
	})
	return desc, err
}

func (pc *PeerConnection) sessionParams() sdp.SessionParams {
	return sdp.SessionParams{Fingerprint: pc.localCert.fingerprint, Setup: "actpass"}
}

func (pc *PeerConnection) transceiverInfos() []sdp.TransceiverInfo {
	out := make([]sdp.TransceiverInfo, 0, len(pc.transceivers))
	for _, t := range pc.transceivers {
		var codecs []sdp.Codec
		for _, c := range pc.mediaEngine.getCodecsByKind(t.Kind()) {
			var fb []sdp.RTCPFeedback
			for _, f := range c.RTCPFeedback {
				fb = append(fb, sdp.RTCPFeedback{Type: f.Type, Parameter: f.Parameter})
			}
			codecs = append(codecs, sdp.Codec{
				PayloadType:  uint8(c.PayloadType),
				MimeType:     c.MimeType,
				ClockRate:    c.ClockRate,
				Channels:     c.Channels,
				Fmtp:         c.SDPFmtpLine,
				RTCPFeedback: fb,
			})
		}
		var extensions []sdp.HeaderExtension
		for _, h := range pc.mediaEngine.headerExtensionsForKind(t.Kind()) {
			extensions = append(extensions, sdp.HeaderExtension{ID: h.id, URI: h.uri})
		}

		var ssrcs []uint32
		var ssrcGroup []uint32
		if sender := t.Sender(); sender != nil {
			ssrcs = append(ssrcs, uint32(sender.SSRC()))
			if rtxSSRC := sender.RTXSSRC(); rtxSSRC != 0 {
				ssrcs = append(ssrcs, uint32(rtxSSRC))
				ssrcGroup = []uint32{uint32(sender.SSRC()), uint32(rtxSSRC)}
			}
		}
		out = append(out, sdp.TransceiverInfo{
			Kind:             t.Kind().String(),
			MID:              t.Mid(),
			Stopped:          t.Stopped(),
			Direction:        sdpDirectionFrom(t.Direction()),
			Codecs:           codecs,
			HeaderExtensions: extensions,
			SSRCs:            ssrcs,
			SSRCGroupFID:     ssrcGroup,
		})
	}
	return out
}

func sdpDirectionFrom(d RTPTransceiverDirection) sdp.Direction {
	switch d {
	case RTPTransceiverDirectionSendonly:
		return sdp.DirectionSendonly
	case RTPTransceiverDirectionRecvonly:
		return sdp.DirectionRecvonly
	case RTPTransceiverDirectionInactive, RTPTransceiverDirectionStopped:
		return sdp.DirectionInactive
	default:
		return sdp.DirectionSendrecv
	}
}

// SetLocalDescription applies desc as the local description, per the
// signaling-state table of spec §4.1, and starts ICE gathering. Setting a
// local answer (the remote offer is already set) also starts the ICE/DTLS
// handshake.
func (pc *PeerConnection) SetLocalDescription(desc SessionDescription) error {
	return pc.call(func() error {
		switch {
		case desc.Type == SDPTypeOffer && pc.signalingState == SignalingStateStable:
			pc.setSignalingState(SignalingStateHaveLocalOffer)
		case desc.Type == SDPTypeAnswer && pc.signalingState == SignalingStateHaveRemoteOffer:
			pc.setSignalingState(SignalingStateStable)
			pc.role = DTLSRoleServer
		default:
			if desc.Type == SDPTypeAnswer {
				return &rtcerr.InvalidStateError{Err: ErrSignalingStateCannotSetLocalAnswer}
			}
			return &rtcerr.InvalidStateError{Err: ErrSignalingStateCannotSetLocalOffer}
		}
		pc.localDescription = &desc
		if err := pc.ice.Gather(); err != nil {
			return err
		}
		if desc.Type == SDPTypeAnswer && pc.remoteDescription != nil {
			if parsed, err := pc.remoteDescription.Parsed(); err == nil {
				pc.startTransports(parsed)
			}
		}
		return nil
	})
}

// SetRemoteDescription applies desc as the remote description: m-lines
// are matched to transceivers (creating recvonly ones for unmatched
// offered kinds), MIDs are assigned, and once both descriptions are set
// the transport handshake begins.
func (pc *PeerConnection) SetRemoteDescription(desc SessionDescription) error {
	return pc.call(func() error {
		parsed, err := desc.Parsed()
		if err != nil {
			return ErrInvalidSDP
		}

		switch {
		case desc.Type == SDPTypeOffer && (pc.signalingState == SignalingStateStable || pc.signalingState == SignalingStateHaveRemoteOffer):
			pc.setSignalingState(SignalingStateHaveRemoteOffer)
			pc.role = DTLSRoleServer
		case desc.Type == SDPTypeAnswer && pc.signalingState == SignalingStateHaveLocalOffer:
			pc.setSignalingState(SignalingStateStable)
			pc.role = DTLSRoleClient
		default:
			if desc.Type == SDPTypeAnswer {
				return &rtcerr.InvalidStateError{Err: ErrSignalingStateCannotSetRemoteAnswer}
			}
			return &rtcerr.InvalidStateError{Err: ErrSignalingStateCannotSetRemoteOffer}
		}

		pc.remoteDescription = &desc
		pc.applyRemoteSections(parsed.MediaSections)

		if pc.localDescription != nil && pc.remoteDescription != nil {
			pc.startTransports(parsed)
		}
		return nil
	})
}

// applyRemoteSections binds each remote m-line to a transceiver (existing
// by MID, else the earliest unused matching kind, else a freshly-created
// recvonly one), assigns MIDs, negotiates codecs/direction, and binds the
// demuxer's payload-type table, per spec §4.1/§4.2.
func (pc *PeerConnection) applyRemoteSections(sections []sdp.MediaSection) {
	used := make(map[string]bool)

	for _, section := range sections {
		t := pc.findOrCreateTransceiver(section, used)
		if t == nil {
			continue
		}
		t.setMid(section.MID)
		used[t.Mid()] = true

		localCodecs := pc.mediaEngine.getCodecsByKind(t.Kind())
		var negotiated []RTPCodecParameters
		for _, rc := range section.Codecs {
			for _, lc := range localCodecs {
				if uint8(lc.PayloadType) == rc.PayloadType {
					negotiated = append(negotiated, lc)
					pc.demuxer.BindPayloadType(rc.PayloadType, t.Mid())
				}
			}
		}
		t.setNegotiatedCodecs(negotiated, nil)
		t.setCurrentDirection(negotiatedDirection(t.Direction(), sdpDirectionToTransceiver(section.Direction)))

		if sender := t.Sender(); sender != nil && len(negotiated) > 0 {
			sender.setMid(t.Mid())
			_ = sender.bind(negotiated, rtxPayloadTypeFor(negotiated), pc.midExtensionID)
		}
		if receiver := t.Receiver(); receiver != nil && len(negotiated) > 0 {
			receiver.setDepayloader(codecs.NewDepayloader(negotiated[0].MimeType))
			cd := t.CurrentDirection()
			admitsInbound := cd == RTPTransceiverDirectionRecvonly || cd == RTPTransceiverDirectionSendrecv
			if admitsInbound && t.fireOnce() {
				track := newTrackRemote(t.Kind(), 0, "", receiver)
				track.setCodec(negotiated[0])
				if pc.onTrack != nil {
					pc.onTrack(track, receiver)
				}
			}
		}
	}
}

// rtxPayloadTypeFor returns the negotiated RTX codec's payload type paired
// (via its apt= fmtp parameter) with codecs' first non-RTX entry — the
// entry a sender's track.Bind call picks, per bind's "most-preferred
// first" contract — or 0 if no RTX entry was negotiated for it.
func rtxPayloadTypeFor(codecs []RTPCodecParameters) PayloadType {
	var primary RTPCodecParameters
	havePrimary := false
	for _, c := range codecs {
		if !c.IsRTX() {
			primary = c
			havePrimary = true
			break
		}
	}
	if !havePrimary {
		return 0
	}
	for _, c := range codecs {
		if !c.IsRTX() {
			continue
		}
		if apt, ok := c.aptPayloadType(); ok && apt == primary.PayloadType {
			return c.PayloadType
		}
	}
	return 0
}

func sdpDirectionToTransceiver(d sdp.Direction) RTPTransceiverDirection {
	switch d {
	case sdp.DirectionSendonly:
		return RTPTransceiverDirectionSendonly
	case sdp.DirectionRecvonly:
		return RTPTransceiverDirectionRecvonly
	case sdp.DirectionInactive:
		return RTPTransceiverDirectionInactive
	default:
		return RTPTransceiverDirectionSendrecv
	}
}

func (pc *PeerConnection) findOrCreateTransceiver(section sdp.MediaSection, used map[string]bool) *RTPTransceiver {
	kind := NewRTPCodecType(section.Kind)
	for _, t := range pc.transceivers {
		if t.Mid() != "" && t.Mid() == section.MID {
			return t
		}
	}
	if local, _ := satisfyTypeAndDirection(kind, pc.transceivers, used); local != nil {
		return local
	}
	receiver := NewRTPReceiver(kind, 0)
	receiver.applySettings(pc.settings)
	t := newRTPTransceiver(kind, RTPTransceiverDirectionRecvonly, nil, receiver)
	pc.transceivers = append(pc.transceivers, t)
	return t
}

// startTransports begins the ICE connectivity checks and DTLS handshake
// once both local and remote descriptions are known, per spec §4.11.
func (pc *PeerConnection) startTransports(remote *sdp.Description) {
	var ufrag, pwd string
	for _, s := range remote.MediaSections {
		if s.ICEUfrag != "" {
			ufrag, pwd = s.ICEUfrag, s.ICEPwd
			break
		}
	}

	controlling := pc.role == DTLSRoleClient
	if pionT, ok := pc.ice.(*pionICETransport); ok {
		go func() {
			if err := pionT.Connect(controlling, ufrag, pwd); err != nil {
				pc.enqueue(func() { pc.setConnectionState(PeerConnectionStateFailed) })
				return
			}
			pc.enqueue(func() {
				if err := pc.dtls.Start(pc.role); err != nil {
					pc.setConnectionState(PeerConnectionStateFailed)
				}
			})
		}()
	}
}

// handleDTLSStateChange brings up SRTP and SCTP once the DTLS handshake
// completes, per spec §4.11's transport bring-up order.
func (pc *PeerConnection) handleDTLSStateChange(s DTLSTransportState) {
	if s != DTLSTransportStateConnected {
		if s == DTLSTransportStateFailed {
			pc.setConnectionState(PeerConnectionStateFailed)
		}
		return
	}

	srtpT, err := NewSRTPTransport(pc.dtls, pc.role, pc.iceMux.srtp, pc.iceMux.srtcp)
	if err != nil {
		pc.setConnectionState(PeerConnectionStateFailed)
		return
	}
	pc.srtp = srtpT
	srtpT.OnRTP(func(pkt *rtp.Packet, arrival time.Time) { pc.enqueue(func() { pc.handleInboundRTP(pkt, arrival) }) })
	srtpT.OnRTCP(func(pkts []rtcp.Packet) { pc.enqueue(func() { pc.handleInboundRTCP(pkts) }) })

	for _, t := range pc.transceivers {
		if sender := t.Sender(); sender != nil {
			sender.setTransport(srtpT)
		}
	}

	sctpT, err := NewSCTPTransport(pc.dtls, pc.role)
	if err != nil {
		pc.setConnectionState(PeerConnectionStateFailed)
		return
	}
	pc.sctp = sctpT
	sctpT.OnDataChannel(func(dc *DataChannel) {
		pc.enqueue(func() {
			pc.dataChannels[pc.nextStreamID] = dc
			if pc.onDataChannel != nil {
				pc.onDataChannel(dc)
			}
		})
	})

	pc.setConnectionState(PeerConnectionStateConnected)
	pc.startStatsTimer()
}

// handleInboundRTP routes a decrypted RTP packet to the transceiver its
// MID/SSRC/payload type resolves to, per the demultiplexer of spec §4.2.
func (pc *PeerConnection) handleInboundRTP(pkt *rtp.Packet, arrival time.Time) {
	var midExt []byte
	if pc.midExtensionID != 0 {
		midExt = pkt.Header.GetExtension(uint8(pc.midExtensionID))
	}
	mid, err := pc.demuxer.Match(&pkt.Header, midExt)
	if err != nil {
		return
	}
	for _, t := range pc.transceivers {
		if t.Mid() != mid {
			continue
		}
		receiver := t.Receiver()
		if receiver == nil {
			return
		}
		clockRate := uint32(90000)
		if codecs := t.NegotiatedCodecs(); len(codecs) > 0 {
			clockRate = codecs[0].ClockRate
		}
		receiver.OnRTP(pkt, clockRate, arrival)
		return
	}
}

// handleInboundRTCP routes compound RTCP feedback to the sender (NACK) or
// receiver (SR) it is addressed to, by SSRC, per spec §4.5/§4.7.
func (pc *PeerConnection) handleInboundRTCP(pkts []rtcp.Packet) {
	for _, p := range pkts {
		switch v := p.(type) {
		case *rtcp.SenderReport:
			for _, t := range pc.transceivers {
				if receiver := t.Receiver(); receiver != nil {
					receiver.HandleSenderReport(v, time.Now())
				}
			}
		case *rtcp.TransportLayerNack:
			for _, t := range pc.transceivers {
				if sender := t.Sender(); sender != nil && uint32(sender.SSRC()) == v.MediaSSRC {
					_ = sender.HandleRTCP([]rtcp.Packet{v})
				}
			}
		}
	}
}

// startStatsTimer periodically emits Sender Reports and pulls Receiver
// Report/NACK feedback for every transceiver, per spec §4.6/§4.7.
func (pc *PeerConnection) startStatsTimer() {
	pc.statsTicker = time.NewTicker(5 * time.Second)
	ticker := pc.statsTicker
	go func() {
		for range ticker.C {
			pc.enqueue(pc.emitPeriodicFeedback)
		}
	}()
}

func (pc *PeerConnection) emitPeriodicFeedback() {
	if pc.srtp == nil {
		return
	}
	now := time.Now()
	for _, t := range pc.transceivers {
		if sender := t.Sender(); sender != nil {
			if sr := sender.SenderReport(now); sr != nil {
				_ = pc.srtp.WriteRTCP([]rtcp.Packet{sr})
			}
		}
		if receiver := t.Receiver(); receiver != nil {
			if fb := receiver.Feedback(now); len(fb) > 0 {
				_ = pc.srtp.WriteRTCP(fb)
			}
		}
	}
}

// CreateDataChannel opens a new SCTP-backed data channel, negotiating
// ordering, reliability, priority, and (if requested) an out-of-band
// stream ID via the DCEP OPEN/ACK exchange of spec §3/§4.10. If the SCTP
// transport is not yet up (pre-connection), it returns ErrConnectionClosed;
// a real PeerConnection would queue it for post-handshake creation, which
// this module's callers handle by retrying after OnConnectionStateChange.
func (pc *PeerConnection) CreateDataChannel(label string, init DataChannelInit) (*DataChannel, error) {
	var dc *DataChannel
	err := pc.call(func() error {
		if pc.sctp == nil {
			return ErrConnectionClosed
		}
		sid := init.ID
		if !init.Negotiated {
			sid = pc.nextStreamID
			if pc.role == DTLSRoleServer {
				sid++
			}
			pc.nextStreamID += 2 // even/odd SID split by DTLS role, per §3
		}
		created, err := pc.sctp.OpenStream(sid, label, init)
		if err != nil {
			return err
		}
		pc.dataChannels[sid] = created
		dc = created
		return nil
	})
	return dc, err
}

// AddICECandidate adds a remote ICE candidate, per spec §4.11.
func (pc *PeerConnection) AddICECandidate(c ICECandidate) error {
	return pc.call(func() error { return pc.ice.AddRemoteCandidate(c) })
}

func (pc *PeerConnection) fireICECandidate(c ICECandidate) {
	if pc.onICECandidate != nil {
		pc.onICECandidate(c)
	}
}

func (pc *PeerConnection) handleICEStateChange(s ICETransportState) {
	defaultLogger.Debug().Stringer("ice_state", s).Msg("ice transport state changed")
	if pc.onICEConnectionChange != nil {
		pc.onICEConnectionChange(s)
	}
	switch s {
	case ICETransportStateFailed:
		pc.setConnectionState(PeerConnectionStateFailed)
	case ICETransportStateDisconnected:
		pc.setConnectionState(PeerConnectionStateDisconnected)
	}
}

func (pc *PeerConnection) handleGatheringStateChange(s ICEGatheringState) {
	pc.iceGatheringState = s
	if pc.onICEGatheringChange != nil {
		pc.onICEGatheringChange(s)
	}
}

func (pc *PeerConnection) setSignalingState(s SignalingState) {
	defaultLogger.Debug().Stringer("signaling_state", s).Msg("signaling state changed")
	pc.signalingState = s
	if pc.onSignalingStateChange != nil {
		pc.onSignalingStateChange(s)
	}
}

func (pc *PeerConnection) setConnectionState(s PeerConnectionState) {
	if pc.connectionState == s {
		return
	}
	pc.connectionState = s
	defaultLogger.Info().Stringer("connection_state", s).Msg("peer connection state changed")
	if pc.onConnectionStateChange != nil {
		pc.onConnectionStateChange(s)
	}
}

// SignalingState returns the current signaling state.
func (pc *PeerConnection) SignalingState() SignalingState {
	var s SignalingState
	_ = pc.call(func() error { s = pc.signalingState; return nil })
	return s
}

// ConnectionState returns the current aggregated connection state.
func (pc *PeerConnection) ConnectionState() PeerConnectionState {
	var s PeerConnectionState
	_ = pc.call(func() error { s = pc.connectionState; return nil })
	return s
}

// OnICECandidate registers the callback fired for each locally-gathered
// ICE candidate.
func (pc *PeerConnection) OnICECandidate(f func(ICECandidate)) { pc.onICECandidate = f }

// OnICEConnectionStateChange registers the callback fired on every ICE
// transport state transition.
func (pc *PeerConnection) OnICEConnectionStateChange(f func(ICETransportState)) {
	pc.onICEConnectionChange = f
}

// OnConnectionStateChange registers the callback fired on every
// aggregated connection state transition.
func (pc *PeerConnection) OnConnectionStateChange(f func(PeerConnectionState)) {
	pc.onConnectionStateChange = f
}

// OnSignalingStateChange registers the callback fired on every signaling
// state transition.
func (pc *PeerConnection) OnSignalingStateChange(f func(SignalingState)) {
	pc.onSignalingStateChange = f
}

// OnICEGatheringStateChange registers the callback fired as candidate
// gathering progresses.
func (pc *PeerConnection) OnICEGatheringStateChange(f func(ICEGatheringState)) {
	pc.onICEGatheringChange = f
}

// OnTrack registers the callback fired once per newly-bound receiver, the
// first time its transceiver's direction admits inbound media (spec
// §4.11's Track event).
func (pc *PeerConnection) OnTrack(f func(*TrackRemote, *RTPReceiver)) { pc.onTrack = f }

// OnDataChannel registers the callback fired for every remotely-opened
// data channel.
func (pc *PeerConnection) OnDataChannel(f func(*DataChannel)) { pc.onDataChannel = f }

// Close tears down every transport and stops the actor goroutine.
func (pc *PeerConnection) Close() error {
	return pc.call(func() error {
		if pc.connectionState == PeerConnectionStateClosed {
			return nil
		}
		pc.setSignalingState(SignalingStateClosed)
		pc.setConnectionState(PeerConnectionStateClosed)

		if pc.statsTicker != nil {
			pc.statsTicker.Stop()
		}

		// The media/data planes are independent of each other, so they tear
		// down concurrently; the transports beneath (DTLS, then the ICE mux,
		// then ICE itself) are each a dependency of the layer above and so
		// close out in sequence afterward.
		var group errgroup.Group
		for _, t := range pc.transceivers {
			t := t
			group.Go(t.Stop)
		}
		if pc.sctp != nil {
			group.Go(pc.sctp.Close)
		}
		if pc.srtp != nil {
			group.Go(pc.srtp.Close)
		}
		if err := group.Wait(); err != nil {
			defaultLogger.Warn().Err(err).Msg("error tearing down media/data planes")
		}

		if pc.dtls != nil {
			_ = pc.dtls.Close()
		}
		if pc.iceMux != nil {
			_ = pc.iceMux.Close()
		}
		if pc.ice != nil {
			_ = pc.ice.Close()
		}
		close(pc.done)
		return nil
	})
}

var errNoRemoteDescription = staticErr("webrtc: no remote description set")
