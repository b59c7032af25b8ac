package webrtc

import (
	"net"
	"sync"
	"time"

	"github.com/pion/datachannel"
	"github.com/pion/sctp"
	"github.com/pion/transport/v2/packetio"

	"github.com/rtcweb/webrtc/internal/dcep"
)

// SCTPTransportState mirrors the W3C RTCSctpTransportState values.
type SCTPTransportState int

const (
	SCTPTransportStateConnecting SCTPTransportState = iota + 1
	SCTPTransportStateConnected
	SCTPTransportStateClosed
)

// sctpDataConn is the net.Conn subset *pionDTLSTransport's Send/OnData
// pair is adapted to present to sctp.Client/Server, mirroring
// iceConnAdapter one layer up: inbound application data lands in a
// packetio.Buffer bounded by mailboxBufferSize, and data that arrives
// while the buffer is full is dropped (the Write error is ignored).
type sctpDataConn struct {
	dtls DTLSTransport
	in   *packetio.Buffer
}

func newSCTPDataConn(d DTLSTransport) *sctpDataConn {
	buf := packetio.NewBuffer()
	buf.SetLimitSize(mailboxBufferSize)
	c := &sctpDataConn{dtls: d, in: buf}
	d.OnData(func(b []byte) {
		_, _ = c.in.Write(b)
	})
	return c
}

func (c *sctpDataConn) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *sctpDataConn) Write(p []byte) (int, error) {
	if err := c.dtls.Send(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *sctpDataConn) Close() error { return c.in.Close() }

// LocalAddr/RemoteAddr/SetDeadline family satisfy net.Conn, which
// sctp.Config.NetConn requires; the DTLS channel beneath has no
// meaningful per-call deadline or addr, so these are no-ops, mirroring
// iceConnAdapter one layer up.
func (c *sctpDataConn) LocalAddr() net.Addr  { return iceConnAddr{} }
func (c *sctpDataConn) RemoteAddr() net.Addr { return iceConnAddr{} }

func (c *sctpDataConn) SetDeadline(time.Time) error      { return nil }
func (c *sctpDataConn) SetReadDeadline(time.Time) error  { return nil }
func (c *sctpDataConn) SetWriteDeadline(time.Time) error { return nil }

// SCTPTransport wraps the external SCTP association of spec §6 ("SCTP
// association (consumed)") and hands out per-stream DataChannels, each
// running the DCEP handshake of §4.10 on open.
type SCTPTransport struct {
	mu sync.Mutex

	assoc *sctp.Association

	onDataChannel func(*DataChannel)
	state         SCTPTransportState

	channels map[uint16]*DataChannel
}

// NewSCTPTransport establishes the SCTP association over dtls as client
// (DTLS role client -> SCTP client, matching the teacher's one-to-one
// DTLS/SCTP role pairing) or server.
func NewSCTPTransport(dtls DTLSTransport, role DTLSRole) (*SCTPTransport, error) {
	conn := newSCTPDataConn(dtls)

	var assoc *sctp.Association
	var err error
	cfg := sctp.Config{NetConn: conn, LoggerFactory: newZerologLoggerFactory(defaultLogger)}
	if role == DTLSRoleClient {
		assoc, err = sctp.Client(cfg)
	} else {
		assoc, err = sctp.Server(cfg)
	}
	if err != nil {
		return nil, err
	}

	t := &SCTPTransport{
		assoc:    assoc,
		state:    SCTPTransportStateConnected,
		channels: make(map[uint16]*DataChannel),
	}
	go t.acceptLoop()
	return t, nil
}

// OnDataChannel registers the callback fired when the remote opens a new
// data channel (DCEP DATA_CHANNEL_OPEN received on a newly-accepted SCTP
// stream).
func (t *SCTPTransport) OnDataChannel(f func(*DataChannel)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDataChannel = f
}

// acceptLoop accepts each remotely-opened data channel; datachannel.Accept
// blocks through the inbound DATA_CHANNEL_OPEN PDU and replies with the
// ACK itself before returning, per spec §4.10.
func (t *SCTPTransport) acceptLoop() {
	for {
		inner, err := datachannel.Accept(t.assoc, &datachannel.AcceptOptions{})
		if err != nil {
			return
		}
		dc := newDataChannelFromRemoteStream(inner)
		t.mu.Lock()
		t.channels[inner.StreamIdentifier()] = dc
		cb := t.onDataChannel
		t.mu.Unlock()
		if cb != nil {
			cb(dc)
		}
	}
}

// OpenStream opens a new SCTP stream for label/protocol per init's
// reliability, priority, and negotiated attributes and returns a
// DataChannel. Unless init.Negotiated is set, datachannel.Dial runs the
// DCEP OPEN/ACK handshake of spec §3/§4.10 and blocks until the remote
// ACKs; pion/datachannel owns the actual bytes on the wire, but the
// reliability/priority values it encodes come from the same dcep PDU
// fields this package's internal/dcep codec exposes.
func (t *SCTPTransport) OpenStream(sid uint16, label string, init DataChannelInit) (*DataChannel, error) {
	inner, err := datachannel.Dial(t.assoc, sid, &datachannel.Config{
		ChannelType:          channelTypeFor(init),
		Priority:             init.Priority,
		ReliabilityParameter: reliabilityParameterFor(init),
		Label:                label,
		Protocol:             init.Protocol,
		Negotiated:           init.Negotiated,
	})
	if err != nil {
		return nil, err
	}

	dc := newDataChannelInitiator(inner, sid, init)
	t.mu.Lock()
	t.channels[sid] = dc
	t.mu.Unlock()
	return dc, nil
}

// channelTypeFor maps init's ordered/reliability attributes onto
// pion/datachannel's ChannelType enum, mirroring the dcep.Reliability
// variants spec §3's channel-type octet encodes.
func channelTypeFor(init DataChannelInit) datachannel.ChannelType {
	reliability, _ := init.reliability()
	switch {
	case reliability == dcep.ReliabilityRexmit && !init.Unordered:
		return datachannel.ChannelTypePartialReliableRexmit
	case reliability == dcep.ReliabilityRexmit:
		return datachannel.ChannelTypePartialReliableRexmitUnordered
	case reliability == dcep.ReliabilityTimed && !init.Unordered:
		return datachannel.ChannelTypePartialReliableTimed
	case reliability == dcep.ReliabilityTimed:
		return datachannel.ChannelTypePartialReliableTimedUnordered
	case !init.Unordered:
		return datachannel.ChannelTypeReliable
	default:
		return datachannel.ChannelTypeReliableUnordered
	}
}

func reliabilityParameterFor(init DataChannelInit) uint32 {
	_, param := init.reliability()
	return param
}

// CloseStream closes the identified SCTP stream.
func (t *SCTPTransport) CloseStream(sid uint16) error {
	t.mu.Lock()
	dc, ok := t.channels[sid]
	delete(t.channels, sid)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return dc.Close()
}

// Close tears down the SCTP association and every open DataChannel.
func (t *SCTPTransport) Close() error {
	t.mu.Lock()
	t.state = SCTPTransportStateClosed
	channels := make([]*DataChannel, 0, len(t.channels))
	for _, dc := range t.channels {
		channels = append(channels, dc)
	}
	t.mu.Unlock()

	for _, dc := range channels {
		_ = dc.Close()
	}
	return t.assoc.Close()
}
