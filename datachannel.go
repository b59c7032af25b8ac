package webrtc

import (
	"sync"

	"github.com/pion/datachannel"

	"github.com/rtcweb/webrtc/internal/dcep"
)

// DataChannelInit mirrors the W3C RTCDataChannelInit dictionary: the
// reliability/priority/negotiated attributes spec §3's DCEP OPEN PDU
// carries, chosen once at CreateDataChannel time and immutable for the
// channel's lifetime. A zero value requests an ordered, reliable,
// non-negotiated channel at normal priority (mirroring the DCEP channel-type
// octet's own zero value, where bit 7 unset means ordered).
type DataChannelInit struct {
	Unordered bool

	// MaxRetransmits and MaxPacketLifeTime are mutually exclusive partial
	// reliability policies; at most one may be set (non-nil). Neither set
	// means fully reliable.
	MaxRetransmits    *uint16
	MaxPacketLifeTime *uint16

	Protocol string

	// Negotiated true means both ends call CreateDataChannel with the
	// same ID out of band and skip the in-band DCEP exchange entirely.
	Negotiated bool
	ID         uint16

	Priority uint16
}

// reliability translates the init dictionary's mutually-exclusive
// MaxRetransmits/MaxPacketLifeTime pair into the dcep wire encoding of
// spec §3.
func (i DataChannelInit) reliability() (dcep.Reliability, uint32) {
	switch {
	case i.MaxRetransmits != nil:
		return dcep.ReliabilityRexmit, uint32(*i.MaxRetransmits)
	case i.MaxPacketLifeTime != nil:
		return dcep.ReliabilityTimed, uint32(*i.MaxPacketLifeTime)
	default:
		return dcep.ReliabilityReliable, 0
	}
}

// DataChannelState mirrors the W3C RTCDataChannelState values, driven by
// the DCEP OPEN/ACK handshake of spec §4.10. pion/datachannel performs
// the handshake itself; this wrapper only tracks the resulting state and
// fans inbound messages out to a registered callback.
type DataChannelState int

const (
	DataChannelStateConnecting DataChannelState = iota + 1
	DataChannelStateOpen
	DataChannelStateClosing
	DataChannelStateClosed
)

func (s DataChannelState) String() string {
	switch s {
	case DataChannelStateConnecting:
		return "connecting"
	case DataChannelStateOpen:
		return "open"
	case DataChannelStateClosing:
		return "closing"
	case DataChannelStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DataChannel is one SCTP-stream-backed data channel. The DCEP OPEN/ACK
// exchange of spec §3/§4.10 and the string/binary PPID framing are both
// handled by the wrapped *datachannel.DataChannel; this type only adds
// the open/message/close event surface and ready-state bookkeeping a
// PeerConnection's DataChannel API needs.
type DataChannel struct {
	mu sync.Mutex

	inner *datachannel.DataChannel

	label, protocol string
	ordered         bool

	maxRetransmits    *uint16
	maxPacketLifeTime *uint16
	negotiated        bool
	id                uint16
	priority          uint16

	state DataChannelState

	onOpen    func()
	onMessage func(data []byte, isString bool)
	onClose   func()
}

// newDataChannelInitiator wraps a locally-dialed data channel: the OPEN/ACK
// handshake has already completed by the time Dial returns, so it is
// immediately open.
func newDataChannelInitiator(inner *datachannel.DataChannel, sid uint16, init DataChannelInit) *DataChannel {
	dc := &DataChannel{
		inner:             inner,
		label:             inner.Config.Label,
		protocol:          inner.Config.Protocol,
		ordered:           !init.Unordered,
		maxRetransmits:    init.MaxRetransmits,
		maxPacketLifeTime: init.MaxPacketLifeTime,
		negotiated:        init.Negotiated,
		id:                sid,
		priority:          init.Priority,
		state:             DataChannelStateOpen,
	}
	go dc.readLoop()
	go dc.fireOpen()
	return dc
}

// newDataChannelFromRemoteStream wraps a remotely-opened data channel
// accepted via datachannel.Accept, whose Config reflects the label,
// protocol, ordering, reliability, and priority the remote's DCEP OPEN PDU
// requested (decoded by pion/datachannel before Accept returns).
func newDataChannelFromRemoteStream(inner *datachannel.DataChannel) *DataChannel {
	dc := &DataChannel{
		inner:      inner,
		label:      inner.Config.Label,
		protocol:   inner.Config.Protocol,
		ordered:    !inner.Config.ChannelType.Unordered(),
		negotiated: inner.Config.Negotiated,
		id:         inner.StreamIdentifier(),
		priority:   inner.Config.Priority,
		state:      DataChannelStateOpen,
	}
	switch inner.Config.ChannelType {
	case datachannel.ChannelTypePartialReliableRexmit, datachannel.ChannelTypePartialReliableRexmitUnordered:
		n := uint16(inner.Config.ReliabilityParameter)
		dc.maxRetransmits = &n
	case datachannel.ChannelTypePartialReliableTimed, datachannel.ChannelTypePartialReliableTimedUnordered:
		n := uint16(inner.Config.ReliabilityParameter)
		dc.maxPacketLifeTime = &n
	}
	go dc.readLoop()
	go dc.fireOpen()
	return dc
}

// readLoop pumps inbound application messages, tagged string vs. binary
// by ReadDataChannel's isString flag, to onMessage.
func (dc *DataChannel) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, isString, err := dc.inner.ReadDataChannel(buf)
		if err != nil {
			dc.setState(DataChannelStateClosed)
			dc.fireClose()
			return
		}
		dc.fireMessage(append([]byte(nil), buf[:n]...), isString)
	}
}

func (dc *DataChannel) setState(s DataChannelState) {
	dc.mu.Lock()
	dc.state = s
	dc.mu.Unlock()
}

func (dc *DataChannel) fireOpen() {
	dc.mu.Lock()
	cb := dc.onOpen
	dc.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (dc *DataChannel) fireMessage(data []byte, isString bool) {
	dc.mu.Lock()
	cb := dc.onMessage
	dc.mu.Unlock()
	if cb != nil {
		cb(data, isString)
	}
}

func (dc *DataChannel) fireClose() {
	dc.mu.Lock()
	cb := dc.onClose
	dc.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// OnOpen registers the callback fired once the channel is ready to send.
func (dc *DataChannel) OnOpen(f func()) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onOpen = f
}

// OnMessage registers the callback fired for every inbound application
// message, tagged with whether it arrived on the string or binary PPID.
func (dc *DataChannel) OnMessage(f func(data []byte, isString bool)) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onMessage = f
}

// OnClose registers the callback fired once the underlying stream closes.
func (dc *DataChannel) OnClose(f func()) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onClose = f
}

// Label returns the channel's negotiated label.
func (dc *DataChannel) Label() string {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.label
}

// ReadyState returns the channel's current state.
func (dc *DataChannel) ReadyState() DataChannelState {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.state
}

// Ordered reports whether messages are delivered in send order.
func (dc *DataChannel) Ordered() bool { return dc.ordered }

// MaxRetransmits returns the channel's bounded-retransmit-count policy, or
// nil if unset (either fully reliable or time-bounded instead).
func (dc *DataChannel) MaxRetransmits() *uint16 { return dc.maxRetransmits }

// MaxPacketLifeTime returns the channel's bounded-retransmit-time policy in
// milliseconds, or nil if unset (either fully reliable or count-bounded
// instead).
func (dc *DataChannel) MaxPacketLifeTime() *uint16 { return dc.maxPacketLifeTime }

// Protocol returns the subprotocol negotiated for this channel.
func (dc *DataChannel) Protocol() string { return dc.protocol }

// Negotiated reports whether this channel was opened out-of-band (both
// ends called CreateDataChannel with the same ID, skipping DCEP).
func (dc *DataChannel) Negotiated() bool { return dc.negotiated }

// ID returns the channel's SCTP stream identifier.
func (dc *DataChannel) ID() uint16 { return dc.id }

// Priority returns the channel's DCEP OPEN priority value.
func (dc *DataChannel) Priority() uint16 { return dc.priority }

// Send writes a binary application message.
func (dc *DataChannel) Send(data []byte) error {
	_, err := dc.inner.WriteDataChannel(data, false)
	return err
}

// SendText writes a UTF-8 application message on the string PPID.
func (dc *DataChannel) SendText(text string) error {
	_, err := dc.inner.WriteDataChannel([]byte(text), true)
	return err
}

// Close closes the underlying data channel stream.
func (dc *DataChannel) Close() error {
	dc.setState(DataChannelStateClosing)
	err := dc.inner.Close()
	dc.setState(DataChannelStateClosed)
	return err
}
