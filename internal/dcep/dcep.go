// Package dcep implements the DATA_CHANNEL_OPEN/DATA_CHANNEL_ACK PDU codec
// of spec §3: the control messages exchanged on PPID 50, on the
// newly-allocated SCTP stream, before a data channel is usable (spec
// §4.10). It is a pure translator kept independent of pion/datachannel's
// own wire handling, so reliability/priority/negotiated attributes survive
// intact across the OPEN/ACK round trip even when pion/datachannel is the
// one actually driving the stream.
package dcep

import (
	"encoding/binary"
	"errors"
)

// Message type octets, per spec §3.
const (
	messageTypeAck  = 0x02
	messageTypeOpen = 0x03
)

// Channel type octet: bit 7 selects unordered, the low two bits select the
// reliability variant.
const (
	channelTypeUnorderedBit = 0x80

	channelTypeReliable = 0x00
	channelTypeRexmit   = 0x01
	channelTypeTimed    = 0x02
)

// Reliability names the three DCEP retransmission policies a channel can
// request: unlimited retransmission, a bounded retransmit count, or a
// bounded retransmit time window.
type Reliability uint8

const (
	ReliabilityReliable Reliability = iota
	ReliabilityRexmit
	ReliabilityTimed
)

// OpenMessage is a decoded DATA_CHANNEL_OPEN PDU.
type OpenMessage struct {
	Unordered bool

	Reliability Reliability
	// ReliabilityParameter is the max-retransmits count when Reliability
	// is ReliabilityRexmit, or the max-packet-lifetime in milliseconds
	// when Reliability is ReliabilityTimed; unused for ReliabilityReliable.
	ReliabilityParameter uint32

	Priority uint16
	Label    string
	Protocol string
}

// AckMessage is a decoded DATA_CHANNEL_ACK PDU. It carries no fields: the
// PDU is zero-length beyond its message type octet.
type AckMessage struct{}

var (
	// ErrShortBuffer is returned when a buffer is too small to hold the
	// PDU it claims to contain.
	ErrShortBuffer = errors.New("dcep: buffer too short")
	// ErrUnknownMessageType is returned by Unmarshal when the leading
	// octet is neither DATA_CHANNEL_ACK nor DATA_CHANNEL_OPEN.
	ErrUnknownMessageType = errors.New("dcep: unknown message type")
)

// Marshal encodes msg, which must be an OpenMessage or AckMessage, into
// its wire form.
func Marshal(msg interface{}) ([]byte, error) {
	switch m := msg.(type) {
	case OpenMessage:
		return m.Marshal(), nil
	case AckMessage:
		return m.Marshal(), nil
	default:
		return nil, ErrUnknownMessageType
	}
}

// Unmarshal decodes a PDU into an OpenMessage or AckMessage, dispatching on
// the leading message-type octet.
func Unmarshal(b []byte) (interface{}, error) {
	if len(b) == 0 {
		return nil, ErrShortBuffer
	}
	switch b[0] {
	case messageTypeAck:
		return UnmarshalAck(b)
	case messageTypeOpen:
		return UnmarshalOpen(b)
	default:
		return nil, ErrUnknownMessageType
	}
}

// Marshal encodes m into a DATA_CHANNEL_OPEN PDU.
func (m OpenMessage) Marshal() []byte {
	label := []byte(m.Label)
	protocol := []byte(m.Protocol)

	buf := make([]byte, 12+len(label)+len(protocol))
	buf[0] = messageTypeOpen
	buf[1] = m.channelType()
	binary.BigEndian.PutUint16(buf[2:4], m.Priority)
	binary.BigEndian.PutUint32(buf[4:8], m.ReliabilityParameter)
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(label)))
	binary.BigEndian.PutUint16(buf[10:12], uint16(len(protocol)))
	copy(buf[12:], label)
	copy(buf[12+len(label):], protocol)
	return buf
}

func (m OpenMessage) channelType() byte {
	var t byte
	switch m.Reliability {
	case ReliabilityRexmit:
		t = channelTypeRexmit
	case ReliabilityTimed:
		t = channelTypeTimed
	default:
		t = channelTypeReliable
	}
	if m.Unordered {
		t |= channelTypeUnorderedBit
	}
	return t
}

// UnmarshalOpen decodes a DATA_CHANNEL_OPEN PDU.
func UnmarshalOpen(b []byte) (OpenMessage, error) {
	if len(b) < 12 || b[0] != messageTypeOpen {
		return OpenMessage{}, ErrShortBuffer
	}

	channelType := b[1]
	labelLen := binary.BigEndian.Uint16(b[8:10])
	protocolLen := binary.BigEndian.Uint16(b[10:12])
	if len(b) < 12+int(labelLen)+int(protocolLen) {
		return OpenMessage{}, ErrShortBuffer
	}

	m := OpenMessage{
		Unordered:            channelType&channelTypeUnorderedBit != 0,
		Priority:             binary.BigEndian.Uint16(b[2:4]),
		ReliabilityParameter: binary.BigEndian.Uint32(b[4:8]),
		Label:                string(b[12 : 12+labelLen]),
		Protocol:             string(b[12+labelLen : 12+labelLen+protocolLen]),
	}
	switch channelType &^ channelTypeUnorderedBit {
	case channelTypeRexmit:
		m.Reliability = ReliabilityRexmit
	case channelTypeTimed:
		m.Reliability = ReliabilityTimed
	default:
		m.Reliability = ReliabilityReliable
	}
	return m, nil
}

// Marshal encodes m into a DATA_CHANNEL_ACK PDU: the bare message type
// octet, no payload.
func (m AckMessage) Marshal() []byte {
	return []byte{messageTypeAck}
}

// UnmarshalAck decodes a DATA_CHANNEL_ACK PDU, tolerating up to 3 trailing
// padding bytes (an SCTP DATA chunk is padded to a 4-byte boundary).
func UnmarshalAck(b []byte) (AckMessage, error) {
	if len(b) == 0 || b[0] != messageTypeAck {
		return AckMessage{}, ErrShortBuffer
	}
	if len(b) > 4 {
		return AckMessage{}, ErrShortBuffer
	}
	for _, pad := range b[1:] {
		if pad != 0 {
			return AckMessage{}, ErrShortBuffer
		}
	}
	return AckMessage{}, nil
}
