package nack

import (
	"encoding/binary"
	"sync"

	"github.com/pion/rtp"
)

// RingSize is the number of most-recent outbound packets retained for
// retransmission, per spec §4.5 ("N = 200").
const RingSize = 200

// Responder is the sender-side NACK responder / RTX cache of spec §4.5: a
// ring of the last N outbound packets keyed by seq mod N.
type Responder struct {
	mu sync.Mutex

	ring      []*rtp.Packet
	rtxSSRC   uint32
	rtxPT     uint8
	rtxSeq    uint16
	haveRTXSeq bool
}

// NewResponder constructs a Responder for the given RTX SSRC and RTX
// payload type (the RTX payload type whose apt= names this primary stream),
// sized to the default RingSize.
func NewResponder(rtxSSRC uint32, rtxPT uint8) *Responder {
	return NewResponderWithRingSize(rtxSSRC, rtxPT, RingSize)
}

// NewResponderWithRingSize is NewResponder with an overridden ring
// capacity, for callers that size it from an engine-level setting rather
// than RingSize. A ringSize of 0 falls back to RingSize.
func NewResponderWithRingSize(rtxSSRC uint32, rtxPT uint8, ringSize int) *Responder {
	if ringSize <= 0 {
		ringSize = RingSize
	}
	return &Responder{rtxSSRC: rtxSSRC, rtxPT: rtxPT, ring: make([]*rtp.Packet, ringSize)}
}

// Record stores a just-sent primary packet in the ring, overwriting
// whatever previously occupied that slot.
func (r *Responder) Record(pkt *rtp.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[int(pkt.SequenceNumber)%len(r.ring)] = clonePacket(pkt)
}

// Respond looks up each requested sequence number; for every one still held
// in the ring under its exact SSN, it builds an RTX packet per spec §4.5:
// RTX SSRC, a monotonically increasing RTX sequence number, and payload
// `ssn (u16 BE) || original-payload`. Packets no longer in the ring (evicted
// or never sent) are silently skipped.
func (r *Responder) Respond(seqs []uint16) []*rtp.Packet {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*rtp.Packet, 0, len(seqs))
	for _, seq := range seqs {
		cached := r.ring[int(seq)%len(r.ring)]
		if cached == nil || cached.SequenceNumber != seq {
			continue
		}

		payload := make([]byte, 2+len(cached.Payload))
		binary.BigEndian.PutUint16(payload[0:2], seq)
		copy(payload[2:], cached.Payload)

		if !r.haveRTXSeq {
			r.rtxSeq = 0
			r.haveRTXSeq = true
		} else {
			r.rtxSeq++
		}

		rtxPkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         cached.Marker,
				PayloadType:    r.rtxPT,
				SequenceNumber: r.rtxSeq,
				Timestamp:      cached.Timestamp,
				SSRC:           r.rtxSSRC,
			},
			Payload: payload,
		}
		out = append(out, rtxPkt)
	}
	return out
}

func clonePacket(pkt *rtp.Packet) *rtp.Packet {
	cp := *pkt
	cp.Payload = append([]byte(nil), pkt.Payload...)
	return &cp
}
