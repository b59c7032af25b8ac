// Package nack implements the receiver-side NACK generator and the
// sender-side NACK responder / RTX cache of spec §4.4 and §4.5.
package nack

import (
	"sync"

	"github.com/pion/rtcp"
)

// MaxNACK is the default number of times a given lost sequence number is
// reported before it is given up on, per spec §4.4.
const MaxNACK = 3

// Generator tracks, for a single SSRC, which sequence numbers are believed
// lost and how many more times each may be reported via RTCP NACK.
type Generator struct {
	mu sync.Mutex

	maxNACK    uint8
	senderSSRC uint32
	mediaSSRC  uint32

	haveLastSeq bool
	lastSeq     uint16
	lost        map[uint16]uint8 // seq -> remaining report count
}

// NewGenerator constructs a Generator for one SSRC pair (the sender_ssrc
// used on emitted NACKs, and the media_ssrc being tracked).
func NewGenerator(senderSSRC, mediaSSRC uint32) *Generator {
	return NewGeneratorWithMaxNACK(senderSSRC, mediaSSRC, MaxNACK)
}

// NewGeneratorWithMaxNACK is NewGenerator with an overridden report count,
// for callers that size it from an engine-level setting rather than MaxNACK.
// A maxNACK of 0 falls back to MaxNACK.
func NewGeneratorWithMaxNACK(senderSSRC, mediaSSRC uint32, maxNACK uint8) *Generator {
	if maxNACK == 0 {
		maxNACK = MaxNACK
	}
	return &Generator{
		maxNACK:    maxNACK,
		senderSSRC: senderSSRC,
		mediaSSRC:  mediaSSRC,
		lost:       make(map[uint16]uint8),
	}
}

// seqDelta computes new-old as a signed 16-bit wrap-aware delta.
func seqDelta(old, new uint16) int32 {
	return int32(int16(new - old))
}

// OnPacket records the arrival of seq, per spec §4.4: if in-order, every
// sequence strictly between last_seq+1 and new_seq-1 is marked lost; if
// out-of-order (a retransmission arriving after being marked lost), it is
// cleared from the lost map.
func (g *Generator) OnPacket(seq uint16) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.haveLastSeq {
		g.haveLastSeq = true
		g.lastSeq = seq
		return
	}

	delta := seqDelta(g.lastSeq, seq)
	switch {
	case delta > 0:
		for s := g.lastSeq + 1; s != seq; s++ {
			g.lost[s] = g.maxNACK
		}
		g.lastSeq = seq
	case delta < 0:
		delete(g.lost, seq)
	default:
		// Duplicate of last_seq itself: nothing to do.
	}
}

// GetFeedback returns one TransportLayerNack listing every currently-lost
// sequence number, or nil if nothing is outstanding. Each returned entry's
// remaining count is decremented; entries reaching zero are dropped, per
// spec §4.4 ("feedbacks carrying that SSN <= max_nack").
func (g *Generator) GetFeedback() *rtcp.TransportLayerNack {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.lost) == 0 {
		return nil
	}

	seqs := make([]uint16, 0, len(g.lost))
	for s := range g.lost {
		seqs = append(seqs, s)
	}
	sortUint16(seqs)

	for _, s := range seqs {
		g.lost[s]--
		if g.lost[s] == 0 {
			delete(g.lost, s)
		}
	}

	return &rtcp.TransportLayerNack{
		SenderSSRC: g.senderSSRC,
		MediaSSRC:  g.mediaSSRC,
		Nacks:      rtcp.NackPairsFromSequenceNumbers(seqs),
	}
}

func sortUint16(s []uint16) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
