// Package mux implements the inbound packet demultiplexer of spec §4.2:
// routing RTP packets to a MID using the MID header extension, a
// payload-type table, and an SSRC cache that is never rebound by a
// sequence-number regression.
package mux

import (
	"sync"

	"github.com/pion/rtp"
)

// ErrUnmatched is returned by Match when a packet cannot be routed to any
// MID by either the SSRC cache or the payload-type table.
var ErrUnmatched = staticErr("mux: packet did not match any MID")

type staticErr string

func (e staticErr) Error() string { return string(e) }

type ssrcEntry struct {
	mid     string
	lastSeq uint16
	haveSeq bool
}

// Demuxer holds the MID-extension-id table, the payload-type-to-MID
// table, and the SSRC cache described in spec §4.2.
type Demuxer struct {
	mu sync.RWMutex

	midExtensionID int // 0 means "not negotiated"

	ptToMID map[uint8]string // unambiguous only: absent once a PT maps to >1 MID
	ptMulti map[uint8]bool   // PTs seen bound to more than one MID

	ssrcCache map[uint32]*ssrcEntry
}

// New constructs a Demuxer. midExtensionID is the negotiated RTP header
// extension ID for the MID extension (sdes:mid), or 0 if not negotiated.
func New(midExtensionID int) *Demuxer {
	return &Demuxer{
		midExtensionID: midExtensionID,
		ptToMID:        make(map[uint8]string),
		ptMulti:        make(map[uint8]bool),
		ssrcCache:      make(map[uint32]*ssrcEntry),
	}
}

// BindPayloadType registers that payloadType is used by mid. A payload
// type used by more than one MID becomes ambiguous and is never used to
// resolve an unmatched SSRC.
func (d *Demuxer) BindPayloadType(payloadType uint8, mid string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.ptToMID[payloadType]; ok && existing != mid {
		delete(d.ptToMID, payloadType)
		d.ptMulti[payloadType] = true
		return
	}
	if d.ptMulti[payloadType] {
		return
	}
	d.ptToMID[payloadType] = mid
}

// midExtensionValue parses a one-byte RTP extension payload carrying the
// sdes:mid string, per RFC 8843's one-byte/two-byte header extension
// encodings (this demuxer only needs the value bytes, already split out
// by the caller's header parse).
func midExtensionValue(ext []byte) string {
	return string(ext)
}

// Match resolves pkt to a MID, per spec §4.2: if the MID extension is
// present and its carried sequence number (the packet's own RTP sequence
// number) is >= the cached one for this SSRC, the cache is overwritten.
// Otherwise the SSRC cache is consulted; on a cache miss, an unambiguous
// payload-type mapping resolves it. A packet that matches nothing returns
// ErrUnmatched.
func (d *Demuxer) Match(header *rtp.Header, midExt []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.midExtensionID != 0 && len(midExt) > 0 {
		mid := midExtensionValue(midExt)
		entry, ok := d.ssrcCache[header.SSRC]
		if !ok || seqGE(header.SequenceNumber, entry.lastSeq, entry.haveSeq) {
			d.ssrcCache[header.SSRC] = &ssrcEntry{mid: mid, lastSeq: header.SequenceNumber, haveSeq: true}
			return mid, nil
		}
		return entry.mid, nil
	}

	if entry, ok := d.ssrcCache[header.SSRC]; ok {
		return entry.mid, nil
	}

	if mid, ok := d.ptToMID[header.PayloadType]; ok {
		d.ssrcCache[header.SSRC] = &ssrcEntry{mid: mid, lastSeq: header.SequenceNumber, haveSeq: true}
		return mid, nil
	}

	return "", ErrUnmatched
}

// seqGE reports whether new is greater than or equal to old under 16-bit
// wrap-aware comparison; with no prior value, any new seq qualifies.
func seqGE(new, old uint16, haveOld bool) bool {
	if !haveOld {
		return true
	}
	return int16(new-old) >= 0
}
