// Package oggreader implements the Ogg container reader of spec §4.9:
// page parsing, CRC-32/MPEG-2 verification, and Opus packet/duration
// extraction.
package oggreader

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/rtcweb/webrtc/internal/crc32mpeg2"
)

const (
	pageHeaderMinSize = 27
	signature         = "OggS"

	headerTypeContinued = 0x01
	headerTypeBOS       = 0x02
	headerTypeEOS       = 0x04
)

var (
	errBadSignature = errors.New("oggreader: bad OggS signature")
	errBadCRC       = errors.New("oggreader: page CRC mismatch")
)

// PageHeader holds one parsed Ogg page header's fixed fields.
type PageHeader struct {
	HeaderType      byte
	GranulePosition int64
	Serial          uint32
	Sequence        uint32
}

// Reader reads packets out of an Ogg bitstream, reassembling packets that
// span page boundaries, per spec §4.9.
type Reader struct {
	r       io.Reader
	rest    []byte   // a continuing packet tail held across a page boundary
	pending [][]byte // packets terminated on the last page, not yet returned
}

// New constructs a Reader over r.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

// opusFrameSizeTenthsMs is indexed by the Opus TOC config field (top 5
// bits, i.e. toc>>3) and gives the frame duration in tenths of a
// millisecond, per RFC 6716 §3.1's config table.
var opusFrameSizeTenthsMs = [32]int{
	100, 200, 400, 600, // SILK-only NB
	100, 200, 400, 600, // SILK-only MB
	100, 200, 400, 600, // SILK-only WB
	100, 200, // Hybrid SWB
	100, 200, // Hybrid FB
	25, 50, 100, 200, // CELT-only NB
	25, 50, 100, 200, // CELT-only WB
	25, 50, 100, 200, // CELT-only SWB
	25, 50, 100, 200, // CELT-only FB
}

// opusPacketDurationMs derives a packet's duration from its first byte
// (the TOC byte) per the Opus frame-size table referenced by spec §4.9.
func opusPacketDurationMs(packet []byte) int {
	if len(packet) == 0 {
		return 0
	}
	config := packet[0] >> 3
	return opusFrameSizeTenthsMs[config] / 10
}

// ReadPacket returns the next complete packet and its derived duration in
// milliseconds, or io.EOF when the stream is exhausted.
func (r *Reader) ReadPacket() ([]byte, int, error) {
	for {
		if len(r.pending) > 0 {
			pkt := r.pending[0]
			r.pending = r.pending[1:]
			return pkt, opusPacketDurationMs(pkt), nil
		}

		_, lacing, data, err := r.readPage()
		if err != nil {
			return nil, 0, err
		}

		packets, leftover := splitLacing(r.rest, lacing, data)
		r.rest = leftover

		if len(packets) > 0 {
			pkt := packets[0]
			r.pending = packets[1:]
			return pkt, opusPacketDurationMs(pkt), nil
		}
		// Page produced no terminated packet (e.g. entirely a continuation);
		// loop to the next page.
	}
}

// readPage reads one Ogg page's fixed header, lacing table, and data,
// verifying the CRC-32/MPEG-2 checksum over the full page with the
// checksum field zeroed, per spec §4.9.
func (r *Reader) readPage() (PageHeader, []byte, []byte, error) {
	fixed := make([]byte, pageHeaderMinSize)
	if _, err := io.ReadFull(r.r, fixed); err != nil {
		return PageHeader{}, nil, nil, err
	}
	if string(fixed[0:4]) != signature {
		return PageHeader{}, nil, nil, errBadSignature
	}

	pageSegments := int(fixed[26])
	lacing := make([]byte, pageSegments)
	if _, err := io.ReadFull(r.r, lacing); err != nil {
		return PageHeader{}, nil, nil, err
	}

	dataLen := 0
	for _, s := range lacing {
		dataLen += int(s)
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return PageHeader{}, nil, nil, err
	}

	wantCRC := binary.LittleEndian.Uint32(fixed[22:26])
	verifyBuf := make([]byte, 0, len(fixed)+len(lacing)+len(data))
	verifyBuf = append(verifyBuf, fixed...)
	verifyBuf[22], verifyBuf[23], verifyBuf[24], verifyBuf[25] = 0, 0, 0, 0
	verifyBuf = append(verifyBuf, lacing...)
	verifyBuf = append(verifyBuf, data...)
	if crc32mpeg2.Checksum(verifyBuf) != wantCRC {
		return PageHeader{}, nil, nil, errBadCRC
	}

	hdr := PageHeader{
		HeaderType:      fixed[5],
		GranulePosition: int64(binary.LittleEndian.Uint64(fixed[6:14])),
		Serial:          binary.LittleEndian.Uint32(fixed[14:18]),
		Sequence:        binary.LittleEndian.Uint32(fixed[18:22]),
	}
	return hdr, lacing, data, nil
}

// splitLacing concatenates segments into packets per the Ogg lacing rule:
// a 255-valued segment continues the current packet, any lesser value
// terminates it. A continuation still open at the end of the page is
// returned as leftover, to be prefixed onto the next page's first packet.
func splitLacing(carry []byte, lacing, data []byte) (packets [][]byte, leftover []byte) {
	cur := append([]byte(nil), carry...)
	offset := 0
	for _, seg := range lacing {
		cur = append(cur, data[offset:offset+int(seg)]...)
		offset += int(seg)
		if seg < 255 {
			packets = append(packets, cur)
			cur = nil
		}
	}
	return packets, cur
}
