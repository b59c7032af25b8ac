// Package oggwriter implements the Ogg container writer paired with
// oggreader, per spec §4.9: it produces pages whose header-type bitfield
// carries fresh/first/last flags and a CRC-32/MPEG-2 checksum.
package oggwriter

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/rtcweb/webrtc/internal/crc32mpeg2"
)

const (
	headerTypeContinued = 0x01
	headerTypeBOS       = 0x02
	headerTypeEOS       = 0x04

	maxSegmentsPerPage = 255
	segmentSize        = 255
)

var errEmptyPacket = errors.New("oggwriter: refusing to write an empty packet")

// Writer writes packets into an Ogg bitstream, one page per packet, per
// spec §4.9. Packets are not split across pages.
type Writer struct {
	w        io.Writer
	serial   uint32
	sequence uint32
	closed   bool
}

// New constructs a Writer for the given stream serial number. The first
// page written carries the beginning-of-stream flag.
func New(w io.Writer, serial uint32) *Writer {
	return &Writer{w: w, serial: serial}
}

// WritePacket writes packet as a single page with the given granule
// position, setting the beginning-of-stream flag on the very first page.
func (ow *Writer) WritePacket(packet []byte, granulePosition int64) error {
	if ow.closed {
		return errors.New("oggwriter: write after close")
	}
	if len(packet) == 0 {
		return errEmptyPacket
	}

	var headerType byte
	if ow.sequence == 0 {
		headerType |= headerTypeBOS
	}
	return ow.writePage(packet, granulePosition, headerType)
}

// Close writes a final page with the end-of-stream flag set, carrying one
// zero-length packet (a single 0 lacing value), and marks the writer
// closed.
func (ow *Writer) Close() error {
	if ow.closed {
		return nil
	}
	ow.closed = true
	return ow.writePage(nil, 0, headerTypeEOS)
}

func (ow *Writer) writePage(packet []byte, granulePosition int64, headerType byte) error {
	lacing := lacingTable(len(packet))

	page := make([]byte, 0, 27+len(lacing)+len(packet))
	page = append(page, 'O', 'g', 'g', 'S')
	page = append(page, 0) // version
	page = append(page, headerType)

	var granule [8]byte
	binary.LittleEndian.PutUint64(granule[:], uint64(granulePosition))
	page = append(page, granule[:]...)

	var serial, sequence, crc [4]byte
	binary.LittleEndian.PutUint32(serial[:], ow.serial)
	binary.LittleEndian.PutUint32(sequence[:], ow.sequence)
	page = append(page, serial[:]...)
	page = append(page, sequence[:]...)
	page = append(page, crc[:]...) // zero placeholder for checksum

	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, packet...)

	checksum := crc32mpeg2.Checksum(page)
	binary.LittleEndian.PutUint32(page[22:26], checksum)

	if _, err := ow.w.Write(page); err != nil {
		return err
	}
	ow.sequence++
	return nil
}

// lacingTable builds the Ogg lacing value sequence for a packet of the
// given length: full 255-value segments, followed by one terminating
// segment of the remainder (0 if the length is an exact multiple of 255).
func lacingTable(length int) []byte {
	var lacing []byte
	for length >= segmentSize {
		lacing = append(lacing, segmentSize)
		length -= segmentSize
	}
	lacing = append(lacing, byte(length))
	return lacing
}
