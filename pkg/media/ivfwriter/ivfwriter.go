// Package ivfwriter implements the IVF container writer of spec §4.9.
package ivfwriter

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	headerSize       = 32
	frameHeaderSize  = 12
	headerOffsetNumFrames = 24

	// DefaultUpdateHeaderAfter matches the spec's "every update_header_after
	// frames" re-seek cadence.
	DefaultUpdateHeaderAfter = 10
)

var errZeroLengthFrame = errors.New("ivfwriter: refusing to write a zero-length frame")

// Writer writes frames into an IVF container, per spec §4.9: it opens a
// file-like WriteSeeker, writes a 32-byte header with a provisional
// num_frames, and periodically re-seeks to rewrite the cumulative count.
type Writer struct {
	w                 io.WriteSeeker
	updateHeaderAfter int
	frameCount        uint32
	sinceLastUpdate   int
	closed            bool
}

// New writes the initial IVF header (fourcc, width, height, timebase) to w
// and returns a Writer ready to accept frames.
func New(w io.WriteSeeker, fourcc string, width, height uint16, timebaseNum, timebaseDenom uint32, updateHeaderAfter int) (*Writer, error) {
	if updateHeaderAfter <= 0 {
		updateHeaderAfter = DefaultUpdateHeaderAfter
	}

	header := make([]byte, headerSize)
	copy(header[0:4], "DKIF")
	binary.LittleEndian.PutUint16(header[4:6], 0) // version
	binary.LittleEndian.PutUint16(header[6:8], headerSize)
	copy(header[8:12], fourccBytes(fourcc))
	binary.LittleEndian.PutUint16(header[12:14], width)
	binary.LittleEndian.PutUint16(header[14:16], height)
	binary.LittleEndian.PutUint32(header[16:20], timebaseDenom)
	binary.LittleEndian.PutUint32(header[20:24], timebaseNum)
	binary.LittleEndian.PutUint32(header[24:28], 0) // num_frames, provisional
	binary.LittleEndian.PutUint32(header[28:32], 0) // unused

	if _, err := w.Write(header); err != nil {
		return nil, err
	}

	return &Writer{w: w, updateHeaderAfter: updateHeaderAfter}, nil
}

func fourccBytes(fourcc string) []byte {
	b := make([]byte, 4)
	copy(b, fourcc)
	return b
}

// WriteFrame appends one frame: a 12-byte {length u32 LE, pts u64 LE}
// header followed by data. Zero-length frames are rejected. Every
// updateHeaderAfter frames, the header's num_frames field is rewritten in
// place and the write position restored to end-of-file.
func (iw *Writer) WriteFrame(data []byte, pts uint64) error {
	if iw.closed {
		return errors.New("ivfwriter: write after close")
	}
	if len(data) == 0 {
		return errZeroLengthFrame
	}

	frameHeader := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint32(frameHeader[0:4], uint32(len(data)))
	binary.LittleEndian.PutUint64(frameHeader[4:12], pts)
	if _, err := iw.w.Write(frameHeader); err != nil {
		return err
	}
	if _, err := iw.w.Write(data); err != nil {
		return err
	}

	iw.frameCount++
	iw.sinceLastUpdate++
	if iw.sinceLastUpdate >= iw.updateHeaderAfter {
		if err := iw.rewriteFrameCount(); err != nil {
			return err
		}
		iw.sinceLastUpdate = 0
	}
	return nil
}

func (iw *Writer) rewriteFrameCount() error {
	end, err := iw.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := iw.w.Seek(headerOffsetNumFrames, io.SeekStart); err != nil {
		return err
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, iw.frameCount)
	if _, err := iw.w.Write(buf); err != nil {
		return err
	}
	_, err = iw.w.Seek(end, io.SeekStart)
	return err
}

// Close performs a final header update and marks the writer closed.
func (iw *Writer) Close() error {
	if iw.closed {
		return nil
	}
	iw.closed = true
	return iw.rewriteFrameCount()
}
