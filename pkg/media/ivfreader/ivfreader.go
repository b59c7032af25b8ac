// Package ivfreader implements the IVF container reader paired with
// ivfwriter, per spec §4.9.
package ivfreader

import (
	"encoding/binary"
	"errors"
	"io"
)

const headerSize = 32

var (
	errNotIVF       = errors.New("ivfreader: missing DKIF signature")
	errShortHeader  = errors.New("ivfreader: header shorter than 32 bytes")
)

// FileHeader is the 32-byte IVF file header.
type FileHeader struct {
	Version       uint16
	FourCC        string
	Width, Height uint16
	TimebaseNum   uint32
	TimebaseDenom uint32
	NumFrames     uint32
}

// Reader reads frames from an IVF container.
type Reader struct {
	r      io.Reader
	Header FileHeader
}

// New reads and validates the 32-byte IVF header from r.
func New(r io.Reader) (*Reader, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errShortHeader
		}
		return nil, err
	}
	if string(header[0:4]) != "DKIF" {
		return nil, errNotIVF
	}

	return &Reader{
		r: r,
		Header: FileHeader{
			Version:       binary.LittleEndian.Uint16(header[4:6]),
			FourCC:        string(header[8:12]),
			Width:         binary.LittleEndian.Uint16(header[12:14]),
			Height:        binary.LittleEndian.Uint16(header[14:16]),
			TimebaseDenom: binary.LittleEndian.Uint32(header[16:20]),
			TimebaseNum:   binary.LittleEndian.Uint32(header[20:24]),
			NumFrames:     binary.LittleEndian.Uint32(header[24:28]),
		},
	}, nil
}

// ReadFrame returns the next frame's data and presentation timestamp, or
// io.EOF when the stream is exhausted.
func (r *Reader) ReadFrame() ([]byte, uint64, error) {
	frameHeader := make([]byte, 12)
	if _, err := io.ReadFull(r.r, frameHeader); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}

	length := binary.LittleEndian.Uint32(frameHeader[0:4])
	pts := binary.LittleEndian.Uint64(frameHeader[4:12])

	data := make([]byte, length)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, 0, err
	}
	return data, pts, nil
}
