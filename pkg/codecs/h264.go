package codecs

const (
	naluTypeSTAPA = 24
	naluTypeFUA   = 28

	fuaHeaderSize   = 2
	stapaHeaderSize = 1
	naluTypeMask    = 0x1F
)

// H264Payloader fragments AVC (4-byte length-prefixed) H264 NALUs into RTP payloads per spec
// §4.8: a NALU that fits in one packet is sent as a single NALU payload;
// multiple small NALUs are aggregated with STAP-A; large NALUs are split
// with FU-A.
type H264Payloader struct{}

// Payload splits frame (one or more NALUs, each length-prefixed as 4-byte
// big-endian AVC records) into RTP payloads.
func (p *H264Payloader) Payload(mtu uint16, frame []byte) [][]byte {
	nalus := splitAVC(frame)
	if len(nalus) == 0 {
		return nil
	}

	var payloads [][]byte
	i := 0
	for i < len(nalus) {
		nalu := nalus[i]
		if len(nalu) == 0 {
			i++
			continue
		}

		if len(nalu) <= int(mtu) {
			// Try to aggregate with following small NALUs via STAP-A.
			agg, consumed := aggregateSTAPA(nalus[i:], mtu)
			if consumed > 1 {
				payloads = append(payloads, agg)
				i += consumed
				continue
			}
			payloads = append(payloads, append([]byte(nil), nalu...))
			i++
			continue
		}

		payloads = append(payloads, fragmentFUA(nalu, mtu)...)
		i++
	}
	return payloads
}

func splitAVC(frame []byte) [][]byte {
	var nalus [][]byte
	for len(frame) >= 4 {
		length := uint32(frame[0])<<24 | uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])
		frame = frame[4:]
		if uint32(len(frame)) < length {
			break
		}
		nalus = append(nalus, frame[:length])
		frame = frame[length:]
	}
	return nalus
}

func aggregateSTAPA(nalus [][]byte, mtu uint16) ([]byte, int) {
	buf := make([]byte, 1, mtu)
	buf[0] = naluTypeSTAPA
	consumed := 0
	for _, nalu := range nalus {
		if len(nalu) == 0 || len(nalu) > int(mtu) {
			break
		}
		need := 2 + len(nalu)
		if len(buf)+need > int(mtu) {
			break
		}
		buf = append(buf, byte(len(nalu)>>8), byte(len(nalu)))
		buf = append(buf, nalu...)
		consumed++
	}
	if consumed < 2 {
		return nil, consumed
	}
	return buf, consumed
}

func fragmentFUA(nalu []byte, mtu uint16) [][]byte {
	naluHeader := nalu[0]
	naluType := naluHeader & naluTypeMask
	payload := nalu[1:]

	maxFragment := int(mtu) - fuaHeaderSize
	if maxFragment <= 0 {
		return nil
	}

	var out [][]byte
	for i := 0; i < len(payload); i += maxFragment {
		end := i + maxFragment
		if end > len(payload) {
			end = len(payload)
		}

		fuIndicator := (naluHeader & 0xE0) | naluTypeFUA
		fuHeader := naluType
		if i == 0 {
			fuHeader |= 0x80 // start
		}
		if end == len(payload) {
			fuHeader |= 0x40 // end
		}

		chunk := make([]byte, 0, 2+end-i)
		chunk = append(chunk, fuIndicator, fuHeader)
		chunk = append(chunk, payload[i:end]...)
		out = append(out, chunk)
	}
	return out
}

// H264Depayloader reassembles H264 NALUs from RTP payloads, per spec
// §4.8. A single depayloader instance must be used per SSRC: FU-A
// fragments accumulate across calls until the end bit is seen.
type H264Depayloader struct {
	fuBuf     []byte
	fuStarted bool
}

// Unmarshal extracts a complete NALU (length-prefixed, AVC format) from a
// single-NALU or STAP-A payload, or accumulates an FU-A fragment,
// returning nil until the terminal fragment arrives.
func (d *H264Depayloader) Unmarshal(payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return nil, errShortPacket
	}

	naluType := payload[0] & naluTypeMask
	switch naluType {
	case naluTypeFUA:
		return d.unmarshalFUA(payload)
	case naluTypeSTAPA:
		return unmarshalSTAPA(payload)
	default:
		return lengthPrefixed(payload), nil
	}
}

func (d *H264Depayloader) unmarshalFUA(payload []byte) ([]byte, error) {
	if len(payload) < fuaHeaderSize {
		return nil, errShortPacket
	}
	fuIndicator := payload[0]
	fuHeader := payload[1]
	start := fuHeader&0x80 != 0
	end := fuHeader&0x40 != 0
	if start && end {
		return nil, errFUBothBits
	}

	if start {
		d.fuBuf = d.fuBuf[:0]
		d.fuStarted = true
		naluHeader := (fuIndicator & 0xE0) | (fuHeader & naluTypeMask)
		d.fuBuf = append(d.fuBuf, naluHeader)
	}
	if !d.fuStarted {
		return nil, nil
	}
	d.fuBuf = append(d.fuBuf, payload[fuaHeaderSize:]...)

	if !end {
		return nil, nil
	}
	d.fuStarted = false
	return lengthPrefixed(d.fuBuf), nil
}

func unmarshalSTAPA(payload []byte) ([]byte, error) {
	rest := payload[stapaHeaderSize:]
	var out []byte
	for len(rest) > 2 {
		size := int(rest[0])<<8 | int(rest[1])
		rest = rest[2:]
		if len(rest) < size {
			return nil, errSTAPASize
		}
		out = appendLengthPrefixed(out, rest[:size])
		rest = rest[size:]
	}
	return out, nil
}

func lengthPrefixed(nalu []byte) []byte {
	return appendLengthPrefixed(nil, nalu)
}

func appendLengthPrefixed(dst, nalu []byte) []byte {
	length := uint32(len(nalu))
	dst = append(dst, byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
	return append(dst, nalu...)
}
