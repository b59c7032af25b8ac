package codecs

// VP8Payloader fragments VP8 frames into RTP payloads, per spec §4.8: each
// chunk is prefixed with a minimal VP8 payload descriptor, S=1 on the
// first fragment's descriptor, and the RTP marker bit set true on the
// packet carrying the last fragment. The payloader does not set the
// marker itself: the last payload Payload returns is the last fragment,
// and the sender marks the packet that carries it.
type VP8Payloader struct{}

// vp8HeaderSize is the size of the minimal VP8 payload descriptor this
// payloader emits: X=0 R=0 N=0 S=<startOfPartition> PID=0.
const vp8HeaderSize = 1

// Payload fragments frame into chunks of at most mtu bytes, each carrying
// a one-byte VP8 descriptor with the start-of-partition bit set only on
// the first fragment.
func (p *VP8Payloader) Payload(mtu uint16, frame []byte) [][]byte {
	if mtu <= vp8HeaderSize || len(frame) == 0 {
		return nil
	}

	maxFragmentSize := int(mtu) - vp8HeaderSize
	var payloads [][]byte
	for i := 0; i < len(frame); i += maxFragmentSize {
		end := i + maxFragmentSize
		if end > len(frame) {
			end = len(frame)
		}

		descriptor := byte(0x00)
		if i == 0 {
			descriptor |= 0x10 // S bit: start of VP8 partition
		}

		chunk := make([]byte, 0, 1+end-i)
		chunk = append(chunk, descriptor)
		chunk = append(chunk, frame[i:end]...)
		payloads = append(payloads, chunk)
	}
	return payloads
}

// VP8Depayloader extracts frame bytes from VP8 RTP payloads, stripping the
// variable-length VP8 payload descriptor per the format's X/I/L/T/K
// extension bits.
type VP8Depayloader struct{}

// Unmarshal strips the VP8 payload descriptor and returns the remaining
// frame fragment.
func (d *VP8Depayloader) Unmarshal(payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return nil, errShortPacket
	}

	offset := 1
	if payload[0]&0x80 != 0 { // X bit: extended control bits present
		if len(payload) < 2 {
			return nil, errShortPacket
		}
		x := payload[1]
		offset = 2
		if x&0x80 != 0 { // I: picture ID present
			if len(payload) < offset+1 {
				return nil, errShortPacket
			}
			if payload[offset]&0x80 != 0 { // 15-bit picture ID
				offset += 2
			} else {
				offset++
			}
		}
		if x&0x40 != 0 { // L: temporal level zero index present
			offset++
		}
		if x&0x30 != 0 { // T or K present
			offset++
		}
	}

	if len(payload) < offset {
		return nil, errShortPacket
	}
	return payload[offset:], nil
}
