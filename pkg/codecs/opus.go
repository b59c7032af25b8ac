package codecs

// OpusPayloader carries one Opus frame per RTP packet with no aggregation
// or fragmentation and no marker-bit rule, per spec §4.8.
type OpusPayloader struct{}

// Payload returns frame unchanged as the single output payload.
func (p *OpusPayloader) Payload(mtu uint16, frame []byte) [][]byte {
	if len(frame) == 0 {
		return nil
	}
	return [][]byte{frame}
}

// OpusDepayloader is the identity depayloader: an Opus RTP payload is an
// Opus frame verbatim, per spec §4.8.
type OpusDepayloader struct{}

// Unmarshal returns payload unchanged.
func (d *OpusDepayloader) Unmarshal(payload []byte) ([]byte, error) {
	return payload, nil
}
