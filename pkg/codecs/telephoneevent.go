package codecs

// TelephoneEventDigits maps RFC 4733 event codes 0-15 to the DTMF digit
// they represent.
var TelephoneEventDigits = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	'*', '#', 'A', 'B', 'C', 'D',
}

// TelephoneEvent is one decoded RFC 4733 DTMF event.
type TelephoneEvent struct {
	Digit    byte
	EndOfEvent bool
	Volume   uint8
	Duration uint16
}

// TelephoneEventDepayloader decodes RFC 4733 telephone-event packets, per
// spec §4.8. Unlike the other depayloaders it needs the RTP marker bit and
// timestamp, which carry the "new event" signal, so it does not implement
// the generic Depayloader interface.
type TelephoneEventDepayloader struct {
	haveLast     bool
	lastTimestamp uint32
}

// Unmarshal parses a telephone-event payload ({event u8, E 1b, R 1b,
// volume 6b, duration u16}) and reports a TelephoneEvent only when marker
// is set and timestamp strictly exceeds the last emitted event's
// timestamp; otherwise it returns (nil, nil).
func (d *TelephoneEventDepayloader) Unmarshal(payload []byte, marker bool, timestamp uint32) (*TelephoneEvent, error) {
	if len(payload) < 4 {
		return nil, errShortPacket
	}

	if !marker {
		return nil, nil
	}
	if d.haveLast && int32(timestamp-d.lastTimestamp) <= 0 {
		return nil, nil
	}

	event := payload[0]
	endOfEvent := payload[1]&0x80 != 0
	volume := payload[1] & 0x3F
	duration := uint16(payload[2])<<8 | uint16(payload[3])

	d.haveLast = true
	d.lastTimestamp = timestamp

	digit := byte('?')
	if int(event) < len(TelephoneEventDigits) {
		digit = TelephoneEventDigits[event]
	}

	return &TelephoneEvent{
		Digit:      digit,
		EndOfEvent: endOfEvent,
		Volume:     volume,
		Duration:   duration,
	}, nil
}
