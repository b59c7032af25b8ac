package sdp

// TransceiverInfo is the subset of a transceiver the offer/answer builder
// needs, kept independent of the root package's RTPTransceiver type to
// avoid an import cycle.
type TransceiverInfo struct {
	Kind             string // "audio" or "video"
	MID              string
	Stopped          bool
	Direction        Direction
	Codecs           []Codec
	HeaderExtensions []HeaderExtension
	SSRCs            []uint32
	// SSRCGroupFID is the primary/RTX SSRC pair for this transceiver's
	// sender, or nil when RTX was not negotiated. See MediaSection.SSRCGroupFID.
	SSRCGroupFID []uint32
}

// SessionParams carries the session-wide ICE/DTLS parameters shared
// across every m-line under BUNDLE, per spec §4.1.
type SessionParams struct {
	ICEUfrag    string
	ICEPwd      string
	Fingerprint string
	Setup       string
}

// BuildOffer renders one m-line per non-stopped transceiver, in
// transceiver order, per spec §4.1's offer-creation rules.
func BuildOffer(transceivers []TransceiverInfo, params SessionParams) []MediaSection {
	var sections []MediaSection
	for _, t := range transceivers {
		if t.Stopped {
			continue
		}
		sections = append(sections, MediaSection{
			Kind:             t.Kind,
			MID:              t.MID,
			Codecs:           t.Codecs,
			HeaderExtensions: t.HeaderExtensions,
			Direction:        t.Direction,
			SSRCs:            t.SSRCs,
			SSRCGroupFID:     t.SSRCGroupFID,
			ICEUfrag:         params.ICEUfrag,
			ICEPwd:           params.ICEPwd,
			Fingerprint:      params.Fingerprint,
			Setup:            params.Setup,
		})
	}
	return sections
}

// BuildAnswer matches each remote m-line to a local transceiver (by MID
// when known, else by kind against the earliest unused one), computes
// the codec intersection, and negotiates direction, per spec §4.1's
// answer-creation rules. A remote m-line with no codec intersection is
// rejected (its MID is returned with Codecs == nil so the caller can
// signal port 0).
func BuildAnswer(offer *Description, transceivers []TransceiverInfo, params SessionParams) []MediaSection {
	used := make(map[string]bool)
	var sections []MediaSection

	for _, remote := range offer.MediaSections {
		local := findTransceiver(transceivers, remote, used)
		if local == nil {
			sections = append(sections, MediaSection{Kind: remote.Kind, MID: remote.MID})
			continue
		}
		used[local.MID] = true

		negotiated := Intersect(local.Codecs, remote.Codecs)
		section := MediaSection{
			Kind:             remote.Kind,
			MID:              remote.MID,
			Codecs:           negotiated,
			HeaderExtensions: local.HeaderExtensions,
			Direction:        negotiateDirection(local.Direction, remote.Direction),
			SSRCs:            local.SSRCs,
			SSRCGroupFID:     local.SSRCGroupFID,
			ICEUfrag:         params.ICEUfrag,
			ICEPwd:           params.ICEPwd,
			Fingerprint:      params.Fingerprint,
			Setup:            params.Setup,
		}
		sections = append(sections, section)
	}
	return sections
}

func findTransceiver(transceivers []TransceiverInfo, remote MediaSection, used map[string]bool) *TransceiverInfo {
	for i := range transceivers {
		if transceivers[i].MID == remote.MID && remote.MID != "" {
			return &transceivers[i]
		}
	}
	for i := range transceivers {
		t := &transceivers[i]
		if !t.Stopped && t.Kind == remote.Kind && !used[t.MID] {
			return t
		}
	}
	return nil
}

// negotiateDirection computes the negotiated direction per the W3C
// intersection table referenced by spec §4.1.
func negotiateDirection(local, remote Direction) Direction {
	localSend := local == DirectionSendrecv || local == DirectionSendonly
	remoteRecv := remote == DirectionSendrecv || remote == DirectionRecvonly
	localRecv := local == DirectionSendrecv || local == DirectionRecvonly
	remoteSend := remote == DirectionSendrecv || remote == DirectionSendonly

	send := localSend && remoteRecv
	recv := localRecv && remoteSend

	switch {
	case send && recv:
		return DirectionSendrecv
	case send:
		return DirectionSendonly
	case recv:
		return DirectionRecvonly
	default:
		return DirectionInactive
	}
}
