package webrtc

// MediaEngine defines the codecs and header extensions supported by a
// PeerConnection. Grounded on the real pion/webrtc MediaEngine
// (RegisterCodec/RegisterDefaultCodecs/RegisterHeaderExtension), trimmed of
// the stats-collection machinery not named by this spec.
//
// A MediaEngine may be populated once and reused, including concurrently,
// as long as no codecs are registered afterwards.
type MediaEngine struct {
	audioCodecs      []RTPCodecParameters
	videoCodecs      []RTPCodecParameters
	headerExtensions []headerExtension
}

// RegisterCodec adds a codec to the MediaEngine. Not safe for concurrent use.
func (m *MediaEngine) RegisterCodec(codec RTPCodecParameters, typ RTPCodecType) error {
	switch typ {
	case RTPCodecTypeAudio:
		m.audioCodecs = append(m.audioCodecs, codec)
	case RTPCodecTypeVideo:
		m.videoCodecs = append(m.videoCodecs, codec)
	default:
		return &unknownCodecTypeErr{typ}
	}
	return nil
}

// RegisterHeaderExtension registers a header extension as usable for the
// given kind. The ID is assigned when a URI is first registered: 1 for the
// first URI, 2 for the second, and so on; it is not renegotiated.
func (m *MediaEngine) RegisterHeaderExtension(extension RTPHeaderExtensionCapability, typ RTPCodecType) error {
	idx := -1
	for i := range m.headerExtensions {
		if m.headerExtensions[i].uri == extension.URI {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.headerExtensions = append(m.headerExtensions, headerExtension{uri: extension.URI, id: len(m.headerExtensions) + 1})
		idx = len(m.headerExtensions) - 1
	}
	switch typ {
	case RTPCodecTypeAudio:
		m.headerExtensions[idx].isAudio = true
	case RTPCodecTypeVideo:
		m.headerExtensions[idx].isVideo = true
	}
	return nil
}

// RegisterDefaultCodecs registers the common VP8/H264/Opus/telephone-event
// codecs and the header extensions this engine's codec pipelines (pkg/codecs)
// and simulcast demuxer depend on, mirroring pion/webrtc's
// RegisterDefaultCodecs table.
func (m *MediaEngine) RegisterDefaultCodecs() error {
	videoFB := []RTCPFeedback{{Type: "goog-remb"}, {Type: "transport-cc"}, {Type: "ccm", Parameter: "fir"}, {Type: "nack"}, {Type: "nack", Parameter: "pli"}}
	audioFB := []RTCPFeedback{{Type: "transport-cc"}}

	videoCodecs := []RTPCodecParameters{
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/VP8", ClockRate: 90000, RTCPFeedback: videoFB}, PayloadType: 96},
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/rtx", ClockRate: 90000, SDPFmtpLine: "apt=96"}, PayloadType: 97},
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/H264", ClockRate: 90000, SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f", RTCPFeedback: videoFB}, PayloadType: 102},
		{RTPCodecCapability: RTPCodecCapability{MimeType: "video/rtx", ClockRate: 90000, SDPFmtpLine: "apt=102"}, PayloadType: 121},
	}
	for _, c := range videoCodecs {
		if err := m.RegisterCodec(c, RTPCodecTypeVideo); err != nil {
			return err
		}
	}

	audioCodecs := []RTPCodecParameters{
		{RTPCodecCapability: RTPCodecCapability{MimeType: "audio/opus", ClockRate: 48000, Channels: 2, SDPFmtpLine: "minptime=10;useinbandfec=1", RTCPFeedback: audioFB}, PayloadType: 111},
		{RTPCodecCapability: RTPCodecCapability{MimeType: "audio/telephone-event", ClockRate: 8000, Channels: 1}, PayloadType: 101},
	}
	for _, c := range audioCodecs {
		if err := m.RegisterCodec(c, RTPCodecTypeAudio); err != nil {
			return err
		}
	}

	for _, uri := range []string{sdesMidURI, sdesRTPStreamIDURI, sdesRepairedRTPStreamIDURI} {
		if err := m.RegisterHeaderExtension(RTPHeaderExtensionCapability{URI: uri}, RTPCodecTypeVideo); err != nil {
			return err
		}
		if err := m.RegisterHeaderExtension(RTPHeaderExtensionCapability{URI: uri}, RTPCodecTypeAudio); err != nil {
			return err
		}
	}
	return nil
}

// getCodecsByKind returns the registered codecs for the given kind, in
// registration order (first registered is preferred, per spec §4.1).
func (m *MediaEngine) getCodecsByKind(kind RTPCodecType) []RTPCodecParameters {
	switch kind {
	case RTPCodecTypeAudio:
		return m.audioCodecs
	case RTPCodecTypeVideo:
		return m.videoCodecs
	default:
		return nil
	}
}

func (m *MediaEngine) getCodecByPayloadType(pt PayloadType) (RTPCodecParameters, bool) {
	for _, c := range m.audioCodecs {
		if c.PayloadType == pt {
			return c, true
		}
	}
	for _, c := range m.videoCodecs {
		if c.PayloadType == pt {
			return c, true
		}
	}
	return RTPCodecParameters{}, false
}

func (m *MediaEngine) headerExtensionsForKind(kind RTPCodecType) []headerExtension {
	out := make([]headerExtension, 0, len(m.headerExtensions))
	for _, h := range m.headerExtensions {
		if (kind == RTPCodecTypeAudio && h.isAudio) || (kind == RTPCodecTypeVideo && h.isVideo) {
			out = append(out, h)
		}
	}
	return out
}

// extensionID returns the concrete extmap id registered for uri, or 0 if
// uri was never registered (the "not negotiated" sentinel the MID
// demultiplexer and RTPSender's stamping guard both check for).
func (m *MediaEngine) extensionID(uri string) int {
	for _, h := range m.headerExtensions {
		if h.uri == uri {
			return h.id
		}
	}
	return 0
}

type unknownCodecTypeErr struct{ typ RTPCodecType }

func (e *unknownCodecTypeErr) Error() string { return "webrtc: unknown codec type " + e.typ.String() }
