package webrtc

// API bundles a MediaEngine and a SettingEngine into the single entry
// point PeerConnections are constructed from, mirroring the real
// pion/webrtc API/Option pattern (webrtc.NewAPI(webrtc.WithMediaEngine(m))
// in the corpus's replace-track example). Grouping them here, rather than
// passing a MediaEngine straight to NewPeerConnection, is what lets a
// SettingEngine's NACK/jitter-buffer overrides reach every transceiver the
// resulting PeerConnections create.
type API struct {
	mediaEngine   *MediaEngine
	settingEngine SettingEngine
}

// Option configures an API under construction.
type Option func(*API)

// WithMediaEngine installs the MediaEngine an API's PeerConnections
// negotiate codecs and header extensions through.
func WithMediaEngine(engine *MediaEngine) Option {
	return func(a *API) { a.mediaEngine = engine }
}

// WithSettingEngine installs the SettingEngine an API's PeerConnections
// take their NACK/jitter-buffer overrides from.
func WithSettingEngine(settings SettingEngine) Option {
	return func(a *API) { a.settingEngine = settings }
}

// NewAPI applies every option over a default API: an empty MediaEngine (no
// codecs registered) and a zero-value SettingEngine (every package
// default).
func NewAPI(options ...Option) *API {
	a := &API{mediaEngine: &MediaEngine{}}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// NewPeerConnection constructs a PeerConnection from this API's
// MediaEngine and SettingEngine.
func (a *API) NewPeerConnection(configuration Configuration) (*PeerConnection, error) {
	return newPeerConnection(configuration, a.mediaEngine, a.settingEngine)
}
