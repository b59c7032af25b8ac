package webrtc

import (
	"context"
	"sync"

	"github.com/pion/ice/v2"
)

// ICETransportState mirrors the W3C RTCIceTransportState values surfaced by
// the ICE transport's connection_state_change event (spec §6).
type ICETransportState int

const (
	ICETransportStateNew ICETransportState = iota + 1
	ICETransportStateChecking
	ICETransportStateConnected
	ICETransportStateCompleted
	ICETransportStateDisconnected
	ICETransportStateFailed
	ICETransportStateClosed
)

func (s ICETransportState) String() string {
	switch s {
	case ICETransportStateNew:
		return "new"
	case ICETransportStateChecking:
		return "checking"
	case ICETransportStateConnected:
		return "connected"
	case ICETransportStateCompleted:
		return "completed"
	case ICETransportStateDisconnected:
		return "disconnected"
	case ICETransportStateFailed:
		return "failed"
	case ICETransportStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ICECandidate is a gathered or remote ICE candidate, the subset of
// RTCIceCandidate this module round-trips across its §6 contract.
type ICECandidate struct {
	Foundation string
	Component  uint16
	Protocol   string
	Priority   uint32
	Address    string
	Port       uint16
	Typ        string
	RelatedAddress string
	RelatedPort    uint16
}

// ICETransport is the §6 "ICE transport (consumed)" contract: an external
// collaborator the PeerConnection drives through a small event/operation
// surface, never reaching into ICE internals directly. A real
// implementation wraps *ice.Agent; tests substitute a fake satisfying the
// same interface.
type ICETransport interface {
	OnGatheringStateChange(func(ICEGatheringState))
	OnConnectionStateChange(func(ICETransportState))
	OnCandidate(func(ICECandidate))
	OnData(func([]byte))

	Gather() error
	AddRemoteCandidate(ICECandidate) error
	Send([]byte) error
	RestartICE() error
	Close() error
}

// pionICETransport adapts a *ice.Agent to the ICETransport contract,
// mirroring the one-agent-per-PeerConnection wiring of the pion/webrtc
// icetransport.go this module's corpus is grounded on.
type pionICETransport struct {
	mu sync.Mutex

	agent *ice.Agent
	conn  iceDataConn

	onGathering  func(ICEGatheringState)
	onConnection func(ICETransportState)
	onCandidate  func(ICECandidate)
	onData       func([]byte)

	closed bool
}

// iceDataConn is the minimal net.Conn subset used once an ICE connection
// is established (ice.Conn satisfies this).
type iceDataConn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// NewPionICETransport constructs an ICETransport backed by a real
// *ice.Agent configured from cfg. The agent's own diagnostics are routed
// through the package's zerolog-backed logging.LoggerFactory unless cfg
// already names one.
func NewPionICETransport(cfg *ice.AgentConfig) (ICETransport, error) {
	if cfg.LoggerFactory == nil {
		cfg.LoggerFactory = newZerologLoggerFactory(defaultLogger)
	}

	agent, err := ice.NewAgent(cfg)
	if err != nil {
		return nil, err
	}

	t := &pionICETransport{agent: agent}

	if err := agent.OnCandidate(func(c ice.Candidate) {
		t.mu.Lock()
		cb := t.onCandidate
		t.mu.Unlock()
		if cb == nil || c == nil {
			return
		}
		cb(ICECandidate{
			Foundation: c.Foundation(),
			Component:  uint16(c.Component()),
			Priority:   c.Priority(),
			Address:    c.Address(),
			Port:       uint16(c.Port()),
			Typ:        c.Type().String(),
		})
	}); err != nil {
		return nil, err
	}

	if err := agent.OnConnectionStateChange(func(s ice.ConnectionState) {
		t.mu.Lock()
		cb := t.onConnection
		t.mu.Unlock()
		if cb != nil {
			cb(iceConnectionStateFrom(s))
		}
	}); err != nil {
		return nil, err
	}

	return t, nil
}

func iceConnectionStateFrom(s ice.ConnectionState) ICETransportState {
	switch s {
	case ice.ConnectionStateNew:
		return ICETransportStateNew
	case ice.ConnectionStateChecking:
		return ICETransportStateChecking
	case ice.ConnectionStateConnected:
		return ICETransportStateConnected
	case ice.ConnectionStateCompleted:
		return ICETransportStateCompleted
	case ice.ConnectionStateDisconnected:
		return ICETransportStateDisconnected
	case ice.ConnectionStateFailed:
		return ICETransportStateFailed
	case ice.ConnectionStateClosed:
		return ICETransportStateClosed
	default:
		return ICETransportStateNew
	}
}

func (t *pionICETransport) OnGatheringStateChange(f func(ICEGatheringState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGathering = f
}

func (t *pionICETransport) OnConnectionStateChange(f func(ICETransportState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnection = f
}

func (t *pionICETransport) OnCandidate(f func(ICECandidate)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCandidate = f
}

func (t *pionICETransport) OnData(f func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onData = f
}

// Gather starts candidate gathering, firing OnGatheringStateChange(Complete)
// once the agent's internal gathering finishes.
func (t *pionICETransport) Gather() error {
	t.mu.Lock()
	cb := t.onGathering
	t.mu.Unlock()

	if cb != nil {
		cb(ICEGatheringStateGathering)
	}
	if err := t.agent.GatherCandidates(); err != nil {
		return err
	}
	if cb != nil {
		cb(ICEGatheringStateComplete)
	}
	return nil
}

func (t *pionICETransport) AddRemoteCandidate(c ICECandidate) error {
	candidate, err := ice.UnmarshalCandidate(iceCandidateSDPLine(c))
	if err != nil {
		return err
	}
	return t.agent.AddRemoteCandidate(candidate)
}

// iceCandidateSDPLine renders an ICECandidate back to the a=candidate
// wire form ice.UnmarshalCandidate expects, per spec §6's SDP contract.
func iceCandidateSDPLine(c ICECandidate) string {
	return "candidate:" + c.Foundation + " 1 udp " +
		uitoa(c.Priority) + " " + c.Address + " " + uitoa(uint32(c.Port)) +
		" typ " + c.Typ
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Connect performs the controlling/controlled ICE connectivity check
// exchange against the remote's ufrag/pwd, per spec §6's `start` analogue
// (ICE has no explicit start op; connection begins once both sides have
// exchanged credentials and candidates). The resulting conn feeds OnData
// via a read loop and becomes the sink for Send.
func (t *pionICETransport) Connect(controlling bool, remoteUfrag, remotePwd string) error {
	var conn iceDataConn
	var err error
	if controlling {
		conn, err = t.agent.Dial(context.Background(), remoteUfrag, remotePwd)
	} else {
		conn, err = t.agent.Accept(context.Background(), remoteUfrag, remotePwd)
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(conn)
	return nil
}

func (t *pionICETransport) readLoop(conn iceDataConn) {
	buf := make([]byte, 1500)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		t.mu.Lock()
		cb := t.onData
		t.mu.Unlock()
		if cb != nil {
			cb(append([]byte(nil), buf[:n]...))
		}
	}
}

func (t *pionICETransport) Send(b []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return ErrConnectionClosed
	}
	_, err := conn.Write(b)
	return err
}

func (t *pionICETransport) RestartICE() error {
	return t.agent.Restart("", "")
}

func (t *pionICETransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	return t.agent.Close()
}
