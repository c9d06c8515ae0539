// Package session implements the per-remote state machine: sequence
// tracking across 16-bit wraparound, selective-ack generation and
// consumption, reliable retransmission queues, and RTT smoothing
// (§3 RemotePeer, §4.3 Sequence engine).
package session

// State enumerates both a RemotePeer's connection state and (reused by
// the peer orchestrator) the local Peer's own network state (§3, §4.5).
type State int

const (
	Disconnected State = iota
	Searching
	Connecting
	Connected
	ServerMode
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Searching:
		return "Searching"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case ServerMode:
		return "ServerMode"
	default:
		return "Unknown"
	}
}

// UnassignedID is the sentinel meaning "no ID assigned" (0xFF).
const UnassignedID uint8 = 0xFF

// ServerPeerID is the reserved ID meaning "the server, from a client's
// point of view" (0).
const ServerPeerID uint8 = 0
