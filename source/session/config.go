package session

// Protocol-fixed magic constants (§6 "Magic constants", §4.5 "Shared
// constants"). Unlike Config below, these are not tunable: they are part
// of the wire contract and changing them on one side of a connection
// without the other breaks the handshake.
const (
	// MagicGameID is the gameID stamped into the handshake messages.
	MagicGameID uint32 = 0xDEADCAFE
	// ChallengeSeed is the value the server first offers in
	// ConnectionAnswer, before the client XORs it with MagicGameID.
	ChallengeSeed uint32 = 0x123456
)

// Config collects the tunable parameters the distilled spec left as
// bare module-level constants (Design Notes, "Global mutable state") so
// they can be supplied once at Peer construction instead of compiled in.
// Defaults match §4.5's "Shared constants" exactly.
type Config struct {
	// ServerPort is the UDP port a server binds to and a searching
	// client broadcasts DiscoveryRequest against.
	ServerPort uint16
	// MaxPeers bounds how many RemotePeer slots a server will hand out
	// (IDs 1..MaxPeers; 0 is reserved, 0xFF means unassigned).
	MaxPeers int
	// BroadcastProbeMillis is how often a Searching client re-sends
	// DiscoveryRequest.
	BroadcastProbeMillis uint64
	// ConnectionTimeoutMillis is the silence window after which a
	// RemotePeer is dropped.
	ConnectionTimeoutMillis uint64
	// KeepAliveMillis is the ack-silence window after which a KeepAlive
	// probe is emitted.
	KeepAliveMillis uint64
	// SendIntervalMillis is the minimum spacing between packets sent to
	// the same RemotePeer (the send-rate ceiling).
	SendIntervalMillis uint64
}

// DefaultConfig returns the configuration matching §4.5's constants:
// serverPort 8000, 20 packets/s (50ms spacing), 10s connection timeout,
// 100ms keepalive threshold, 1000ms discovery broadcast interval.
func DefaultConfig() Config {
	return Config{
		ServerPort:              8000,
		MaxPeers:                32,
		BroadcastProbeMillis:    1000,
		ConnectionTimeoutMillis: 10000,
		KeepAliveMillis:         100,
		SendIntervalMillis:      50,
	}
}
