package protocol

// The ten catalog entries (§3). Field layout, flags, and payload sizes
// are reproduced exactly from the distilled message table, which in
// turn traces to the reference's DEFINE_QUICKNETMESSAGE_START macro
// invocations (size, flags) in quicknet_messagetypes.h.

// TestMessage carries a single diagnostic byte. System only.
type TestMessage struct {
	Value uint8
}

func (m *TestMessage) ID() MessageID      { return MessageTest }
func (m *TestMessage) Flags() uint8       { return FlagSystem }
func (m *TestMessage) PayloadSize() uint16 { return 1 }
func (m *TestMessage) Serialize(s *Stream) bool {
	return s.DispatchByte(&m.Value)
}
func (m *TestMessage) Clone() Message {
	c := *m
	return &c
}

// DiscoveryRequest is broadcast by a Searching client (§4.5).
type DiscoveryRequest struct {
	GameID uint32
}

func (m *DiscoveryRequest) ID() MessageID       { return MessageDiscoveryRequest }
func (m *DiscoveryRequest) Flags() uint8        { return FlagSystem | FlagUnsequenced }
func (m *DiscoveryRequest) PayloadSize() uint16 { return 4 }
func (m *DiscoveryRequest) Serialize(s *Stream) bool {
	return s.DispatchUInt(&m.GameID)
}
func (m *DiscoveryRequest) Clone() Message {
	c := *m
	return &c
}

// DiscoveryAnswer is the server's reply to a matching DiscoveryRequest.
type DiscoveryAnswer struct {
	GameID     uint32
	FreeSlots  uint8
	TotalSlots uint8
}

func (m *DiscoveryAnswer) ID() MessageID       { return MessageDiscoveryAnswer }
func (m *DiscoveryAnswer) Flags() uint8        { return FlagSystem | FlagUnsequenced }
func (m *DiscoveryAnswer) PayloadSize() uint16 { return 6 }
func (m *DiscoveryAnswer) Serialize(s *Stream) bool {
	return s.DispatchUInt(&m.GameID) && s.DispatchByte(&m.FreeSlots) && s.DispatchByte(&m.TotalSlots)
}
func (m *DiscoveryAnswer) Clone() Message {
	c := *m
	return &c
}

// ConnectionRequest opens the handshake (§4.5 step 1).
type ConnectionRequest struct {
	GameID uint32
}

func (m *ConnectionRequest) ID() MessageID       { return MessageConnectionRequest }
func (m *ConnectionRequest) Flags() uint8        { return FlagSystem | FlagReliable }
func (m *ConnectionRequest) PayloadSize() uint16 { return 4 }
func (m *ConnectionRequest) Serialize(s *Stream) bool {
	return s.DispatchUInt(&m.GameID)
}
func (m *ConnectionRequest) Clone() Message {
	c := *m
	return &c
}

// ConnectionAnswer carries the assigned ID and the challenge value in
// both handshake directions (§4.5 steps 2-3).
type ConnectionAnswer struct {
	AssignedID uint8
	Challenge  uint32
}

func (m *ConnectionAnswer) ID() MessageID       { return MessageConnectionAnswer }
func (m *ConnectionAnswer) Flags() uint8        { return FlagSystem | FlagReliable }
func (m *ConnectionAnswer) PayloadSize() uint16 { return 5 }
func (m *ConnectionAnswer) Serialize(s *Stream) bool {
	return s.DispatchByte(&m.AssignedID) && s.DispatchUInt(&m.Challenge)
}
func (m *ConnectionAnswer) Clone() Message {
	c := *m
	return &c
}

// ConnectionSuccess closes the handshake (§4.5 step 4).
type ConnectionSuccess struct {
	GameID uint32
}

func (m *ConnectionSuccess) ID() MessageID       { return MessageConnectionSuccess }
func (m *ConnectionSuccess) Flags() uint8        { return FlagSystem | FlagReliable }
func (m *ConnectionSuccess) PayloadSize() uint16 { return 4 }
func (m *ConnectionSuccess) Serialize(s *Stream) bool {
	return s.DispatchUInt(&m.GameID)
}
func (m *ConnectionSuccess) Clone() Message {
	c := *m
	return &c
}

// KeepAlive is either a probe or its echo, disambiguated by ServerSent
// (§4.5's KeepAlive semantics).
type KeepAlive struct {
	ServerSent uint8
	Timestamp  uint64
}

func (m *KeepAlive) ID() MessageID       { return MessageKeepAlive }
func (m *KeepAlive) Flags() uint8        { return FlagSystem }
func (m *KeepAlive) PayloadSize() uint16 { return 9 }
func (m *KeepAlive) Serialize(s *Stream) bool {
	return s.DispatchByte(&m.ServerSent) && s.DispatchULong(&m.Timestamp)
}
func (m *KeepAlive) Clone() Message {
	c := *m
	return &c
}

// DisconnectionRequest is sent redundantly by DisconnectPeer (§4.5).
type DisconnectionRequest struct {
	GameID uint32
}

func (m *DisconnectionRequest) ID() MessageID       { return MessageDisconnectionRequest }
func (m *DisconnectionRequest) Flags() uint8        { return FlagSystem }
func (m *DisconnectionRequest) PayloadSize() uint16 { return 4 }
func (m *DisconnectionRequest) Serialize(s *Stream) bool {
	return s.DispatchUInt(&m.GameID)
}
func (m *DisconnectionRequest) Clone() Message {
	c := *m
	return &c
}

// PlayerJoined is an application-level reliable notification.
type PlayerJoined struct {
	PlayerID uint8
}

func (m *PlayerJoined) ID() MessageID       { return MessagePlayerJoined }
func (m *PlayerJoined) Flags() uint8        { return FlagReliable }
func (m *PlayerJoined) PayloadSize() uint16 { return 1 }
func (m *PlayerJoined) Serialize(s *Stream) bool {
	return s.DispatchByte(&m.PlayerID)
}
func (m *PlayerJoined) Clone() Message {
	c := *m
	return &c
}

// PlayerLeft is an application-level reliable notification.
type PlayerLeft struct {
	PlayerID uint8
}

func (m *PlayerLeft) ID() MessageID       { return MessagePlayerLeft }
func (m *PlayerLeft) Flags() uint8        { return FlagReliable }
func (m *PlayerLeft) PayloadSize() uint16 { return 1 }
func (m *PlayerLeft) Serialize(s *Stream) bool {
	return s.DispatchByte(&m.PlayerID)
}
func (m *PlayerLeft) Clone() Message {
	c := *m
	return &c
}
