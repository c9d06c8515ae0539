package protocol

// Flag bits for MessageHeader.Flags (§3).
const (
	FlagSystem      uint8 = 0x01
	FlagReliable    uint8 = 0x01 << 1
	FlagOrdered     uint8 = 0x01 << 2
	FlagUnsequenced uint8 = 0x01 << 3
)

// MessageID discriminates the message catalog (§3).
type MessageID uint8

const (
	MessageNone MessageID = iota
	MessageTest
	MessageDiscoveryRequest
	MessageDiscoveryAnswer
	MessageConnectionRequest
	MessageConnectionAnswer
	MessageConnectionSuccess
	MessageKeepAlive
	MessageDisconnectionRequest
	MessagePlayerJoined
	MessagePlayerLeft
	messageCount
)

// MessageHeader is the 6-byte per-message framing header (§3, §6).
type MessageHeader struct {
	Size      uint16
	Sequence  uint16
	Flags     uint8
	MessageID MessageID
}

// HeaderSize is the wire size of a MessageHeader.
const HeaderSize = 6

func (h MessageHeader) IsSystem() bool      { return h.Flags&FlagSystem != 0 }
func (h MessageHeader) IsReliable() bool    { return h.Flags&FlagReliable != 0 }
func (h MessageHeader) IsOrdered() bool     { return h.Flags&FlagOrdered != 0 }
func (h MessageHeader) IsUnsequenced() bool { return h.Flags&FlagUnsequenced != 0 }

// ToStream writes the header.
func (h MessageHeader) ToStream(s *Stream) bool {
	size := h.Size
	seq := h.Sequence
	flags := h.Flags
	id := uint8(h.MessageID)
	return s.WriteUShort(size) && s.WriteUShort(seq) && s.WriteByte(flags) && s.WriteByte(id)
}

// MessageHeaderFromStream reads a header.
func MessageHeaderFromStream(s *Stream) (MessageHeader, bool) {
	var h MessageHeader
	var id uint8
	ok := s.ReadUShort(&h.Size) && s.ReadUShort(&h.Sequence) && s.ReadByte(&h.Flags) && s.ReadByte(&id)
	h.MessageID = MessageID(id)
	return h, ok
}

// Message is the tagged-union member interface every catalog entry
// implements. This replaces the reference's virtual-method class
// hierarchy generated by its DEFINE_QUICKNETMESSAGE macro (Design Notes,
// "Polymorphic message catalog"): each concrete type here is a plain
// struct, dispatch is a table keyed by MessageID, and "copy-to-other"
// is an ordinary Clone.
type Message interface {
	// ID returns this message's catalog discriminator.
	ID() MessageID
	// Flags returns this message's fixed flag set.
	Flags() uint8
	// PayloadSize returns the fixed wire size of the body, excluding
	// the MessageHeader.
	PayloadSize() uint16
	// Serialize writes or reads the body depending on the stream's
	// mode (the "dispatch" contract from §4.1).
	Serialize(s *Stream) bool
	// Clone returns an independent deep copy, used by SendToAll to
	// give each remote peer its own owned instance instead of sharing
	// one value across peers (see Design Notes item 6 and its fix).
	Clone() Message
}

// DescribeHeader builds the MessageHeader for a freshly enqueued
// message: sequence 0 ("never assigned"), stamped by the packet
// assembler at send time (§4.2 step 2).
func DescribeHeader(m Message) MessageHeader {
	return MessageHeader{
		Size:      m.PayloadSize(),
		Sequence:  0,
		Flags:     m.Flags(),
		MessageID: m.ID(),
	}
}

// NewMessage constructs a zero-valued instance of the catalog entry
// named by id, or (nil, false) for an unknown or reserved id — the Go
// equivalent of the reference's GetMessageFromID factory.
func NewMessage(id MessageID) (Message, bool) {
	switch id {
	case MessageTest:
		return &TestMessage{}, true
	case MessageDiscoveryRequest:
		return &DiscoveryRequest{}, true
	case MessageDiscoveryAnswer:
		return &DiscoveryAnswer{}, true
	case MessageConnectionRequest:
		return &ConnectionRequest{}, true
	case MessageConnectionAnswer:
		return &ConnectionAnswer{}, true
	case MessageConnectionSuccess:
		return &ConnectionSuccess{}, true
	case MessageKeepAlive:
		return &KeepAlive{}, true
	case MessageDisconnectionRequest:
		return &DisconnectionRequest{}, true
	case MessagePlayerJoined:
		return &PlayerJoined{}, true
	case MessagePlayerLeft:
		return &PlayerLeft{}, true
	default:
		return nil, false
	}
}
