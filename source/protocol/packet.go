package protocol

// MaxDatagramSize is the MTU ceiling a single Packet must not exceed
// (§2, §6).
const MaxDatagramSize = 1400

// ChecksumSeed is the CRC-16 starting value (§4.2).
const ChecksumSeed uint16 = 0xDEAD

// PacketHeaderSize is the wire size of PacketHeader (§3).
const PacketHeaderSize = 8

// CRC16 computes the checksum used to validate a datagram's tail
// (everything after the 2-byte checksum slot). The algorithm, including
// the 0xDEAD seed and the exact per-byte update, is reproduced bit for
// bit from the reference implementation so both sides of the wire agree
// (§4.2).
func CRC16(data []byte) uint16 {
	crc := ChecksumSeed
	for _, b := range data {
		x := uint8(crc>>8) ^ b
		x ^= x >> 4
		crc = (crc << 8) ^ (uint16(x) << 12) ^ (uint16(x) << 5) ^ uint16(x)
	}
	return crc
}

// PacketHeader is the 8-byte datagram header (§3, §6).
type PacketHeader struct {
	Checksum uint16
	AckSeq   uint16
	AckBits  uint32
}

func (h PacketHeader) ToStream(s *Stream) bool {
	return s.WriteUShort(h.Checksum) && s.WriteUShort(h.AckSeq) && s.WriteUInt(h.AckBits)
}

func PacketHeaderFromStream(s *Stream) (PacketHeader, bool) {
	var h PacketHeader
	ok := s.ReadUShort(&h.Checksum) && s.ReadUShort(&h.AckSeq) && s.ReadUInt(&h.AckBits)
	return h, ok
}

// IsChecksumValid recomputes the CRC over raw[2:] and compares it
// against the checksum stored in raw[0:2].
func IsChecksumValid(raw []byte) bool {
	if len(raw) < PacketHeaderSize {
		return false
	}
	var stored uint16
	s := NewStream(raw[:2], StreamRead)
	s.ReadUShort(&stored)
	return stored == CRC16(raw[2:])
}

// entry is one queued (header, message) pair awaiting serialization.
type entry struct {
	header  MessageHeader
	message Message
}

// Packet batches zero-or-more messages for one remote peer into a
// single datagram, never exceeding MaxDatagramSize (§3, §4.2).
type Packet struct {
	Header  PacketHeader
	entries []entry
}

// NewPacket starts an empty packet.
func NewPacket() *Packet {
	return &Packet{}
}

// Size returns the total wire size the packet would occupy if
// serialized right now.
func (p *Packet) Size() int {
	total := PacketHeaderSize
	for _, e := range p.entries {
		total += HeaderSize + int(e.header.Size)
	}
	return total
}

// MessageCount returns how many messages are queued in this packet.
func (p *Packet) MessageCount() int { return len(p.entries) }

// AddMessage appends m under header as given, with only its Size reset to
// m.PayloadSize(); it does not assign a sequence, so the caller stamps
// Sequence before adding a fresh message. Returns
// false, leaving the packet unmodified, if adding m would exceed
// MaxDatagramSize — the caller is expected to leave the message queued
// for the next tick (§4.2 step 3, §8 boundary behavior).
func (p *Packet) AddMessage(m Message, header MessageHeader) bool {
	added := header
	added.Size = m.PayloadSize()
	if p.Size()+HeaderSize+int(added.Size) > MaxDatagramSize {
		return false
	}
	p.entries = append(p.entries, entry{header: added, message: m})
	return true
}

// Entries exposes the queued (header, message) pairs in insertion
// order, for the caller driving sequence stamping and reliable
// requeueing.
func (p *Packet) Entries() []struct {
	Header  MessageHeader
	Message Message
} {
	out := make([]struct {
		Header  MessageHeader
		Message Message
	}, len(p.entries))
	for i, e := range p.entries {
		out[i].Header = e.header
		out[i].Message = e.message
	}
	return out
}

// ToBuffer serializes the packet into buf (which must be at least
// p.Size() bytes), computing and patching in the checksum last. It
// returns the number of bytes written.
func (p *Packet) ToBuffer(buf []byte) (int, bool) {
	s := NewStream(buf, StreamWrite)

	// checksum slot deferred (zeroed) until the tail is known.
	zeroHeader := p.Header
	zeroHeader.Checksum = 0
	if !zeroHeader.ToStream(s) {
		return 0, false
	}

	for _, e := range p.entries {
		if !e.header.ToStream(s) {
			return 0, false
		}
		if !e.message.Serialize(s) {
			return 0, false
		}
	}

	n := s.Index()
	checksum := CRC16(buf[2:n])
	s.Rewind(n)
	s2 := NewStream(buf, StreamWrite)
	s2.WriteUShort(checksum)
	return n, true
}

// ParsedEntry is one decoded (header, message) pair from an inbound
// datagram.
type ParsedEntry struct {
	Header  MessageHeader
	Message Message
}

// ParseStats counts the per-message protocol-validation failures
// ParsePacket skipped past (§7's "log, skip that message, continue
// parsing remainder of packet" policy), so the caller can attribute
// each to the right metrics label instead of just logging a generic
// parse failure.
type ParseStats struct {
	UnknownID      int
	BadDeserialize int
}

// ParsePacket validates the checksum, decodes the PacketHeader, and
// decodes as many (MessageHeader, body) pairs as the buffer holds.
// A message with an unknown ID or a body that fails to deserialize is
// skipped by advancing the stream by header.Size (§7's protocol-
// validation policy); the returned ParseStats tells the caller how
// many of each it skipped, so it can log and record metrics accurately.
func ParsePacket(raw []byte) (PacketHeader, []ParsedEntry, ParseStats, bool) {
	if len(raw) < PacketHeaderSize {
		return PacketHeader{}, nil, ParseStats{}, false
	}
	if !IsChecksumValid(raw) {
		return PacketHeader{}, nil, ParseStats{}, false
	}

	s := NewStream(raw, StreamRead)
	header, ok := PacketHeaderFromStream(s)
	if !ok {
		return PacketHeader{}, nil, ParseStats{}, false
	}

	var entries []ParsedEntry
	var stats ParseStats
	for !s.Full() {
		mh, ok := MessageHeaderFromStream(s)
		if !ok {
			break
		}
		msg, known := NewMessage(mh.MessageID)
		if !known {
			stats.UnknownID++
			s.Skip(int(mh.Size))
			continue
		}
		before := s.Index()
		if !msg.Serialize(s) {
			stats.BadDeserialize++
			s.Rewind(s.Index() - before)
			s.Skip(int(mh.Size))
			continue
		}
		entries = append(entries, ParsedEntry{Header: mh, Message: msg})
	}
	return header, entries, stats, true
}
