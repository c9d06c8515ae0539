package protocol

import "testing"

func TestCRC16KnownSeed(t *testing.T) {
	// Empty tail: CRC16 of zero bytes must equal the seed itself.
	if got := CRC16(nil); got != ChecksumSeed {
		t.Fatalf("expected seed %x unchanged over empty input, got %x", ChecksumSeed, got)
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	s := NewStream(buf, StreamWrite)
	hdr := PacketHeader{Checksum: 0, AckSeq: 42, AckBits: 0xFF}
	hdr.ToStream(s)
	for i := 8; i < 20; i++ {
		buf[i] = byte(i)
	}
	checksum := CRC16(buf[2:20])
	out := NewStream(buf[:2], StreamWrite)
	out.WriteUShort(checksum)

	if !IsChecksumValid(buf[:20]) {
		t.Fatal("expected valid checksum to validate")
	}
}

func TestChecksumDetectsFlippedByte(t *testing.T) {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = byte(i * 3)
	}
	checksum := CRC16(buf[2:])
	s := NewStream(buf[:2], StreamWrite)
	s.WriteUShort(checksum)
	if !IsChecksumValid(buf) {
		t.Fatal("expected valid checksum before corruption")
	}

	buf[10] ^= 0xFF
	if IsChecksumValid(buf) {
		t.Fatal("expected corrupted payload to invalidate checksum")
	}
}

func TestPacketAssemblyAndParse(t *testing.T) {
	p := NewPacket()
	p.Header = PacketHeader{AckSeq: 7, AckBits: 0x3}

	msg := &ConnectionRequest{GameID: 0xDEADCAFE}
	header := DescribeHeader(msg)
	header.Sequence = 1
	if !p.AddMessage(msg, header) {
		t.Fatal("AddMessage failed unexpectedly")
	}

	buf := make([]byte, p.Size())
	n, ok := p.ToBuffer(buf)
	if !ok {
		t.Fatal("ToBuffer failed")
	}
	buf = buf[:n]

	if !IsChecksumValid(buf) {
		t.Fatal("assembled packet failed checksum validation")
	}

	parsedHeader, entries, stats, ok := ParsePacket(buf)
	if !ok {
		t.Fatal("ParsePacket failed")
	}
	if stats.UnknownID != 0 || stats.BadDeserialize != 0 {
		t.Fatalf("expected no skipped messages, got %+v", stats)
	}
	if parsedHeader.AckSeq != 7 || parsedHeader.AckBits != 0x3 {
		t.Fatalf("header mismatch: %+v", parsedHeader)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got, ok := entries[0].Message.(*ConnectionRequest)
	if !ok {
		t.Fatalf("expected *ConnectionRequest, got %T", entries[0].Message)
	}
	if got.GameID != 0xDEADCAFE {
		t.Fatalf("expected gameID 0xDEADCAFE, got %x", got.GameID)
	}
}

func TestPacketRejectsOversizeAddition(t *testing.T) {
	p := NewPacket()
	big := &KeepAlive{}
	for {
		header := DescribeHeader(big)
		header.Sequence = 1
		if !p.AddMessage(big, header) {
			break
		}
	}
	if p.Size() > MaxDatagramSize {
		t.Fatalf("packet grew past MaxDatagramSize: %d", p.Size())
	}
}

func TestParsePacketRejectsTruncated(t *testing.T) {
	_, _, _, ok := ParsePacket([]byte{1, 2, 3})
	if ok {
		t.Fatal("expected truncated datagram to fail parsing")
	}
}
