package protocol

import "testing"

func TestMessageHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h := MessageHeader{Size: 4, Sequence: 99, Flags: FlagReliable, MessageID: MessageConnectionRequest}
	s := NewStream(buf, StreamWrite)
	if !h.ToStream(s) {
		t.Fatal("ToStream failed")
	}

	out, ok := MessageHeaderFromStream(NewStream(buf, StreamRead))
	if !ok {
		t.Fatal("FromStream failed")
	}
	if out != h {
		t.Fatalf("round trip mismatch: %+v != %+v", out, h)
	}
}

func TestAllCatalogEntriesRoundTrip(t *testing.T) {
	cases := []Message{
		&TestMessage{Value: 7},
		&DiscoveryRequest{GameID: 0xDEADCAFE},
		&DiscoveryAnswer{GameID: 0xDEADCAFE, FreeSlots: 3, TotalSlots: 4},
		&ConnectionRequest{GameID: 0xDEADCAFE},
		&ConnectionAnswer{AssignedID: 1, Challenge: 0x123456},
		&ConnectionSuccess{GameID: 0xDEADCAFE},
		&KeepAlive{ServerSent: 1, Timestamp: 123456789},
		&DisconnectionRequest{GameID: 0xDEADCAFE},
		&PlayerJoined{PlayerID: 5},
		&PlayerLeft{PlayerID: 5},
	}

	for _, original := range cases {
		buf := make([]byte, original.PayloadSize())
		w := NewStream(buf, StreamWrite)
		if !original.Serialize(w) {
			t.Fatalf("%T: write failed", original)
		}

		reconstructed, ok := NewMessage(original.ID())
		if !ok {
			t.Fatalf("%T: NewMessage failed for id %d", original, original.ID())
		}
		r := NewStream(buf, StreamRead)
		if !reconstructed.Serialize(r) {
			t.Fatalf("%T: read failed", original)
		}
		if reconstructed.Flags() != original.Flags() {
			t.Fatalf("%T: flags mismatch", original)
		}
	}
}

func TestNewMessageRejectsUnknownID(t *testing.T) {
	if _, ok := NewMessage(MessageNone); ok {
		t.Fatal("expected MessageNone to be rejected")
	}
	if _, ok := NewMessage(messageCount); ok {
		t.Fatal("expected messageCount sentinel to be rejected")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := &ConnectionRequest{GameID: 1}
	clone := original.Clone().(*ConnectionRequest)
	clone.GameID = 2
	if original.GameID != 1 {
		t.Fatal("Clone must not alias the original")
	}
}
