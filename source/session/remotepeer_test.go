package session

import (
	"testing"

	"netrelay-go/source/protocol"

	"github.com/stretchr/testify/require"
)

func TestIsSequenceNewerExactlyOneDirectionTrue(t *testing.T) {
	cases := [][2]uint16{
		{1, 0}, {0x0001, 0xFFFF}, {0x8000, 0x0000}, {0x7FFF, 0x0000}, {0x8001, 0x0000},
		{500, 499}, {12, 65000},
	}
	for _, c := range cases {
		a, b := c[0], c[1]
		ab := IsSequenceNewer(a, b)
		ba := IsSequenceNewer(b, a)
		require.True(t, ab != ba, "exactly one of isNewer(%d,%d)/isNewer(%d,%d) must be true", a, b, b, a)
	}
}

func TestIsSequenceNewerBoundaryValues(t *testing.T) {
	require.True(t, IsSequenceNewer(0x0001, 0xFFFF))
	require.True(t, IsSequenceNewer(0x8000, 0x0000))
	require.True(t, IsSequenceNewer(0x7FFF, 0x0000))
	require.False(t, IsSequenceNewer(0x8001, 0x0000))
}

func TestNextOutboundSequenceSkipsZero(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	for i := 0; i < 10; i++ {
		seq := r.NextOutboundSequence()
		require.NotZero(t, seq)
	}
}

func TestNextOutboundSequenceWrapsToOne(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	r.sequenceOut = 0xFFFF
	seq := r.NextOutboundSequence()
	require.Equal(t, uint16(0xFFFF), seq)
	require.Equal(t, uint16(1), r.sequenceOut)
}

func TestObserveInboundWrapIncrementsRoundOnce(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	r.sequenceIn = 0xFFFE
	h := protocol.MessageHeader{Flags: protocol.FlagReliable}

	h.Sequence = 0xFFFF
	require.True(t, r.ObserveInbound(h))
	require.Equal(t, uint32(0), r.SequenceRound())

	h.Sequence = 0x0001
	require.True(t, r.ObserveInbound(h))
	require.Equal(t, uint32(1), r.SequenceRound(), "wrap from 0xFFFF to 1 must increment round exactly once")

	h.Sequence = 0x0002
	require.True(t, r.ObserveInbound(h))
	require.Equal(t, uint32(1), r.SequenceRound(), "round should not increment again on ordinary advance")
}

func TestObserveInboundDropsOrderedButNotReliableStale(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	h := protocol.MessageHeader{Flags: protocol.FlagOrdered}
	h.Sequence = 10
	require.True(t, r.ObserveInbound(h))

	h.Sequence = 5
	require.False(t, r.ObserveInbound(h), "stale ordered-but-not-reliable must be dropped")
}

func TestObserveInboundDuplicateSuppression(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	h := protocol.MessageHeader{Flags: protocol.FlagReliable}
	h.Sequence = 10
	require.True(t, r.ObserveInbound(h))

	h.Sequence = 20
	require.True(t, r.ObserveInbound(h))

	// Replay sequence 10: already recorded at the current round, must
	// be treated as a duplicate and dropped (S6).
	h.Sequence = 10
	require.False(t, r.ObserveInbound(h))
}

func TestAckBitsReportCorrectRelativeSequences(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	h := protocol.MessageHeader{Flags: protocol.FlagReliable}
	for _, seq := range []uint16{100, 99, 97} {
		h.Sequence = seq
		r.ObserveInbound(h)
	}

	bits := r.AckBits()
	ackseq := r.SequenceIn()
	require.Equal(t, uint16(100), ackseq)

	require.NotZero(t, bits&(1<<0), "sequence 99 (ackseq-1-0) should be acked")
	require.Zero(t, bits&(1<<1), "sequence 98 was never received")
	require.NotZero(t, bits&(1<<2), "sequence 97 (ackseq-1-2) should be acked")
}

func TestProcessAcksRemovesReliableAndSamplesRTT(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	msg := &protocol.ConnectionRequest{GameID: 1}
	header := protocol.DescribeHeader(msg)
	header.Sequence = r.NextOutboundSequence()
	r.BackupReliable(header, msg, 1000)
	require.Equal(t, 1, r.ReliableCount())

	r.ProcessAcks(header.Sequence, 0, 1100)
	require.Equal(t, 0, r.ReliableCount(), "acked reliable message must be removed")
	require.Equal(t, uint64(100), r.RTT())
	require.Equal(t, uint64(50), r.Ping())
}

func TestProcessAcksViaBitfield(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	msg := &protocol.ConnectionRequest{GameID: 1}
	header := protocol.DescribeHeader(msg)
	seq := r.NextOutboundSequence()
	header.Sequence = seq
	r.BackupReliable(header, msg, 1000)

	// ackseq = seq+2, bit 1 => (ackseq-1-1) = seq
	ackseq := seq + 2
	r.ProcessAcks(ackseq, 1<<1, 1050)
	require.Equal(t, 0, r.ReliableCount())
}

func TestRTTSmoothingFormula(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	r.updateRTT(100)
	require.Equal(t, uint64(100), r.RTT())
	r.updateRTT(200)
	require.Equal(t, uint64((100*90+200*10)/100), r.RTT())
}

func TestDequeuePendingFIFOOrder(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	r.Enqueue(&protocol.TestMessage{Value: 1})
	r.Enqueue(&protocol.TestMessage{Value: 2})

	_, m1, ok := r.DequeuePending()
	require.True(t, ok)
	require.Equal(t, uint8(1), m1.(*protocol.TestMessage).Value)

	_, m2, ok := r.DequeuePending()
	require.True(t, ok)
	require.Equal(t, uint8(2), m2.(*protocol.TestMessage).Value)
}

func TestRequeuePendingGoesToFront(t *testing.T) {
	r := NewRemotePeer(protocol.Address{}, 0)
	r.Enqueue(&protocol.TestMessage{Value: 2})
	h := protocol.MessageHeader{}
	r.RequeuePending(h, &protocol.TestMessage{Value: 1})

	_, m, ok := r.DequeuePending()
	require.True(t, ok)
	require.Equal(t, uint8(1), m.(*protocol.TestMessage).Value)
}
