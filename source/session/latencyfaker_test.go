package session

import (
	"testing"

	"netrelay-go/source/protocol"

	"github.com/stretchr/testify/require"
)

func TestLatencyFakerZeroLatencyPopsImmediately(t *testing.T) {
	f := NewLatencyFaker()
	f.Add(protocol.MessageHeader{}, &protocol.TestMessage{Value: 1}, protocol.Address{}, 0)

	entry, ok := f.GetReady(0)
	require.True(t, ok)
	require.Equal(t, uint8(1), entry.Message.(*protocol.TestMessage).Value)
}

func TestLatencyFakerDelaysUntilDue(t *testing.T) {
	f := NewLatencyFaker()
	f.SetLatency(100)
	f.Add(protocol.MessageHeader{}, &protocol.TestMessage{Value: 1}, protocol.Address{}, 1000)

	_, ok := f.GetReady(1050)
	require.False(t, ok, "should not be ready before latency elapses")

	entry, ok := f.GetReady(1100)
	require.True(t, ok, "should be ready exactly at the latency boundary")
	require.Equal(t, uint8(1), entry.Message.(*protocol.TestMessage).Value)
}

func TestLatencyFakerStrictFIFOOrder(t *testing.T) {
	f := NewLatencyFaker()
	f.SetLatency(50)
	f.Add(protocol.MessageHeader{}, &protocol.TestMessage{Value: 1}, protocol.Address{}, 0)
	f.Add(protocol.MessageHeader{}, &protocol.TestMessage{Value: 2}, protocol.Address{}, 10)

	e1, ok := f.GetReady(60)
	require.True(t, ok)
	require.Equal(t, uint8(1), e1.Message.(*protocol.TestMessage).Value, "FIFO must release enqueue-order, not completion-order")

	// second entry not yet due (enqueued at 10, due at 60)
	_, ok = f.GetReady(55)
	require.False(t, ok)

	e2, ok := f.GetReady(60)
	require.True(t, ok)
	require.Equal(t, uint8(2), e2.Message.(*protocol.TestMessage).Value)
}

func TestLatencyFakerDropAcked(t *testing.T) {
	f := NewLatencyFaker()
	f.Add(protocol.MessageHeader{Flags: protocol.FlagReliable, Sequence: 5}, &protocol.TestMessage{Value: 1}, protocol.Address{}, 0)
	f.Add(protocol.MessageHeader{Flags: protocol.FlagReliable, Sequence: 6}, &protocol.TestMessage{Value: 2}, protocol.Address{}, 0)

	dropped := f.DropAcked(func(seq uint16) bool { return seq == 5 })
	require.Equal(t, 1, dropped)
	require.Equal(t, 1, f.Len())
}
