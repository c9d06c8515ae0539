package session

import "netrelay-go/source/protocol"

// FakeEntry is one message held by LatencyFaker pending artificial
// delay (§4.4).
type FakeEntry struct {
	Header    protocol.MessageHeader
	Message   protocol.Message
	Source    protocol.Address
	Timestamp uint64
}

// LatencyFaker holds a strict FIFO of (message, source, enqueue
// timestamp) for test-only artificial latency injection (§4.4,
// test-only per §1/§2).
//
// Known limitation, preserved from the reference on purpose (Design
// Notes item 5, "may" not "must" fix): GetReady does not by itself
// distinguish a message whose sequence has since been acknowledged from
// one that hasn't — a delayed reliable message can still be released
// and processed after the sender already got its ack through a faster
// duplicate. DropAcked below is the opt-in hardened variant.
type LatencyFaker struct {
	latencyMillis uint64
	entries       []FakeEntry
}

// NewLatencyFaker returns a faker with zero artificial latency (a
// no-op FIFO) until SetLatency is called.
func NewLatencyFaker() *LatencyFaker {
	return &LatencyFaker{}
}

// SetLatency sets the artificial delay, in milliseconds. Zero disables
// delay: GetReady then pops unconditionally, preserving arrival order.
func (f *LatencyFaker) SetLatency(ms uint64) { f.latencyMillis = ms }

// Latency returns the current configured artificial delay.
func (f *LatencyFaker) Latency() uint64 { return f.latencyMillis }

// Add enqueues a message for delayed delivery, stamped with the current
// time.
func (f *LatencyFaker) Add(header protocol.MessageHeader, msg protocol.Message, source protocol.Address, now uint64) {
	f.entries = append(f.entries, FakeEntry{Header: header, Message: msg, Source: source, Timestamp: now})
}

// GetReady pops the oldest entry iff it is due: with zero latency,
// every call pops the front; otherwise the front pops once
// now - timestamp >= latency. Ordering is strictly FIFO of enqueue time
// (§4.4).
func (f *LatencyFaker) GetReady(now uint64) (FakeEntry, bool) {
	if len(f.entries) == 0 {
		return FakeEntry{}, false
	}
	head := f.entries[0]
	if f.latencyMillis > 0 && now-head.Timestamp < f.latencyMillis {
		return FakeEntry{}, false
	}
	f.entries = f.entries[1:]
	return head, true
}

// Len reports how many entries are currently queued.
func (f *LatencyFaker) Len() int { return len(f.entries) }

// DropAcked is the hardened variant Design Notes item 5 allows but does
// not require: given a predicate reporting whether a sequence has
// already been acknowledged by its destination RemotePeer, it discards
// any queued reliable entry whose sequence the predicate reports as
// already-acked, instead of letting it surface a second, redundant
// OnGameMessage call once its artificial delay elapses.
func (f *LatencyFaker) DropAcked(alreadyAcked func(seq uint16) bool) int {
	kept := f.entries[:0]
	dropped := 0
	for _, e := range f.entries {
		if e.Header.IsReliable() && alreadyAcked(e.Header.Sequence) {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return dropped
}
