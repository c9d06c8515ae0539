package session

import "netrelay-go/source/protocol"

// queued pairs a message with the header describing it; Header.Sequence
// is 0 until the packet assembler stamps it at send time (§4.2 step 2).
type queued struct {
	header  protocol.MessageHeader
	message protocol.Message
}

// RemotePeer is the per-connection state machine: sequence tracking,
// retransmission queues, and RTT smoothing (§3, §4.3). RemotePeer does
// not own its owning Peer — see Design Notes, "Pointer graphs &
// back-references" — and is not safe for concurrent use, matching the
// single-threaded cooperative model in §5.
type RemotePeer struct {
	Address    protocol.Address
	AssignedID uint8
	State      State

	sequenceIn    uint16
	sequenceOut   uint16
	sequenceRound uint32

	seqtrackReceived map[uint16]uint32
	seqtrackSent     map[uint16]uint64

	pending  []queued
	reliable []queued

	rtt  uint64
	ping uint64

	lastAckTime     uint64
	lastMessageTime uint64
	lastSend        uint64
}

// NewRemotePeer constructs a RemotePeer for addr, with sequenceOut
// starting at 1 (0 is reserved, per the Data Model invariant) and all
// timers anchored at now.
func NewRemotePeer(addr protocol.Address, now uint64) *RemotePeer {
	return &RemotePeer{
		Address:          addr,
		AssignedID:       UnassignedID,
		State:            Disconnected,
		sequenceOut:      1,
		seqtrackReceived: make(map[uint16]uint32),
		seqtrackSent:     make(map[uint16]uint64),
		lastAckTime:      now,
		lastMessageTime:  now,
	}
}

// IsSequenceNewer reports whether incoming should be considered newer
// than current across 16-bit wraparound (§4.3). A distance of exactly
// half the sequence space counts as not wrapped, so 0x8000 is newer
// than 0x0000.
func IsSequenceNewer(incoming, current uint16) bool {
	if incoming == current {
		return false
	}
	diff := int32(incoming) - int32(current)
	if diff < 0 {
		diff = -diff
	}
	const half = 32768
	if diff <= half {
		return incoming > current
	}
	return incoming < current
}

// SequenceIn returns the highest received sequence so far.
func (r *RemotePeer) SequenceIn() uint16 { return r.sequenceIn }

// SequenceOut returns the next outbound sequence to be assigned.
func (r *RemotePeer) SequenceOut() uint16 { return r.sequenceOut }

// SequenceRound returns the current wrap-around round counter.
func (r *RemotePeer) SequenceRound() uint32 { return r.sequenceRound }

// RTT returns the smoothed round-trip time estimate, in milliseconds.
func (r *RemotePeer) RTT() uint64 { return r.rtt }

// Ping returns the one-way latency estimate (RTT / 2).
func (r *RemotePeer) Ping() uint64 { return r.ping }

// LastAckTime returns the timestamp of the most recently processed ack.
func (r *RemotePeer) LastAckTime() uint64 { return r.lastAckTime }

// LastMessageTime returns the timestamp of the most recently received
// message of any kind.
func (r *RemotePeer) LastMessageTime() uint64 { return r.lastMessageTime }

// LastSend returns the timestamp of the most recent packet send.
func (r *RemotePeer) LastSend() uint64 { return r.lastSend }

// TouchReceived stamps lastMessageTime. Called on every successfully
// parsed inbound datagram, regardless of whether any individual message
// inside it was accepted.
func (r *RemotePeer) TouchReceived(now uint64) { r.lastMessageTime = now }

// TouchSend stamps lastSend. Called after a packet is transmitted.
func (r *RemotePeer) TouchSend(now uint64) { r.lastSend = now }

// PendingCount returns how many messages are queued for first send.
func (r *RemotePeer) PendingCount() int { return len(r.pending) }

// ReliableCount returns how many reliable messages are awaiting ack.
func (r *RemotePeer) ReliableCount() int { return len(r.reliable) }

// NextOutboundSequence returns the next sequence to stamp and advances
// the counter, wrapping from 0xFFFF directly to 1 (0 is never assigned,
// §3 invariant, §8 boundary behavior S4).
func (r *RemotePeer) NextOutboundSequence() uint16 {
	seq := r.sequenceOut
	if seq == 0xFFFF {
		r.sequenceOut = 1
	} else {
		r.sequenceOut = seq + 1
	}
	return seq
}

// Enqueue appends msg to the pending (not-yet-sent) FIFO.
func (r *RemotePeer) Enqueue(msg protocol.Message) {
	r.pending = append(r.pending, queued{header: protocol.DescribeHeader(msg), message: msg})
}

// DequeuePending pops the front of the pending FIFO.
func (r *RemotePeer) DequeuePending() (protocol.MessageHeader, protocol.Message, bool) {
	if len(r.pending) == 0 {
		return protocol.MessageHeader{}, nil, false
	}
	head := r.pending[0]
	r.pending = r.pending[1:]
	return head.header, head.message, true
}

// RequeuePending pushes (header, message) back onto the FRONT of the
// pending FIFO — used when a message almost fit but the packet ran out
// of room, so it is retried first on the next tick (§8 boundary
// behavior: "the overflow message remains enqueued for the next tick").
func (r *RemotePeer) RequeuePending(header protocol.MessageHeader, msg protocol.Message) {
	r.pending = append([]queued{{header: header, message: msg}}, r.pending...)
}

// DequeueReliableForRetransmit pops one entry from the retransmit queue,
// the "drain first one reliable from the retransmit queue" step of
// packet assembly (§4.2, §2).
func (r *RemotePeer) DequeueReliableForRetransmit() (protocol.MessageHeader, protocol.Message, bool) {
	if len(r.reliable) == 0 {
		return protocol.MessageHeader{}, nil, false
	}
	head := r.reliable[0]
	r.reliable = r.reliable[1:]
	return head.header, head.message, true
}

// BackupReliable re-enqueues a just-sent reliable message onto the back
// of the retransmit queue and records its send timestamp, so a future
// ack can be matched against it (§4.2 "after transmission").
func (r *RemotePeer) BackupReliable(header protocol.MessageHeader, msg protocol.Message, now uint64) {
	r.reliable = append(r.reliable, queued{header: header, message: msg})
	r.seqtrackSent[header.Sequence] = now
}

// PutBackReliable restores (header, msg) to the FRONT of the retransmit
// queue without touching seqtrackSent, for the rare case where a
// dequeued retransmit candidate didn't fit in the packet being built
// this tick (§4.2 step 3's overflow rule applied to retransmits).
func (r *RemotePeer) PutBackReliable(header protocol.MessageHeader, msg protocol.Message) {
	r.reliable = append([]queued{{header: header, message: msg}}, r.reliable...)
}

// ObserveInbound applies the sequence-engine decision from §4.3 to an
// inbound message header and reports whether the message should be
// processed (true) or dropped (false) as a duplicate / stale-ordered
// message. Unsequenced messages always process.
func (r *RemotePeer) ObserveInbound(h protocol.MessageHeader) bool {
	if h.IsUnsequenced() {
		return true
	}

	s := h.Sequence
	if IsSequenceNewer(s, r.sequenceIn) {
		if s < r.sequenceIn {
			r.sequenceRound++
		}
		r.sequenceIn = s
		r.seqtrackReceived[s] = r.sequenceRound
		return true
	}

	if h.IsOrdered() && !h.IsReliable() {
		return false
	}

	var expectedRound uint32
	if s <= r.sequenceIn {
		expectedRound = r.sequenceRound
	} else {
		expectedRound = r.sequenceRound - 1
	}
	if round, ok := r.seqtrackReceived[s]; ok && round == expectedRound {
		return false
	}
	r.seqtrackReceived[s] = expectedRound
	return true
}

// AckBits generates the 32-bit selective-ack bitfield relative to
// sequenceIn (§4.3 "Generating ackbits").
func (r *RemotePeer) AckBits() uint32 {
	var bits uint32
	base := r.sequenceIn - 1
	for i := uint(0); i < 32; i++ {
		seq := base - uint16(i)
		var expectedRound uint32
		if seq > base {
			expectedRound = r.sequenceRound - 1
		} else {
			expectedRound = r.sequenceRound
		}
		if round, ok := r.seqtrackReceived[seq]; ok && round == expectedRound {
			bits |= 1 << i
		}
	}
	return bits
}

// ProcessAcks applies an inbound (ackseq, ackbits) pair to the
// retransmit queue: the ack-sequence itself plus the 32 bits described
// relative to it are each checked against reliableMessages, removed on
// a match, and sampled for RTT (§4.3 "Processing inbound acks").
func (r *RemotePeer) ProcessAcks(ackseq uint16, ackbits uint32, now uint64) {
	r.ackSequence(ackseq, now)
	for i := uint(0); i < 32; i++ {
		if ackbits&(1<<i) == 0 {
			continue
		}
		seq := ackseq - 1 - uint16(i)
		r.ackSequence(seq, now)
	}
	r.lastAckTime = now
}

func (r *RemotePeer) ackSequence(seq uint16, now uint64) {
	idx := -1
	for i, q := range r.reliable {
		if q.header.Sequence == seq {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	if sentAt, ok := r.seqtrackSent[seq]; ok {
		r.updateRTT(now - sentAt)
		delete(r.seqtrackSent, seq)
	}
	r.reliable = append(r.reliable[:idx], r.reliable[idx+1:]...)
}

// updateRTT applies the exponential smoothing formula from §4.3:
// 90% weight to the running estimate, 10% to the new sample, expressed
// in integer arithmetic to avoid floating point drift across millions
// of samples over a long session.
func (r *RemotePeer) updateRTT(sample uint64) {
	if r.rtt == 0 {
		r.rtt = sample
	} else {
		r.rtt = (r.rtt*90 + sample*10) / 100
	}
	r.ping = sample / 2
}

// MillisecondsSinceLastMessage returns how long it has been since any
// inbound message was received from this peer.
func (r *RemotePeer) MillisecondsSinceLastMessage(now uint64) uint64 {
	return now - r.lastMessageTime
}

// MillisecondsSinceLastAck returns how long it has been since an ack was
// last processed from this peer.
func (r *RemotePeer) MillisecondsSinceLastAck(now uint64) uint64 {
	return now - r.lastAckTime
}

// MillisecondsSinceLastSend returns how long it has been since a packet
// was last sent to this peer.
func (r *RemotePeer) MillisecondsSinceLastSend(now uint64) uint64 {
	return now - r.lastSend
}
