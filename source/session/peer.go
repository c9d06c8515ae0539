package session

import (
	"fmt"
	"net"

	"netrelay-go/internal/xclock"
	"netrelay-go/internal/xrand"
	"netrelay-go/pkg/logger"
	"netrelay-go/pkg/metrics"
	"netrelay-go/source/protocol"
	"netrelay-go/source/transport"
)

// Callbacks are the events the embedding application receives from the
// Peer orchestrator (§4.5 "Callbacks the embedder must implement").
type Callbacks interface {
	OnConnection(peerID uint8)
	OnDisconnection(peerID uint8)
	// OnGameMessage forwards any message the core itself doesn't fully
	// consume as part of the session protocol (PlayerJoined/PlayerLeft,
	// Test, and any future application message). peerID identifies the
	// sender; the distilled spec names the callback OnGameMessage(msg)
	// but every embedder needs to know who sent it, so that's added here.
	OnGameMessage(peerID uint8, msg protocol.Message)
}

// NoopCallbacks is embeddable by callers that only care about a subset
// of events.
type NoopCallbacks struct{}

func (NoopCallbacks) OnConnection(uint8)               {}
func (NoopCallbacks) OnDisconnection(uint8)            {}
func (NoopCallbacks) OnGameMessage(uint8, protocol.Message) {}

// DiscoveredServer is one DiscoveryAnswer a Searching client has
// collected (§4.5 Discovery).
type DiscoveredServer struct {
	Address    protocol.Address
	GameID     uint32
	FreeSlots  uint8
	TotalSlots uint8
}

// Peer is the single long-lived orchestrator object described in §2: it
// owns the UDP endpoint, the RemotePeer table and its address index, the
// MTU-sized scratch buffers, and the LatencyFaker/FastRand pair used for
// test-only loss and latency injection. Peer does not own the
// application; RemotePeer does not own Peer (Design Notes, "Pointer
// graphs & back-references").
//
// Not safe for concurrent use — the whole core is driven from one
// UpdateNetwork call per tick (§5).
type Peer struct {
	cfg       Config
	clock     xclock.Clock
	sock      transport.Socket
	metrics   *metrics.Metrics
	callbacks Callbacks

	isServer   bool
	state      State
	assignedID uint8

	peers     map[uint8]*RemotePeer
	addrIndex map[protocol.Address]uint8

	sendBuf [protocol.MaxDatagramSize]byte
	recvBuf [protocol.MaxDatagramSize]byte

	latencyFaker *LatencyFaker
	rng          *xrand.FastRand
	fakeLoss     float32

	lastBroadcast uint64
	discovered    []DiscoveredServer
}

// NewPeer constructs a Peer. sock is the UDP adapter (§4.6); a fake
// implementing transport.Socket can be substituted in tests. cb may be
// nil, in which case all callbacks are no-ops.
func NewPeer(cfg Config, clock xclock.Clock, sock transport.Socket, m *metrics.Metrics, cb Callbacks) *Peer {
	if cb == nil {
		cb = NoopCallbacks{}
	}
	return &Peer{
		cfg:          cfg,
		clock:        clock,
		sock:         sock,
		metrics:      m,
		callbacks:    cb,
		state:        Disconnected,
		assignedID:   UnassignedID,
		peers:        make(map[uint8]*RemotePeer),
		addrIndex:    make(map[protocol.Address]uint8),
		latencyFaker: NewLatencyFaker(),
		rng:          xrand.New(uint32(clock.NowMillis())*2 + 1),
	}
}

// NetworkState returns the local peer's own state (§3, §4.5).
func (p *Peer) NetworkState() State { return p.state }

// AssignedID returns the ID the server gave this client, or
// UnassignedID before the handshake completes (§3).
func (p *Peer) AssignedID() uint8 { return p.assignedID }

// RTT returns the smoothed round-trip time for peerID, or 0 if unknown.
func (p *Peer) RTT(peerID uint8) uint64 {
	if rp, ok := p.peers[peerID]; ok {
		return rp.RTT()
	}
	return 0
}

// SetFakePacketLoss sets the probability, in [0,1], that an outbound
// datagram is silently dropped before transmission (§8 boundary
// behaviors). 0 is a no-op; 1.0 drops every datagram.
func (p *Peer) SetFakePacketLoss(probability float32) { p.fakeLoss = probability }

// SetFakeLatency sets the artificial delay applied to inbound messages
// via the LatencyFaker (§4.4).
func (p *Peer) SetFakeLatency(millis uint64) { p.latencyFaker.SetLatency(millis) }

// CurrentLatency returns the currently configured artificial latency.
func (p *Peer) CurrentLatency() uint64 { return p.latencyFaker.Latency() }

// SetServerMode binds the socket on cfg.ServerPort and switches this
// Peer into ServerMode, accepting inbound ConnectionRequests (§4.5).
func (p *Peer) SetServerMode() error {
	p.isServer = true
	if err := p.sock.Bind(&net.UDPAddr{Port: int(p.cfg.ServerPort)}); err != nil {
		return fmt.Errorf("session: bind server port %d: %w", p.cfg.ServerPort, err)
	}
	p.state = ServerMode
	logger.Info("peer: listening as server on port %d (max peers %d)", p.cfg.ServerPort, p.cfg.MaxPeers)
	return nil
}

// FindServers switches a client into Searching, broadcasting
// DiscoveryRequest every BroadcastProbeMillis (§4.5). It is a
// programmer error to call this on a server.
func (p *Peer) FindServers() error {
	if p.isServer {
		return fmt.Errorf("session: FindServers is a client-only operation")
	}
	if err := p.sock.AllowBroadcast(true); err != nil {
		return fmt.Errorf("session: enable broadcast: %w", err)
	}
	p.discovered = p.discovered[:0]
	p.state = Searching
	p.lastBroadcast = 0
	return nil
}

// DiscoveredServers returns the servers discovered so far while
// Searching.
func (p *Peer) DiscoveredServers() []DiscoveredServer {
	out := make([]DiscoveredServer, len(p.discovered))
	copy(out, p.discovered)
	return out
}

// ConnectTo begins the handshake with a server at host:port (§4.5 step
// 1). The server is tracked under RemotePeer ID 0 (ServerPeerID) until
// the handshake assigns this client its own ID.
func (p *Peer) ConnectTo(host string, port uint16) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("session: resolve %s:%d: %w", host, port, err)
	}
	addr := protocol.AddressFromUDP(udpAddr)
	now := p.clock.NowMillis()

	rp := NewRemotePeer(addr, now)
	rp.AssignedID = ServerPeerID
	rp.State = Connecting
	p.peers[ServerPeerID] = rp
	p.addrIndex[addr] = ServerPeerID
	p.state = Connecting
	p.assignedID = UnassignedID

	rp.Enqueue(&protocol.ConnectionRequest{GameID: MagicGameID})
	logger.Info("peer: connection request sent to %s", addr)
	return nil
}

// SendTo enqueues msg to peerID's pending queue. Returns false if
// peerID is not a known RemotePeer.
func (p *Peer) SendTo(peerID uint8, msg protocol.Message) bool {
	rp, ok := p.peers[peerID]
	if !ok {
		return false
	}
	rp.Enqueue(msg)
	return true
}

// SendToAll enqueues msg to every peer in the table, whatever its state
// (§4.5's SendToAll).
// With exactly one peer the message is handed over directly; with more
// than one, each peer gets its own Clone so mutating one instance after
// send can never affect another peer's copy (Design Notes item 6's fix:
// no move-from-on-last-iteration hazard, because Go has no implicit
// move semantics to misuse in the first place).
func (p *Peer) SendToAll(msg protocol.Message) {
	if len(p.peers) == 1 {
		for _, rp := range p.peers {
			rp.Enqueue(msg)
		}
		return
	}
	for _, rp := range p.peers {
		rp.Enqueue(msg.Clone())
	}
}

// DisconnectPeer issues the redundant DisconnectionRequest burst (5
// copies, §4.5's default amount) and marks peerID Disconnected.
func (p *Peer) DisconnectPeer(peerID uint8) { p.disconnectPeer(peerID, 5) }

// DisconnectPeerN is DisconnectPeer with an explicit redundancy count.
func (p *Peer) DisconnectPeerN(peerID uint8, amount int) { p.disconnectPeer(peerID, amount) }

func (p *Peer) disconnectPeer(peerID uint8, amount int) {
	rp, ok := p.peers[peerID]
	if !ok || rp.State == Disconnected {
		return
	}
	for i := 0; i < amount; i++ {
		rp.Enqueue(&protocol.DisconnectionRequest{GameID: MagicGameID})
	}
	rp.State = Disconnected
	p.callbacks.OnDisconnection(peerID)
	logger.Info("peer: disconnecting peer %d", peerID)
}

// DisconnectAll disconnects every known peer. If this Peer is itself a
// client, its own local state resets to Disconnected with AssignedID
// cleared (§4.5).
func (p *Peer) DisconnectAll() {
	for id := range p.peers {
		p.disconnectPeer(id, 5)
	}
	if !p.isServer {
		p.state = Disconnected
		p.assignedID = UnassignedID
	}
}

// Close releases the underlying socket.
func (p *Peer) Close() error { return p.sock.Close() }

// UpdateNetwork drives one tick of the core: discovery broadcast (if
// Searching), receive, peer bookkeeping (timeouts/keepalive/latency
// flush), and send (§2's three-step data flow, §5's single entry
// point). The embedder calls this at a chosen cadence; the core itself
// never blocks or sleeps.
func (p *Peer) UpdateNetwork() error {
	now := p.clock.NowMillis()

	if p.state == Searching {
		p.driveSearching(now)
	}
	if err := p.receive(now); err != nil {
		return err
	}
	p.updatePeers(now)
	p.send(now)
	return nil
}

func (p *Peer) driveSearching(now uint64) {
	if p.lastBroadcast != 0 && now-p.lastBroadcast < p.cfg.BroadcastProbeMillis {
		return
	}
	broadcastAddr, err := protocol.NewAddress("255.255.255.255", p.cfg.ServerPort, false)
	if err != nil {
		logger.Error("peer: building broadcast address: %v", err)
		return
	}
	p.sendRaw(broadcastAddr, &protocol.DiscoveryRequest{GameID: MagicGameID})
	p.lastBroadcast = now
}

// sendRaw transmits a single system message outside of any RemotePeer's
// sequence/ack bookkeeping — used for Discovery, which by design
// happens before either side has allocated a RemotePeer for the other
// (§4.5 Discovery).
func (p *Peer) sendRaw(addr protocol.Address, msg protocol.Message) {
	if p.shouldDropForFakeLoss() {
		return
	}
	packet := protocol.NewPacket()
	header := protocol.DescribeHeader(msg)
	if !packet.AddMessage(msg, header) {
		logger.Error("peer: raw message %d too large to send", msg.ID())
		return
	}
	n, ok := packet.ToBuffer(p.sendBuf[:])
	if !ok {
		logger.Error("peer: failed to serialize raw message %d", msg.ID())
		return
	}
	if _, err := p.sock.Send(addr.UDPAddr(), p.sendBuf[:n]); err != nil {
		logger.Error("peer: send to %s: %v", addr, err)
		return
	}
	if p.metrics != nil {
		p.metrics.PacketsSent.Inc()
	}
}

// receive drains the socket, parsing every pending datagram into a
// PacketHeader and its (MessageHeader, body) entries, applying piggy-
// backed acks against the sender-side reliable queue, and routing each
// message to immediate processing or the LatencyFaker (§2 item 1, §7).
func (p *Peer) receive(now uint64) error {
	for {
		n, addr, err := p.sock.Recv(p.recvBuf[:])
		if err != nil {
			// Not would-block: §7 says log and abandon this tick's
			// recv work, the higher-level retransmit logic covers
			// reliable traffic regardless.
			logger.Error("peer: recv: %v", err)
			return nil
		}
		if n == 0 {
			return nil
		}

		raw := p.recvBuf[:n]
		if len(raw) < protocol.PacketHeaderSize {
			logger.Warn("peer: truncated datagram from %s (%d bytes)", addr, n)
			continue
		}

		header, entries, stats, ok := protocol.ParsePacket(raw)
		if !ok {
			logger.Warn("peer: checksum/parse failure from %s", addr)
			if p.metrics != nil {
				p.metrics.ChecksumFailures.Inc()
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.PacketsReceived.Inc()
			for i := 0; i < stats.UnknownID; i++ {
				p.metrics.MessagesDropped.WithLabelValues(metrics.DropReasonUnknownID).Inc()
			}
			for i := 0; i < stats.BadDeserialize; i++ {
				p.metrics.MessagesDropped.WithLabelValues(metrics.DropReasonBadDeserialize).Inc()
			}
		}

		srcAddr := protocol.AddressFromUDP(addr)
		var rp *RemotePeer
		if id, known := p.addrIndex[srcAddr]; known {
			rp = p.peers[id]
		}
		if rp != nil {
			rp.TouchReceived(now)
			unacked := rp.ReliableCount()
			rp.ProcessAcks(header.AckSeq, header.AckBits, now)
			if p.metrics != nil {
				p.metrics.AcksProcessed.Add(float64(unacked - rp.ReliableCount()))
				if rtt := rp.RTT(); rtt > 0 {
					p.metrics.RTTMilliseconds.Observe(float64(rtt))
				}
			}
		}

		for _, e := range entries {
			p.routeInbound(rp, srcAddr, e, now)
		}
	}
}

func (p *Peer) routeInbound(rp *RemotePeer, srcAddr protocol.Address, e protocol.ParsedEntry, now uint64) {
	if rp == nil {
		p.handleUnrouted(srcAddr, e.Message, now)
		return
	}

	if !rp.ObserveInbound(e.Header) {
		if p.metrics != nil {
			reason := metrics.DropReasonDuplicate
			if e.Header.IsOrdered() && !e.Header.IsReliable() {
				reason = metrics.DropReasonStaleOrdered
			}
			p.metrics.MessagesDropped.WithLabelValues(reason).Inc()
		}
		return
	}

	if p.latencyFaker.Latency() > 0 {
		p.latencyFaker.Add(e.Header, e.Message, srcAddr, now)
		return
	}
	p.processMessage(rp, e.Message, now)
}

// handleUnrouted processes messages that arrive from an address with no
// registered RemotePeer: only ConnectionRequest (new connections) and
// the Discovery pair are legal here; anything else is a handshake
// policy violation (§7).
func (p *Peer) handleUnrouted(addr protocol.Address, msg protocol.Message, now uint64) {
	switch m := msg.(type) {
	case *protocol.ConnectionRequest:
		p.handleConnectionRequest(addr, m, now)
	case *protocol.DiscoveryRequest:
		p.handleDiscoveryRequest(addr, m)
	case *protocol.DiscoveryAnswer:
		p.handleDiscoveryAnswer(addr, m)
	default:
		logger.Warn("peer: system message %d from unknown address %s, ignoring", msg.ID(), addr)
		if p.metrics != nil {
			p.metrics.MessagesDropped.WithLabelValues(metrics.DropReasonPolicy).Inc()
		}
	}
}

func (p *Peer) handleConnectionRequest(addr protocol.Address, m *protocol.ConnectionRequest, now uint64) {
	if !p.isServer {
		logger.Warn("peer: client received ConnectionRequest from %s, ignoring", addr)
		return
	}
	if m.GameID != MagicGameID {
		logger.Warn("peer: ConnectionRequest from %s with wrong gameID, ignoring", addr)
		return
	}

	id, ok := p.allocateID()
	if !ok {
		logger.Warn("peer: server full, rejecting %s", addr)
		p.sendRaw(addr, &protocol.ConnectionAnswer{AssignedID: UnassignedID, Challenge: 0})
		if p.metrics != nil {
			p.metrics.MessagesDropped.WithLabelValues("server_full").Inc()
		}
		return
	}

	rp := NewRemotePeer(addr, now)
	rp.AssignedID = id
	rp.State = Connecting
	p.peers[id] = rp
	p.addrIndex[addr] = id

	rp.Enqueue(&protocol.ConnectionAnswer{AssignedID: id, Challenge: ChallengeSeed})
	logger.Info("peer: assigned id %d to %s, awaiting challenge response", id, addr)
}

func (p *Peer) handleDiscoveryRequest(addr protocol.Address, m *protocol.DiscoveryRequest) {
	if !p.isServer || m.GameID != MagicGameID {
		return
	}
	p.sendRaw(addr, &protocol.DiscoveryAnswer{
		GameID:     MagicGameID,
		FreeSlots:  uint8(p.freeSlotCount()),
		TotalSlots: uint8(p.cfg.MaxPeers),
	})
}

func (p *Peer) handleDiscoveryAnswer(addr protocol.Address, m *protocol.DiscoveryAnswer) {
	if p.isServer || m.GameID != MagicGameID {
		return
	}
	p.discovered = append(p.discovered, DiscoveredServer{
		Address: addr, GameID: m.GameID, FreeSlots: m.FreeSlots, TotalSlots: m.TotalSlots,
	})
}

// processMessage handles a message already routed to a known
// RemotePeer, whether immediately or after a LatencyFaker delay.
func (p *Peer) processMessage(rp *RemotePeer, msg protocol.Message, now uint64) {
	switch m := msg.(type) {
	case *protocol.ConnectionRequest:
		logger.Warn("peer: ConnectionRequest from known peer %d, ignoring", rp.AssignedID)
	case *protocol.ConnectionAnswer:
		p.handleConnectionAnswer(rp, m)
	case *protocol.ConnectionSuccess:
		p.handleConnectionSuccess(rp)
	case *protocol.KeepAlive:
		p.handleKeepAlive(rp, m, now)
	case *protocol.DisconnectionRequest:
		p.handleDisconnectionRequest(rp)
	case *protocol.DiscoveryRequest:
		// Arrives here when the sender's address already maps to a
		// RemotePeer (directly or after a LatencyFaker delay) — defer to
		// the same handler used for the unrouted case.
		p.handleDiscoveryRequest(rp.Address, m)
	case *protocol.DiscoveryAnswer:
		p.handleDiscoveryAnswer(rp.Address, m)
	default:
		p.callbacks.OnGameMessage(rp.AssignedID, m)
	}
}

func (p *Peer) handleConnectionAnswer(rp *RemotePeer, m *protocol.ConnectionAnswer) {
	if p.isServer {
		if rp.State != Connecting {
			logger.Warn("peer: ConnectionAnswer from non-Connecting peer %d, ignoring", rp.AssignedID)
			return
		}
		expected := ChallengeSeed ^ MagicGameID
		if m.AssignedID != rp.AssignedID || m.Challenge != expected {
			logger.Warn("peer: handshake challenge failed for peer %d", rp.AssignedID)
			p.disconnectPeer(rp.AssignedID, 5)
			return
		}
		rp.Enqueue(&protocol.ConnectionSuccess{GameID: MagicGameID})
		rp.State = Connected
		if p.metrics != nil {
			p.metrics.StateTransitions.WithLabelValues("Connecting", "Connected").Inc()
			p.metrics.ConnectedPeers.Inc()
		}
		p.callbacks.OnConnection(rp.AssignedID)
		logger.Info("peer: peer %d connected", rp.AssignedID)
		return
	}

	// Client side: first ConnectionAnswer carries our assigned ID.
	if p.assignedID != UnassignedID {
		logger.Warn("peer: unexpected second ConnectionAnswer, ignoring")
		return
	}
	if m.AssignedID == UnassignedID {
		logger.Warn("peer: server full, connection refused")
		rp.State = Disconnected
		p.state = Disconnected
		return
	}
	p.assignedID = m.AssignedID
	rp.Enqueue(&protocol.ConnectionAnswer{AssignedID: m.AssignedID, Challenge: m.Challenge ^ MagicGameID})
}

func (p *Peer) handleConnectionSuccess(rp *RemotePeer) {
	if p.isServer || rp.State != Connecting {
		logger.Warn("peer: unexpected ConnectionSuccess, ignoring")
		return
	}
	rp.State = Connected
	p.state = Connected
	if p.metrics != nil {
		p.metrics.StateTransitions.WithLabelValues("Connecting", "Connected").Inc()
		p.metrics.ConnectedPeers.Inc()
	}
	p.callbacks.OnConnection(p.assignedID)
	logger.Success("peer: handshake complete, assigned id %d", p.assignedID)
}

func (p *Peer) handleKeepAlive(rp *RemotePeer, m *protocol.KeepAlive, now uint64) {
	myRole := boolToByte(p.isServer)
	if m.ServerSent == myRole {
		sample := now - m.Timestamp
		rp.updateRTT(sample)
		rp.lastAckTime = now
		return
	}
	// Foreign probe: echo ServerSent unchanged so it still matches the
	// sender's own role when it comes back to them (§4.5's KeepAlive
	// semantics; original_source/quicknet_peer.cpp:884).
	rp.Enqueue(&protocol.KeepAlive{ServerSent: m.ServerSent, Timestamp: m.Timestamp})
}

func (p *Peer) handleDisconnectionRequest(rp *RemotePeer) {
	if rp.State == Disconnected {
		return
	}
	rp.State = Disconnected
	p.callbacks.OnDisconnection(rp.AssignedID)
	logger.Info("peer: peer %d requested disconnection", rp.AssignedID)
}

// updatePeers sweeps timed-out peers, emits KeepAlive for peers whose
// ack-silence exceeds the threshold, flushes LatencyFaker-released
// messages, and removes peers marked Disconnected (§2 item 2, §3's
// lifecycle invariant).
func (p *Peer) updatePeers(now uint64) {
	for id, rp := range p.peers {
		if rp.State == Disconnected {
			continue
		}
		if rp.MillisecondsSinceLastMessage(now) > p.cfg.ConnectionTimeoutMillis {
			rp.State = Disconnected
			p.callbacks.OnDisconnection(id)
			logger.Warn("peer: peer %d timed out", id)
			continue
		}
		if (rp.State == Connected) && rp.MillisecondsSinceLastAck(now) > p.cfg.KeepAliveMillis {
			rp.Enqueue(&protocol.KeepAlive{ServerSent: boolToByte(p.isServer), Timestamp: now})
		}
	}

	for {
		entry, ok := p.latencyFaker.GetReady(now)
		if !ok {
			break
		}
		id, found := p.addrIndex[entry.Source]
		if !found {
			continue
		}
		rp := p.peers[id]
		if rp == nil {
			continue
		}
		p.processMessage(rp, entry.Message, now)
	}

	for id, rp := range p.peers {
		if rp.State != Disconnected {
			continue
		}
		// A just-disconnected peer may still have the redundant
		// DisconnectionRequest burst sitting in its pending queue; give
		// send() a chance to flush it before the slot is torn down.
		if rp.PendingCount() > 0 {
			continue
		}
		delete(p.peers, id)
		delete(p.addrIndex, rp.Address)
		if p.metrics != nil {
			p.metrics.ConnectedPeers.Set(float64(p.connectedCount()))
		}
	}
}

// send visits every peer whose per-peer send interval has elapsed,
// builds one packet by draining one reliable retransmit candidate and
// then as many pending messages as fit, stamps sequences, serializes,
// computes the CRC, and transmits (§4.2).
func (p *Peer) send(now uint64) {
	for _, rp := range p.peers {
		if rp.State == Disconnected && rp.PendingCount() == 0 && rp.ReliableCount() == 0 {
			continue
		}
		if rp.LastSend() != 0 && now-rp.LastSend() < p.cfg.SendIntervalMillis {
			continue
		}

		packet := protocol.NewPacket()
		packet.Header = protocol.PacketHeader{AckSeq: rp.SequenceIn(), AckBits: rp.AckBits()}

		var backup []queued
		if h, m, ok := rp.DequeueReliableForRetransmit(); ok {
			if packet.AddMessage(m, h) {
				backup = append(backup, queued{header: h, message: m})
			} else {
				rp.PutBackReliable(h, m)
			}
		}

		for {
			h, m, ok := rp.DequeuePending()
			if !ok {
				break
			}
			if h.Sequence == 0 {
				h = protocol.DescribeHeader(m)
				h.Sequence = rp.NextOutboundSequence()
			}
			if !packet.AddMessage(m, h) {
				rp.RequeuePending(h, m)
				break
			}
			if h.IsReliable() {
				backup = append(backup, queued{header: h, message: m})
			}
		}

		if !p.shouldDropForFakeLoss() {
			n, ok := packet.ToBuffer(p.sendBuf[:])
			if ok {
				if _, err := p.sock.Send(rp.Address.UDPAddr(), p.sendBuf[:n]); err != nil {
					logger.Error("peer: send to %s: %v", rp.Address, err)
				} else if p.metrics != nil {
					p.metrics.PacketsSent.Inc()
				}
			}
		}

		for _, b := range backup {
			rp.BackupReliable(b.header, b.message, now)
		}
		if p.metrics != nil {
			p.metrics.ReliableQueueDepth.Set(float64(p.reliableQueueDepth()))
		}
		rp.TouchSend(now)
	}
}

func (p *Peer) shouldDropForFakeLoss() bool {
	if p.fakeLoss <= 0 {
		return false
	}
	return p.rng.Float(0, 1) <= p.fakeLoss
}

func (p *Peer) allocateID() (uint8, bool) {
	for id := 1; id <= p.cfg.MaxPeers; id++ {
		if _, used := p.peers[uint8(id)]; !used {
			return uint8(id), true
		}
	}
	return UnassignedID, false
}

func (p *Peer) freeSlotCount() int {
	free := p.cfg.MaxPeers - len(p.peers)
	if free < 0 {
		return 0
	}
	return free
}

func (p *Peer) connectedCount() int {
	n := 0
	for _, rp := range p.peers {
		if rp.State == Connected {
			n++
		}
	}
	return n
}

func (p *Peer) reliableQueueDepth() int {
	n := 0
	for _, rp := range p.peers {
		n += rp.ReliableCount()
	}
	return n
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
