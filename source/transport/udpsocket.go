// Package transport provides the UDP adapter the core consumes as an
// external collaborator (§1, §4.6): a nonblocking datagram endpoint
// whose Recv reports "no data" the same way for both an empty datagram
// and a would-block condition.
package transport

import (
	"errors"
	"net"
	"os"
	"time"
)

const (
	recvBufferSize = 256 * 1024
	sendBufferSize = 256 * 1024
)

// Socket is the contract the session/peer packages consume. It exists
// so tests can substitute an in-memory fake instead of a real kernel
// socket.
type Socket interface {
	Bind(addr *net.UDPAddr) error
	Send(addr *net.UDPAddr, data []byte) (int, error)
	// Recv returns (0, nil, nil) when there is no datagram to read
	// right now — both "would block" and "zero bytes" collapse to this
	// same not-an-error result, per §4.6 and §7.
	Recv(buf []byte) (int, *net.UDPAddr, error)
	SetTimeout(timeout time.Duration) error
	AllowBroadcast(allow bool) error
	Close() error
}

// UDPSocket is the real, nonblocking implementation, grounded on the
// reference's UDPSocket (quicknet_udpsocket.cpp): larger-than-default
// send/receive buffers and a Recv contract that treats "no data right
// now" as success. SO_REUSEADDR is not set.
//
// Go has no portable nonblocking recvfrom primitive exposed through
// net.UDPConn; the same effect is achieved with a one-millisecond read
// deadline set just before every Recv call (a deadline that has already
// passed would fail the read without looking at the queue), so a call
// returns a queued datagram at once, or times out after at most about a
// millisecond, which Recv folds into "no data, not an error" like the
// reference's EWOULDBLOCK/EAGAIN handling.
type UDPSocket struct {
	conn *net.UDPConn
}

// Listen creates a bound, nonblocking UDP endpoint. Pass nil for addr to
// let the OS pick an ephemeral port (client mode).
func Listen(addr *net.UDPAddr) (*UDPSocket, error) {
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, err
	}
	s := &UDPSocket{conn: conn}
	_ = conn.SetReadBuffer(recvBufferSize)
	_ = conn.SetWriteBuffer(sendBufferSize)
	return s, nil
}

// Bind rebinds the socket to addr, closing whatever endpoint this
// UDPSocket was previously listening on (if any) — net.UDPConn has no
// rebind primitive, so this closes and re-listens. SetServerMode relies
// on this to move a client-constructed, ephemeral-port socket onto
// cfg.ServerPort (§4.5 "SetServerMode binds the socket on cfg.ServerPort").
func (s *UDPSocket) Bind(addr *net.UDPAddr) error {
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return err
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = conn
	_ = conn.SetReadBuffer(recvBufferSize)
	_ = conn.SetWriteBuffer(sendBufferSize)
	return nil
}

// Send writes data to addr. Matches the reference's "trying to send a
// buffer bigger than MTU" warning being the caller's responsibility,
// not an error here.
func (s *UDPSocket) Send(addr *net.UDPAddr, data []byte) (int, error) {
	return s.conn.WriteToUDP(data, addr)
}

// Recv reads one datagram, nonblocking. A timeout (would-block) or a
// zero-length read are both reported as (0, nil, nil) — not an error —
// matching the reference's EWOULDBLOCK/EAGAIN handling in
// quicknet_udpsocket.cpp.
func (s *UDPSocket) Recv(buf []byte) (int, *net.UDPAddr, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, nil, err
	}
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, nil
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	if n == 0 {
		return 0, nil, nil
	}
	return n, addr, nil
}

// SetTimeout sets both the read and the write deadline of the socket to
// timeout from now. Recv replaces the read deadline with its own short
// one on every call, so only writes are affected by it while Recv is in
// use. Returns nil on success — fixing the
// reference's inverted `return (result == SOCKET_ERROR)` (Design Notes
// item 2): a conforming adapter must report success when the underlying
// call succeeds, not when it fails.
func (s *UDPSocket) SetTimeout(timeout time.Duration) error {
	return s.conn.SetDeadline(time.Now().Add(timeout))
}

// AllowBroadcast toggles SO_BROADCAST. As with SetTimeout, success is
// reported as a nil error — the reference's inverted boolean convention
// is not reproduced.
func (s *UDPSocket) AllowBroadcast(allow bool) error {
	return setBroadcast(s.conn, allow)
}

// Close releases the underlying socket.
func (s *UDPSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// LocalAddr returns the bound local address.
func (s *UDPSocket) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}
