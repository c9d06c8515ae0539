//go:build !windows

package transport

import (
	"net"

	"golang.org/x/sys/unix"
)

// setBroadcast toggles SO_BROADCAST on the socket underlying conn.
//
// net.UDPConn exposes no portable broadcast toggle, so this drops to
// the raw socket option via SyscallConn, the same low-level sockopt
// access pattern the rest of the retrieval pack reaches for (the
// mikioh/tcpopt-based packages wire up analogous options through
// golang.org/x/sys rather than hand-rolled syscall numbers).
func setBroadcast(conn *net.UDPConn, allow bool) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		value := 0
		if allow {
			value = 1
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, value)
	})
	if err != nil {
		return err
	}
	return sockErr
}
