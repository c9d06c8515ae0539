//go:build windows

package transport

import "net"

// setBroadcast is not implemented on Windows; this adapter targets the
// POSIX path the rest of the retrieval pack's socket tooling targets.
func setBroadcast(conn *net.UDPConn, allow bool) error {
	return nil
}
