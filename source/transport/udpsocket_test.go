package transport

import (
	"net"
	"testing"
	"time"
)

func TestUDPSocketSendRecvLoopback(t *testing.T) {
	server, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("server Listen failed: %v", err)
	}
	defer server.Close()

	client, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("client Listen failed: %v", err)
	}
	defer client.Close()

	payload := []byte("hello")
	if _, err := client.Send(server.LocalAddr(), payload); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// give the datagram a moment to land in the server's receive queue
	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		n, _, err := server.Recv(buf)
		if err != nil {
			t.Fatalf("Recv error: %v", err)
		}
		if n > 0 {
			if string(buf[:n]) != "hello" {
				t.Fatalf("expected 'hello', got %q", buf[:n])
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for datagram")
}

func TestUDPSocketRecvNoDataIsNotError(t *testing.T) {
	server, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer server.Close()

	buf := make([]byte, 64)
	n, addr, err := server.Recv(buf)
	if err != nil {
		t.Fatalf("expected would-block to not be an error, got %v", err)
	}
	if n != 0 || addr != nil {
		t.Fatalf("expected no data, got n=%d addr=%v", n, addr)
	}
}

func TestUDPSocketBindMovesOffEphemeralPort(t *testing.T) {
	s, err := Listen(nil)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer s.Close()

	ephemeralPort := s.LocalAddr().Port

	target := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
	if err := s.Bind(target); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if s.LocalAddr().Port == ephemeralPort {
		t.Fatal("Bind did not rebind the socket off its original ephemeral port")
	}

	client, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("client Listen failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Send(s.LocalAddr(), []byte("x")); err != nil {
		t.Fatalf("Send to rebound socket failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		n, _, err := s.Recv(buf)
		if err != nil {
			t.Fatalf("Recv error: %v", err)
		}
		if n > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for datagram on rebound socket")
}

func TestUDPSocketAllowBroadcastSucceeds(t *testing.T) {
	s, err := Listen(&net.UDPAddr{IP: net.IPv4(0, 0, 0, 0), Port: 0})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer s.Close()

	if err := s.AllowBroadcast(true); err != nil {
		t.Fatalf("expected AllowBroadcast(true) to report success via nil error, got %v", err)
	}
	if err := s.AllowBroadcast(false); err != nil {
		t.Fatalf("expected AllowBroadcast(false) to report success via nil error, got %v", err)
	}
}
