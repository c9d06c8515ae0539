package protocol

import (
	"fmt"
	"net"
)

// Address is a network endpoint, storing either a 4-byte IPv4 address or
// a 16-byte IPv6 address alongside a 16-bit port (§3 Data Model).
//
// Equality, hashing, and ordering are all defined over (IPv4 address,
// port) only — IPv6 equality is not required by the core protocol, but
// the v6 bytes are still stored correctly (unlike the reference, which
// wrote the v6 address into the v4 slot; see Design Notes item 1).
type Address struct {
	v4     [4]byte
	v6     [16]byte
	isIPv6 bool
	port   uint16
}

// NewAddress builds an Address from a textual IP and a port. isIPv6
// selects which family to parse into; the caller is expected to know
// which family a given textual address belongs to, mirroring the
// reference constructor's explicit flag.
func NewAddress(address string, port uint16, isIPv6 bool) (Address, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return Address{}, fmt.Errorf("protocol: invalid address %q", address)
	}

	a := Address{port: port, isIPv6: isIPv6}
	if isIPv6 {
		v6 := ip.To16()
		if v6 == nil {
			return Address{}, fmt.Errorf("protocol: %q is not a valid IPv6 address", address)
		}
		copy(a.v6[:], v6)
		return a, nil
	}

	v4 := ip.To4()
	if v4 == nil {
		return Address{}, fmt.Errorf("protocol: %q is not a valid IPv4 address", address)
	}
	copy(a.v4[:], v4)
	return a, nil
}

// AddressFromUDP adapts a net.UDPAddr, the concrete type returned by the
// UDP adapter (§4.6), into the protocol's own Address type.
func AddressFromUDP(addr *net.UDPAddr) Address {
	if v4 := addr.IP.To4(); v4 != nil {
		var a Address
		copy(a.v4[:], v4)
		a.port = uint16(addr.Port)
		return a
	}
	var a Address
	a.isIPv6 = true
	copy(a.v6[:], addr.IP.To16())
	a.port = uint16(addr.Port)
	return a
}

// IsIPv6 reports whether this Address holds an IPv6 payload.
func (a Address) IsIPv6() bool { return a.isIPv6 }

// Port returns the 16-bit port.
func (a Address) Port() uint16 { return a.port }

// IPv4Bytes returns the raw 4-byte IPv4 address. Meaningless if
// IsIPv6() is true.
func (a Address) IPv4Bytes() [4]byte { return a.v4 }

// UDPAddr converts back to the standard library's address type for
// handing to the UDP adapter.
func (a Address) UDPAddr() *net.UDPAddr {
	if a.isIPv6 {
		ip := make(net.IP, 16)
		copy(ip, a.v6[:])
		return &net.UDPAddr{IP: ip, Port: int(a.port)}
	}
	ip := make(net.IP, 4)
	copy(ip, a.v4[:])
	return &net.UDPAddr{IP: ip, Port: int(a.port)}
}

// Equal compares two addresses over (IPv4 address, port) only, per the
// data model: IPv6 equality is explicitly not required by the core
// protocol.
func (a Address) Equal(other Address) bool {
	return a.v4 == other.v4 && a.port == other.port
}

// Hash returns a hash over (IPv4 address, port), matching the
// reference's NetAddressHasher (sin_addr.s_addr XOR sin_port). The
// address is taken as its numeric value, so 0.0.0.1 contributes 1.
func (a Address) Hash() uint32 {
	v4 := uint32(a.v4[0])<<24 | uint32(a.v4[1])<<16 | uint32(a.v4[2])<<8 | uint32(a.v4[3])
	return v4 ^ uint32(a.port)
}

// Less gives a lexicographic ordering on (address, port), for use as a
// map/tree key comparator.
func (a Address) Less(other Address) bool {
	for i := range a.v4 {
		if a.v4[i] != other.v4[i] {
			return a.v4[i] < other.v4[i]
		}
	}
	return a.port < other.port
}

func (a Address) String() string {
	if a.isIPv6 {
		ip := net.IP(a.v6[:])
		return fmt.Sprintf("[%s]:%d", ip.String(), a.port)
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.v4[0], a.v4[1], a.v4[2], a.v4[3], a.port)
}
