package types

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

/*
 * Addresses coming out of the kernel are tagged with an address family
 * instead of carrying their own length the way net.IP does. We keep that
 * tag around explicitly so that decoding paths can stay family-agnostic
 * and so that only the two valid shapes (4 or 16 bytes) are representable.
 */

// InAddrAny holds either a 4-byte IPv4 or a 16-byte IPv6 address in network
// byte order together with the address family identifying which one it is.
// The zero value is not a valid address; use the per-family constructors.
type InAddrAny struct {
	family uint8
	raw    [16]byte
}

// NewInAddr4 builds an AF_INET tagged address.
func NewInAddr4(addr [4]byte) InAddrAny {
	a := InAddrAny{family: unix.AF_INET}
	copy(a.raw[:4], addr[:])
	return a
}

// NewInAddr6 builds an AF_INET6 tagged address.
func NewInAddr6(addr [16]byte) InAddrAny {
	return InAddrAny{family: unix.AF_INET6, raw: addr}
}

// InAddrFromAddr tags a netip.Addr with the matching family. 4-in-6 mapped
// addresses are unmapped first so the tag always matches the stored bytes.
func InAddrFromAddr(addr netip.Addr) (InAddrAny, error) {
	addr = addr.Unmap()
	switch {
	case addr.Is4():
		return NewInAddr4(addr.As4()), nil
	case addr.Is6():
		return NewInAddr6(addr.As16()), nil
	}
	return InAddrAny{}, fmt.Errorf("address %q has no family", addr)
}

// Family returns the AF_INET or AF_INET6 tag, or 0 for the zero value.
func (a InAddrAny) Family() uint8 {
	return a.family
}

func (a InAddrAny) Is4() bool {
	return a.family == unix.AF_INET
}

func (a InAddrAny) Is6() bool {
	return a.family == unix.AF_INET6
}

// IsValid tells apart real addresses from the zero value.
func (a InAddrAny) IsValid() bool {
	return a.family == unix.AF_INET || a.family == unix.AF_INET6
}

// Addr converts to a netip.Addr for display and comparison.
func (a InAddrAny) Addr() netip.Addr {
	switch a.family {
	case unix.AF_INET:
		return netip.AddrFrom4([4]byte(a.raw[:4]))
	case unix.AF_INET6:
		return netip.AddrFrom16(a.raw)
	}
	return netip.Addr{}
}

func (a InAddrAny) String() string {
	if !a.IsValid() {
		return "invalid"
	}
	return a.Addr().String()
}

// IfAddr is an interface address: a tagged address plus its prefix length.
type IfAddr struct {
	Addr      InAddrAny
	PrefixLen uint8
}

// NewIfAddr pairs an address with a prefix length, rejecting lengths that
// exceed the width of the address family (32 for v4, 128 for v6). The
// kernel never hands out such pairs; getting one means the message was
// mangled somewhere along the way.
func NewIfAddr(addr InAddrAny, prefixLen uint8) (IfAddr, error) {
	var max uint8
	switch addr.Family() {
	case unix.AF_INET:
		max = 32
	case unix.AF_INET6:
		max = 128
	default:
		return IfAddr{}, fmt.Errorf("cannot prefix an invalid address")
	}
	if prefixLen > max {
		return IfAddr{}, fmt.Errorf("prefix length %d out of range for %s", prefixLen, addr)
	}
	return IfAddr{Addr: addr, PrefixLen: prefixLen}, nil
}

// Prefix converts to a netip.Prefix.
func (i IfAddr) Prefix() netip.Prefix {
	return netip.PrefixFrom(i.Addr.Addr(), int(i.PrefixLen))
}

func (i IfAddr) String() string {
	return fmt.Sprintf("%s/%d", i.Addr, i.PrefixLen)
}
