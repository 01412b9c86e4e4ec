package netlink

import (
	"fmt"
	"net"
	"slices"

	"golang.org/x/sys/unix"

	"github.com/rfrandse/phosphor-networkd/types"
)

// GatewayInfo is a default gateway learned from a route message: the
// interface the route leaves through and the next hop.
type GatewayInfo struct {
	Ifidx   uint32
	Gateway types.InAddrAny
}

// AddressInfo is an interface address learned from an RTM_NEWADDR or
// RTM_DELADDR message.
type AddressInfo struct {
	Ifidx  uint32
	Flags  uint32
	Scope  uint8
	IfAddr types.IfAddr
}

// NeighborInfo is a neighbor cache entry learned from an RTM_NEWNEIGH or
// RTM_DELNEIGH message. MAC and Addr are each optional: the kernel reports
// entries mid-resolution with only one of the two known. A nil MAC and an
// invalid Addr mean "not reported".
type NeighborInfo struct {
	Ifidx int32
	State uint16
	MAC   net.HardwareAddr
	Addr  types.InAddrAny
}

// AddrFromBuf turns an attribute payload into a tagged address according
// to the family claimed by the message header. This is the only place
// that dispatches on the address family; everything above it stays
// family-agnostic. A payload whose length doesn't match the family is a
// protocol violation, not an address of the other family.
func AddrFromBuf(family uint8, buf []byte) (types.InAddrAny, error) {
	switch family {
	case unix.AF_INET:
		if len(buf) != 4 {
			return types.InAddrAny{}, fmt.Errorf("%w: AF_INET address is %d bytes, want 4", ErrMalformed, len(buf))
		}
		return types.NewInAddr4([4]byte(buf)), nil
	case unix.AF_INET6:
		if len(buf) != 16 {
			return types.InAddrAny{}, fmt.Errorf("%w: AF_INET6 address is %d bytes, want 16", ErrMalformed, len(buf))
		}
		return types.NewInAddr6([16]byte(buf)), nil
	}
	return types.InAddrAny{}, fmt.Errorf("%w: unknown address family %d", ErrMalformed, family)
}

// GatewayFromRtm pulls a default gateway out of a route message body, if
// there is one to be had. Messages for routes outside the main table, for
// non-default routes (non-zero destination prefix) or for families other
// than AF_INET/AF_INET6 yield (nil, nil): most route churn simply isn't
// about the default gateway and that is not an error. Only a message that
// breaks the framing contract fails.
func GatewayFromRtm(msg []byte) (*GatewayInfo, error) {
	rtm, attrs, err := extractRtMsg(msg)
	if err != nil {
		return nil, err
	}
	if rtm.Table != unix.RT_TABLE_MAIN || rtm.DstLen != 0 {
		return nil, nil
	}
	switch rtm.Family {
	case unix.AF_INET, unix.AF_INET6:
	default:
		return nil, nil
	}

	var (
		ifidx *uint32
		gw    *types.InAddrAny
	)
	for !attrs.empty() {
		atyp, value, err := attrs.next()
		if err != nil {
			return nil, err
		}
		switch atyp {
		case unix.RTA_OIF:
			if len(value) != 4 {
				return nil, fmt.Errorf("%w: RTA_OIF is %d bytes, want 4", ErrMalformed, len(value))
			}
			idx := native.Uint32(value)
			ifidx = &idx
		case unix.RTA_GATEWAY:
			addr, err := AddrFromBuf(rtm.Family, value)
			if err != nil {
				return nil, err
			}
			gw = &addr
		}
	}
	// Routes without both legs carry no gateway fact. Blackhole routes,
	// for instance, have neither.
	if ifidx == nil || gw == nil {
		return nil, nil
	}
	return &GatewayInfo{Ifidx: *ifidx, Gateway: *gw}, nil
}

// AddrFromRtm decodes an address message body. The address itself is not
// optional: an ifaddrmsg without an IFA_ADDRESS attribute is malformed.
// IFA_FLAGS, when present, supersedes the header's 8-bit flags field; the
// kernel uses it to report flag bits that don't fit in the legacy field.
func AddrFromRtm(msg []byte) (AddressInfo, error) {
	ifa, attrs, err := extractIfAddrMsg(msg)
	if err != nil {
		return AddressInfo{}, err
	}

	ret := AddressInfo{
		Ifidx: ifa.Index,
		Flags: uint32(ifa.Flags),
		Scope: ifa.Scope,
	}
	var addr *types.InAddrAny
	for !attrs.empty() {
		atyp, value, err := attrs.next()
		if err != nil {
			return AddressInfo{}, err
		}
		switch atyp {
		case unix.IFA_ADDRESS:
			a, err := AddrFromBuf(ifa.Family, value)
			if err != nil {
				return AddressInfo{}, err
			}
			addr = &a
		case unix.IFA_FLAGS:
			if len(value) != 4 {
				return AddressInfo{}, fmt.Errorf("%w: IFA_FLAGS is %d bytes, want 4", ErrMalformed, len(value))
			}
			ret.Flags = native.Uint32(value)
		}
	}
	if addr == nil {
		return AddressInfo{}, fmt.Errorf("%w: address message carries no IFA_ADDRESS", ErrMalformed)
	}
	ret.IfAddr, err = types.NewIfAddr(*addr, ifa.PrefixLen)
	if err != nil {
		return AddressInfo{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ret, nil
}

// NeighFromRtm decodes a neighbor message body. Some kernels pad
// NDA_LLADDR past the 6 hardware address octets, so anything at least
// that long is accepted and the tail ignored.
func NeighFromRtm(msg []byte) (NeighborInfo, error) {
	ndm, attrs, err := extractNdMsg(msg)
	if err != nil {
		return NeighborInfo{}, err
	}

	ret := NeighborInfo{
		Ifidx: ndm.Ifindex,
		State: ndm.State,
	}
	for !attrs.empty() {
		atyp, value, err := attrs.next()
		if err != nil {
			return NeighborInfo{}, err
		}
		switch atyp {
		case unix.NDA_LLADDR:
			if len(value) < 6 {
				return NeighborInfo{}, fmt.Errorf("%w: NDA_LLADDR is %d bytes, want at least 6", ErrMalformed, len(value))
			}
			ret.MAC = net.HardwareAddr(slices.Clone(value[:6]))
		case unix.NDA_DST:
			addr, err := AddrFromBuf(ndm.Family, value)
			if err != nil {
				return NeighborInfo{}, err
			}
			ret.Addr = addr
		}
	}
	return ret, nil
}
