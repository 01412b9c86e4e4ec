package monitor

import (
	"errors"
	"testing"

	ne "github.com/josharian/native"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	rtnl "github.com/rfrandse/phosphor-networkd/netlink"
)

// attr encodes one TLV record, padding included, the way the kernel
// frames rtnetlink attributes.
func attr(typ uint16, value []byte) []byte {
	alen := unix.SizeofRtAttr + len(value)
	padded := (alen + unix.RTA_ALIGNTO - 1) & ^(unix.RTA_ALIGNTO - 1)
	b := make([]byte, padded)
	ne.Endian.PutUint16(b[0:2], uint16(alen))
	ne.Endian.PutUint16(b[2:4], typ)
	copy(b[unix.SizeofRtAttr:], value)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	ne.Endian.PutUint32(b, v)
	return b
}

func defaultRouteBody(oif uint32, gw []byte) []byte {
	body := make([]byte, unix.SizeofRtMsg)
	body[0] = unix.AF_INET
	body[4] = unix.RT_TABLE_MAIN
	body = append(body, attr(unix.RTA_OIF, u32(oif))...)
	body = append(body, attr(unix.RTA_GATEWAY, gw)...)
	return body
}

func addrBody(prefixLen uint8, index uint32, addr []byte) []byte {
	body := make([]byte, unix.SizeofIfAddrmsg)
	body[0] = unix.AF_INET
	body[1] = prefixLen
	ne.Endian.PutUint32(body[4:8], index)
	body = append(body, attr(unix.IFA_ADDRESS, addr)...)
	return body
}

func neighBody(index uint32, mac []byte) []byte {
	body := make([]byte, unix.SizeofNdMsg)
	body[0] = unix.AF_INET
	ne.Endian.PutUint32(body[4:8], index)
	body = append(body, attr(unix.NDA_LLADDR, mac)...)
	return body
}

func TestDispatch(t *testing.T) {
	gw := []byte{10, 0, 0, 1}
	mac := []byte{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}

	t.Run("new route becomes a gateway event", func(t *testing.T) {
		ev, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_NEWROUTE},
			Data:   defaultRouteBody(3, gw),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev == nil || ev.Gateway == nil {
			t.Fatalf("expected a gateway event, got %+v", ev)
		}
		if ev.Gateway.Ifidx != 3 || ev.Gateway.Gateway.String() != "10.0.0.1" {
			t.Errorf("wrong gateway fact: %+v", ev.Gateway)
		}
		if ev.Deletion() {
			t.Error("RTM_NEWROUTE must not be a deletion")
		}
	})

	t.Run("deleted address becomes a retraction", func(t *testing.T) {
		ev, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_DELADDR},
			Data:   addrBody(24, 2, []byte{192, 168, 1, 5}),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev == nil || ev.Addr == nil {
			t.Fatalf("expected an address event, got %+v", ev)
		}
		if !ev.Deletion() {
			t.Error("RTM_DELADDR must be a deletion")
		}
		if ev.Addr.IfAddr.String() != "192.168.1.5/24" {
			t.Errorf("wrong address fact: %+v", ev.Addr)
		}
	})

	t.Run("neighbor event", func(t *testing.T) {
		ev, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_NEWNEIGH},
			Data:   neighBody(4, mac),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev == nil || ev.Neigh == nil {
			t.Fatalf("expected a neighbor event, got %+v", ev)
		}
		if ev.Neigh.Ifidx != 4 || ev.Neigh.MAC.String() != "02:42:ac:11:00:02" {
			t.Errorf("wrong neighbor fact: %+v", ev.Neigh)
		}
	})

	t.Run("non default routes carry no event", func(t *testing.T) {
		body := defaultRouteBody(3, gw)
		body[1] = 24 // dst len
		ev, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_NEWROUTE},
			Data:   body,
		})
		if err != nil || ev != nil {
			t.Errorf("got (%+v, %v), want (nil, nil)", ev, err)
		}
	})

	t.Run("unhandled message types are skipped", func(t *testing.T) {
		ev, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_NEWLINK},
			Data:   []byte{1, 2, 3},
		})
		if err != nil || ev != nil {
			t.Errorf("got (%+v, %v), want (nil, nil)", ev, err)
		}
	})

	t.Run("malformed bodies fail", func(t *testing.T) {
		_, err := dispatch(netlink.Message{
			Header: netlink.Header{Type: unix.RTM_NEWADDR},
			Data:   make([]byte, unix.SizeofIfAddrmsg-2),
		})
		if !errors.Is(err, rtnl.ErrMalformed) {
			t.Errorf("got %v, want ErrMalformed", err)
		}
	})
}

func TestKindLabel(t *testing.T) {
	tests := []struct {
		typ  uint16
		want string
	}{
		{unix.RTM_NEWROUTE, "route"},
		{unix.RTM_DELROUTE, "route"},
		{unix.RTM_NEWADDR, "address"},
		{unix.RTM_DELNEIGH, "neighbor"},
		{unix.RTM_NEWLINK, "other"},
	}
	for _, test := range tests {
		if got := kindLabel(test.typ); got != test.want {
			t.Errorf("type %#x: got %q, want %q", test.typ, got, test.want)
		}
	}
}
