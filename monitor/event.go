package monitor

import (
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	rtnl "github.com/rfrandse/phosphor-networkd/netlink"
)

// Event is one decoded rtnetlink notification. Type is the nlmsg type the
// fact came from (RTM_NEWADDR, RTM_DELROUTE, ...); exactly one of the
// three fact pointers is set.
type Event struct {
	Type uint16

	Gateway *rtnl.GatewayInfo
	Addr    *rtnl.AddressInfo
	Neigh   *rtnl.NeighborInfo
}

// Deletion reports whether the event retracts a fact instead of
// announcing one.
func (e Event) Deletion() bool {
	switch e.Type {
	case unix.RTM_DELROUTE, unix.RTM_DELADDR, unix.RTM_DELNEIGH:
		return true
	}
	return false
}

// kindLabel maps nlmsg types onto the metric label space.
func kindLabel(typ uint16) string {
	switch typ {
	case unix.RTM_NEWROUTE, unix.RTM_DELROUTE:
		return "route"
	case unix.RTM_NEWADDR, unix.RTM_DELADDR:
		return "address"
	case unix.RTM_NEWNEIGH, unix.RTM_DELNEIGH:
		return "neighbor"
	}
	return "other"
}

// dispatch routes one raw message to the decoder matching its type. A nil
// event with a nil error means the message was fine but carried nothing
// we track: an unhandled message type, or a route that isn't the default
// gateway.
func dispatch(msg netlink.Message) (*Event, error) {
	typ := uint16(msg.Header.Type)
	switch typ {
	case unix.RTM_NEWROUTE, unix.RTM_DELROUTE:
		gw, err := rtnl.GatewayFromRtm(msg.Data)
		if err != nil || gw == nil {
			return nil, err
		}
		return &Event{Type: typ, Gateway: gw}, nil
	case unix.RTM_NEWADDR, unix.RTM_DELADDR:
		addr, err := rtnl.AddrFromRtm(msg.Data)
		if err != nil {
			return nil, err
		}
		return &Event{Type: typ, Addr: &addr}, nil
	case unix.RTM_NEWNEIGH, unix.RTM_DELNEIGH:
		neigh, err := rtnl.NeighFromRtm(msg.Data)
		if err != nil {
			return nil, err
		}
		return &Event{Type: typ, Neigh: &neigh}, nil
	}
	return nil, nil
}
