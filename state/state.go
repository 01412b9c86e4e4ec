// Package state keeps the daemon's view of the kernel's network
// configuration: the default gateway per family, the addresses on each
// interface and the neighbor cache. It consumes the events published by
// the monitor and answers point queries from everything above it.
package state

import (
	"log/slog"
	"sync"

	"github.com/rfrandse/phosphor-networkd/monitor"
	rtnl "github.com/rfrandse/phosphor-networkd/netlink"
	"github.com/rfrandse/phosphor-networkd/types"
)

type neighKey struct {
	ifidx int32
	addr  types.InAddrAny
}

// Tables is safe for concurrent use; the monitor feeds Apply from its
// loop while readers query from wherever.
type Tables struct {
	mu        sync.RWMutex
	gateways  map[uint8]rtnl.GatewayInfo
	addrs     map[uint32]map[types.IfAddr]rtnl.AddressInfo
	neighbors map[neighKey]rtnl.NeighborInfo
}

func NewTables() *Tables {
	return &Tables{
		gateways:  map[uint8]rtnl.GatewayInfo{},
		addrs:     map[uint32]map[types.IfAddr]rtnl.AddressInfo{},
		neighbors: map[neighKey]rtnl.NeighborInfo{},
	}
}

// Apply folds one monitor event into the tables.
func (t *Tables) Apply(ev monitor.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case ev.Gateway != nil:
		family := ev.Gateway.Gateway.Family()
		if ev.Deletion() {
			// Only retract what we actually hold: a stale delete for a
			// gateway that was already replaced must not clobber the
			// replacement.
			if cur, ok := t.gateways[family]; ok && cur == *ev.Gateway {
				delete(t.gateways, family)
			}
			return
		}
		t.gateways[family] = *ev.Gateway

	case ev.Addr != nil:
		info := *ev.Addr
		if ev.Deletion() {
			if set, ok := t.addrs[info.Ifidx]; ok {
				delete(set, info.IfAddr)
				if len(set) == 0 {
					delete(t.addrs, info.Ifidx)
				}
			}
			return
		}
		set, ok := t.addrs[info.Ifidx]
		if !ok {
			set = map[types.IfAddr]rtnl.AddressInfo{}
			t.addrs[info.Ifidx] = set
		}
		set[info.IfAddr] = info

	case ev.Neigh != nil:
		info := *ev.Neigh
		if !info.Addr.IsValid() {
			// Nothing to key the entry on; mid-resolution reports with
			// only a link layer address aren't cacheable.
			slog.Debug("skipping neighbor event without a network address", "ifidx", info.Ifidx)
			return
		}
		key := neighKey{ifidx: info.Ifidx, addr: info.Addr}
		if ev.Deletion() {
			delete(t.neighbors, key)
			return
		}
		t.neighbors[key] = info
	}
}

// DefaultGateway returns the current default gateway for an address
// family (unix.AF_INET or unix.AF_INET6), if one is known.
func (t *Tables) DefaultGateway(family uint8) (rtnl.GatewayInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	gw, ok := t.gateways[family]
	return gw, ok
}

// Addresses lists the addresses currently assigned to an interface.
func (t *Tables) Addresses(ifidx uint32) []rtnl.AddressInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.addrs[ifidx]
	if !ok {
		return nil
	}
	out := make([]rtnl.AddressInfo, 0, len(set))
	for _, info := range set {
		out = append(out, info)
	}
	return out
}

// Neighbor looks up the neighbor entry for an address on an interface.
func (t *Tables) Neighbor(ifidx int32, addr types.InAddrAny) (rtnl.NeighborInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.neighbors[neighKey{ifidx: ifidx, addr: addr}]
	return info, ok
}

// NeighborCount reports how many neighbor entries are cached.
func (t *Tables) NeighborCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.neighbors)
}
