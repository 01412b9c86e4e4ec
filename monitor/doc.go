// Package monitor owns the rtnetlink socket the daemon listens on. It
// subscribes to the kernel's route, address and neighbor multicast groups,
// reads one message at a time and hands each body to the decoders in the
// netlink package, publishing the resulting facts on a channel.
//
// The kernel is free to flood these groups: every address change, route
// update or neighbor state transition on the box lands here. Messages
// that don't decode are counted, logged and dropped; resynchronising the
// daemon's state after a decode failure (e.g. by re-dumping the affected
// table) is the consumer's call, not ours.
package monitor
