// Package netlink decodes raw rtnetlink message bodies into typed facts
// about routes, addresses and neighbor cache entries. Be sure to check
// rtnetlink(7) and netlink(7) for the wire format being consumed here.
//
// The callers are expected to strip the outer nlmsghdr before handing a
// body over: every function in this package starts at the message-kind
// specific header (struct rtmsg, ifaddrmsg or ndmsg). Nothing in here
// talks to a socket or keeps state between calls, so everything is safe
// to invoke concurrently on independent messages.
//
// Two failure modes are kept strictly apart. A body that violates the
// framing contract (truncated header, attribute lengths pointing past the
// buffer, addresses of the wrong width for their family) fails hard with
// an error wrapping ErrMalformed. A message that simply doesn't carry the
// fact being looked for (a route that isn't the default route, a neighbor
// entry still being resolved) is not an error: callers get a nil or a
// partially populated fact instead.
package netlink
