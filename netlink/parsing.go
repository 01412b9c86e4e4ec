package netlink

import (
	"errors"
	"fmt"

	ne "github.com/josharian/native"
	"golang.org/x/sys/unix"
)

// Netlink speaks the host's byte order: these messages never leave the
// machine, so there is no network byte order to worry about.
var native = ne.Endian

// ErrMalformed is wrapped by every decode failure in this package. A
// message failing with it violates the rtnetlink framing contract and
// should be dropped by the caller; it is never a legitimate absent-value
// case.
var ErrMalformed = errors.New("malformed rtnetlink message")

const (
	sizeofRtAttr    = unix.SizeofRtAttr // 4: uint16 len + uint16 type
	sizeofRtMsg     = unix.SizeofRtMsg
	sizeofIfAddrmsg = unix.SizeofIfAddrmsg
	sizeofNdMsg     = unix.SizeofNdMsg
)

// rtaAlignOf rounds an attribute length up to the 4-byte boundary the next
// attribute starts on. The padding is not covered by the attribute's own
// declared length.
func rtaAlignOf(attrLen int) int {
	return (attrLen + unix.RTA_ALIGNTO - 1) & ^(unix.RTA_ALIGNTO - 1)
}

// attrView is a borrowed window over the attribute stream of a single
// message. next slices into the underlying buffer and never copies, so the
// yielded values are only good for as long as the message buffer is.
type attrView struct {
	b []byte
}

func (v *attrView) empty() bool {
	return len(v.b) == 0
}

// next extracts one attribute record and advances past it, padding
// included. The declared length covers the 4-byte attribute header plus
// the value but not the padding; anything below the header size or beyond
// the remaining bytes means the stream is truncated or lying, and we must
// not read past it.
func (v *attrView) next() (uint16, []byte, error) {
	if len(v.b) < sizeofRtAttr {
		return 0, nil, fmt.Errorf("%w: %d stray bytes after last attribute", ErrMalformed, len(v.b))
	}
	alen := int(native.Uint16(v.b[0:2]))
	atyp := native.Uint16(v.b[2:4])
	if alen < sizeofRtAttr || alen > len(v.b) {
		return 0, nil, fmt.Errorf("%w: attribute declares %d bytes, %d remain", ErrMalformed, alen, len(v.b))
	}
	value := v.b[sizeofRtAttr:alen]
	if padded := rtaAlignOf(alen); padded < len(v.b) {
		v.b = v.b[padded:]
	} else {
		v.b = nil
	}
	return atyp, value, nil
}

// extractHeader carves hdrLen bytes off the front of a message body,
// leaving the attribute stream. Header field validation is left to the
// interpreters; all we guarantee here is that the header is whole.
func extractHeader(msg []byte, hdrLen int) ([]byte, attrView, error) {
	if len(msg) < hdrLen {
		return nil, attrView{}, fmt.Errorf("%w: body is %d bytes, header needs %d", ErrMalformed, len(msg), hdrLen)
	}
	return msg[:hdrLen], attrView{b: msg[hdrLen:]}, nil
}

// RtMsg mirrors struct rtmsg from rtnetlink(7).
type RtMsg struct {
	Family   uint8
	DstLen   uint8
	SrcLen   uint8
	TOS      uint8
	Table    uint8
	Protocol uint8
	Scope    uint8
	Type     uint8
	Flags    uint32
}

func extractRtMsg(msg []byte) (RtMsg, attrView, error) {
	hdr, attrs, err := extractHeader(msg, sizeofRtMsg)
	if err != nil {
		return RtMsg{}, attrView{}, err
	}
	return RtMsg{
		Family:   hdr[0],
		DstLen:   hdr[1],
		SrcLen:   hdr[2],
		TOS:      hdr[3],
		Table:    hdr[4],
		Protocol: hdr[5],
		Scope:    hdr[6],
		Type:     hdr[7],
		Flags:    native.Uint32(hdr[8:12]),
	}, attrs, nil
}

// IfAddrMsg mirrors struct ifaddrmsg from rtnetlink(7).
type IfAddrMsg struct {
	Family    uint8
	PrefixLen uint8
	Flags     uint8
	Scope     uint8
	Index     uint32
}

func extractIfAddrMsg(msg []byte) (IfAddrMsg, attrView, error) {
	hdr, attrs, err := extractHeader(msg, sizeofIfAddrmsg)
	if err != nil {
		return IfAddrMsg{}, attrView{}, err
	}
	return IfAddrMsg{
		Family:    hdr[0],
		PrefixLen: hdr[1],
		Flags:     hdr[2],
		Scope:     hdr[3],
		Index:     native.Uint32(hdr[4:8]),
	}, attrs, nil
}

// NdMsg mirrors struct ndmsg from rtnetlink(7). The pad bytes between the
// family and the interface index are part of the wire layout, hence the
// offsets below.
type NdMsg struct {
	Family  uint8
	Ifindex int32
	State   uint16
	Flags   uint8
	Type    uint8
}

func extractNdMsg(msg []byte) (NdMsg, attrView, error) {
	hdr, attrs, err := extractHeader(msg, sizeofNdMsg)
	if err != nil {
		return NdMsg{}, attrView{}, err
	}
	return NdMsg{
		Family:  hdr[0],
		Ifindex: int32(native.Uint32(hdr[4:8])),
		State:   native.Uint16(hdr[8:10]),
		Flags:   hdr[10],
		Type:    hdr[11],
	}, attrs, nil
}
