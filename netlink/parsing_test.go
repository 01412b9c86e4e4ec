package netlink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type rawAttr struct {
	typ   uint16
	value []byte
}

// buildAttr encodes one TLV record the way the kernel does: a 4 byte
// header declaring header+value length, the value, then padding up to the
// next 4 byte boundary.
func buildAttr(typ uint16, value []byte) []byte {
	alen := sizeofRtAttr + len(value)
	b := make([]byte, rtaAlignOf(alen))
	native.PutUint16(b[0:2], uint16(alen))
	native.PutUint16(b[2:4], typ)
	copy(b[sizeofRtAttr:], value)
	return b
}

func buildAttrs(attrs []rawAttr) []byte {
	var buf bytes.Buffer
	for _, a := range attrs {
		buf.Write(buildAttr(a.typ, a.value))
	}
	return buf.Bytes()
}

func drain(t *testing.T, b []byte) ([]rawAttr, error) {
	t.Helper()
	var got []rawAttr
	view := attrView{b: b}
	for !view.empty() {
		typ, value, err := view.next()
		if err != nil {
			return got, err
		}
		got = append(got, rawAttr{typ: typ, value: append([]byte(nil), value...)})
	}
	return got, nil
}

func TestAttrRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		attrs []rawAttr
	}{
		{"empty stream", nil},
		{"single empty value", []rawAttr{{typ: 1}}},
		{"single unaligned value", []rawAttr{{typ: 2, value: []byte{0xde, 0xad, 0xbe}}}},
		{"aligned values", []rawAttr{
			{typ: 4, value: []byte{1, 2, 3, 4}},
			{typ: 5, value: []byte{5, 6, 7, 8, 9, 10, 11, 12}},
		}},
		{"mixed padding", []rawAttr{
			{typ: 1, value: []byte{0xff}},
			{typ: 2, value: []byte{1, 2, 3, 4, 5}},
			{typ: 3, value: nil},
			{typ: 1, value: []byte{0xaa, 0xbb}},
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := drain(t, buildAttrs(test.attrs))
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if diff := cmp.Diff(test.attrs, got, cmp.AllowUnexported(rawAttr{})); diff != "" {
				t.Errorf("attribute mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAttrValueLengths(t *testing.T) {
	// One attribute per representable value length up to a chunky one;
	// exercising every uint16 length would just be slow, the alignment
	// logic only cares about length mod 4.
	for length := 0; length <= 64; length++ {
		value := bytes.Repeat([]byte{0x5a}, length)
		got, err := drain(t, buildAttr(7, value))
		if err != nil {
			t.Fatalf("length %d: unexpected error: %v", length, err)
		}
		if len(got) != 1 || got[0].typ != 7 || !bytes.Equal(got[0].value, value) {
			t.Errorf("length %d: round trip mismatch: %+v", length, got)
		}
	}
}

func TestAttrMalformed(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
	}{
		{"stray bytes shorter than a header", []byte{0x01, 0x02}},
		{"declared length below header size", func() []byte {
			b := buildAttr(1, []byte{1, 2, 3, 4})
			native.PutUint16(b[0:2], 3)
			return b
		}()},
		{"declared length beyond stream", func() []byte {
			b := buildAttr(1, []byte{1, 2, 3, 4})
			native.PutUint16(b[0:2], uint16(len(b)+8))
			return b
		}()},
		{"second attribute truncated", func() []byte {
			b := buildAttrs([]rawAttr{{typ: 1, value: []byte{1, 2, 3, 4}}, {typ: 2, value: []byte{5, 6, 7, 8}}})
			return b[:len(b)-2]
		}()},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := drain(t, test.b); !errors.Is(err, ErrMalformed) {
				t.Errorf("got %v, want ErrMalformed", err)
			}
		})
	}
}

func TestExtractHeaderShortBody(t *testing.T) {
	if _, _, err := extractRtMsg(make([]byte, sizeofRtMsg-1)); !errors.Is(err, ErrMalformed) {
		t.Errorf("rtmsg: got %v, want ErrMalformed", err)
	}
	if _, _, err := extractIfAddrMsg(make([]byte, sizeofIfAddrmsg-1)); !errors.Is(err, ErrMalformed) {
		t.Errorf("ifaddrmsg: got %v, want ErrMalformed", err)
	}
	if _, _, err := extractNdMsg(make([]byte, sizeofNdMsg-1)); !errors.Is(err, ErrMalformed) {
		t.Errorf("ndmsg: got %v, want ErrMalformed", err)
	}
}

func TestExtractHeaderFields(t *testing.T) {
	raw := make([]byte, sizeofRtMsg)
	raw[0] = 2    // family
	raw[1] = 24   // dst len
	raw[4] = 254  // table
	raw[6] = 0xfe // scope
	native.PutUint32(raw[8:12], 0xdeadbeef)

	rtm, attrs, err := extractRtMsg(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !attrs.empty() {
		t.Errorf("expected empty attribute stream, got %d bytes", len(attrs.b))
	}
	want := RtMsg{Family: 2, DstLen: 24, Table: 254, Scope: 0xfe, Flags: 0xdeadbeef}
	if rtm != want {
		t.Errorf("got %+v, want %+v", rtm, want)
	}
}
