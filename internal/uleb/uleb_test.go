package uleb

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/oisee/bcdump/pkg/bcerr"
)

func encode(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
			out = append(out, b)
			continue
		}
		out = append(out, b)
		break
	}
	return out
}

func TestReadRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 16384, 0xffff, 0x0fffffff, 0xffffffff}
	for _, n := range cases {
		r := bufio.NewReader(bytes.NewReader(encode(n)))
		got, err := Read(r)
		if err != nil {
			t.Fatalf("Read(%d): unexpected error: %v", n, err)
		}
		if got != n {
			t.Fatalf("Read(%d): got %d", n, got)
		}
	}
}

func TestReadRejectsSixBytes(t *testing.T) {
	// Five continuation bytes before a sixth byte: shift would reach 35,
	// exceeding the 28 limit.
	raw := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	r := bufio.NewReader(bytes.NewReader(raw))
	_, err := Read(r)
	if err == nil {
		t.Fatal("expected error for 6-byte ULEB128")
	}
	var be *bcerr.Error
	if !isErr(err, &be) || be.Kind != bcerr.KindInvalidULeb128 {
		t.Fatalf("expected KindInvalidULeb128, got %v", err)
	}
}

func TestReadShortInput(t *testing.T) {
	raw := []byte{0x80} // continuation set, no following byte
	r := bufio.NewReader(bytes.NewReader(raw))
	_, err := Read(r)
	if err == nil {
		t.Fatal("expected IO error on truncated input")
	}
}

func TestRead33SingleByteInteger(t *testing.T) {
	// low bit 0 => integer; value v>>1.
	r := bufio.NewReader(bytes.NewReader([]byte{0x28})) // 0x28 = 0b00101000 -> v = 0x14, low bit 0
	got, err := Read33(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsDouble {
		t.Fatal("expected IsDouble=false")
	}
	if got.Lo != 0x14 {
		t.Fatalf("got Lo=%#x, want 0x14", got.Lo)
	}
}

func TestRead33SingleByteDoubleFlag(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte{0x29})) // low bit 1 => is-double
	got, err := Read33(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDouble {
		t.Fatal("expected IsDouble=true")
	}
}

func TestRead33Continuation(t *testing.T) {
	// first byte: low bit 0 (integer), partial = first>>1 must be >= 0x40 to
	// trigger continuation. first = 0x80 -> first>>1 = 0x40.
	raw := []byte{0x80, 0x05}
	r := bufio.NewReader(bytes.NewReader(raw))
	got, err := Read33(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsDouble {
		t.Fatal("expected IsDouble=false")
	}
	want := uint32(0) | (uint32(0x05&0x7f) << 6)
	if got.Lo != want {
		t.Fatalf("got Lo=%#x, want %#x", got.Lo, want)
	}
}

func isErr(err error, target **bcerr.Error) bool {
	for err != nil {
		if be, ok := err.(*bcerr.Error); ok {
			*target = be
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
