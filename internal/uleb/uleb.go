// Package uleb decodes the little-endian base-128 variable-length integers
// used throughout the bytecode dump format, including the specialized
// 33-bit encoding reserved for numeric constants.
package uleb

import (
	"errors"
	"io"

	"github.com/oisee/bcdump/pkg/bcerr"
)

// maxBytes is the largest number of continuation groups a plain ULEB128
// value may occupy here: five groups cover a full uint32 (5*7 = 35 bits of
// capacity, comfortably enough for 32 bits) while still bounding malformed
// input.
const maxBytes = 5

// Read decodes a standard ULEB128 unsigned integer from r: 7-bit groups,
// little-endian, continuation flag in the top bit of each byte. It fails
// with bcerr.KindInvalidULeb128 if a sixth continuation byte would be
// consumed.
func Read(r io.ByteReader) (uint32, error) {
	var result uint32
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, bcerr.Wrap(bcerr.KindIO, "unexpected EOF reading ULEB128", err)
			}
			return 0, bcerr.Wrap(bcerr.KindIO, "reading ULEB128", err)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, bcerr.New(bcerr.KindInvalidULeb128, "ULEB128 exceeds five continuation bytes")
}

// Num33 is the result of decoding a numeric-constant's 33-bit ULEB128: Lo
// holds the low 32 bits (shifted appropriately) and IsDouble reports
// whether the first byte's low bit was set, meaning a second ULEB128 (the
// high half of a double) follows in the stream.
type Num33 struct {
	Lo       uint32
	IsDouble bool
}

// Read33 decodes the specialized 33-bit ULEB128 used only for numeric
// constants (spec §4.1): the first byte's low bit is split off as the
// "is-double" flag; the remaining 7 bits of that byte form bits 0-5 of the
// result, shifted right by one. If that partial value's continuation bit is
// set (value >= 0x40), further ULEB128 groups are read starting at shift 6.
func Read33(r io.ByteReader) (Num33, error) {
	first, err := r.ReadByte()
	if err != nil {
		return Num33{}, bcerr.Wrap(bcerr.KindIO, "unexpected EOF reading 33-bit ULEB128", err)
	}
	isDouble := first&0x01 != 0
	partial := uint32(first) >> 1

	if partial < 0x40 {
		return Num33{Lo: partial, IsDouble: isDouble}, nil
	}

	result := partial &^ 0x40 // continuation bit itself carries no value
	shift := uint(6)
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return Num33{}, bcerr.Wrap(bcerr.KindIO, "unexpected EOF reading 33-bit ULEB128 continuation", err)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return Num33{Lo: result, IsDouble: isDouble}, nil
		}
		shift += 7
	}
	return Num33{}, bcerr.New(bcerr.KindInvalidULeb128, "33-bit ULEB128 exceeds continuation limit")
}
