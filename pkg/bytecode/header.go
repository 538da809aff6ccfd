// Package bytecode loads a serialized bytecode dump: the file header, a
// sequence of function prototypes (bytecode instructions, upvalues, and
// constant pools), and drives the block resolver to build each prototype's
// control-flow graph as it is decoded.
package bytecode

import (
	"io"

	"github.com/oisee/bcdump/internal/uleb"
	"github.com/oisee/bcdump/pkg/bcerr"
)

// Header magic bytes and version.
const (
	head1   = 0x1b
	head2   = 0x4c
	head3   = 0x4a
	version = 0x02
)

// Header compatibility flag bits.
const (
	FlagBE    uint32 = 0x01 // big-endian (unsupported, rejected)
	FlagStrip uint32 = 0x02 // stripped: no chunk name
	FlagFFI   uint32 = 0x04 // FFI present (rejected outright)
	FlagFR2   uint32 = 0x08 // two-frame-register mode

	flagKnownMask uint32 = FlagFR2*2 - 1
)

func readHeader(r reader) (flags uint32, name string, err error) {
	magic := make([]byte, 4)
	for i := range magic {
		b, e := r.ReadByte()
		if e != nil {
			return 0, "", bcerr.Wrap(bcerr.KindIO, "reading dump header", e)
		}
		magic[i] = b
	}
	if magic[0] != head1 || magic[1] != head2 || magic[2] != head3 {
		return 0, "", bcerr.New(bcerr.KindInvalidHeaderBytes, "invalid bytecode dump magic")
	}
	if magic[3] != version {
		return 0, "", bcerr.New(bcerr.KindInvalidHeaderBytes, "unsupported bytecode dump version")
	}

	flags, err = uleb.Read(r)
	if err != nil {
		return 0, "", err
	}
	if flags&^flagKnownMask != 0 || flags&FlagBE != 0 || flags&FlagFFI != 0 {
		return 0, "", bcerr.New(bcerr.KindInvalidHeaderBytes, "invalid header flags")
	}

	if flags&FlagStrip == 0 {
		nameLen, err := uleb.Read(r)
		if err != nil {
			return 0, "", err
		}
		buf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, "", bcerr.Wrap(bcerr.KindIO, "reading chunk name", err)
		}
		name = string(buf)
	}

	return flags, name, nil
}
