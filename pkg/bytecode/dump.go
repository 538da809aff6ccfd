package bytecode

import (
	"bufio"
	"bytes"
	"io"

	"github.com/oisee/bcdump/internal/uleb"
	"github.com/oisee/bcdump/pkg/bcerr"
)

// Dump is the top-level artifact produced by LoadDump: a decoded header
// plus every prototype the stream contained, in stream order.
type Dump struct {
	Flags      uint32
	Name       string
	prototypes []*Prototype
}

// Prototypes returns every prototype in the dump, in the order they
// appeared in the stream. Child prototypes precede their parents.
func (d *Dump) Prototypes() []*Prototype { return d.prototypes }

// FailurePolicy controls how LoadDump reacts to a prototype that fails to
// decode.
type FailurePolicy int

const (
	// AbortOnFailure stops at the first failing prototype (default).
	AbortOnFailure FailurePolicy = iota
	// SkipOnFailure discards the offending prototype and continues with
	// the rest of the stream.
	SkipOnFailure
)

// LoadDump reads a complete bytecode dump from r.
func LoadDump(r io.Reader) (*Dump, error) {
	return LoadDumpWithPolicy(r, AbortOnFailure)
}

// LoadDumpWithPolicy is LoadDump with an explicit per-prototype failure
// policy (spec §7: "the dump loader may elect to abort the whole dump on
// the first failure (default) or skip the offending prototype").
func LoadDumpWithPolicy(r io.Reader, policy FailurePolicy) (*Dump, error) {
	br, ok := r.(reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	flags, name, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	d := &Dump{Flags: flags, Name: name}

	for {
		protoLen, err := uleb.Read(br)
		if err != nil {
			return nil, bcerr.Wrap(bcerr.KindIO, "reading prototype length", err)
		}
		if protoLen == 0 {
			break
		}

		protoBuf := make([]byte, protoLen)
		if _, err := io.ReadFull(br, protoBuf); err != nil {
			return nil, bcerr.Wrap(bcerr.KindIO, "reading prototype payload", err)
		}

		protoReader := bufio.NewReader(bytes.NewReader(protoBuf))
		proto, err := readPrototype(protoReader, len(d.prototypes))
		if err != nil {
			if policy == SkipOnFailure {
				continue
			}
			return nil, err
		}
		d.prototypes = append(d.prototypes, proto)
	}

	return d, nil
}

