package bytecode

import (
	"encoding/binary"
	"io"

	"github.com/oisee/bcdump/internal/uleb"
	"github.com/oisee/bcdump/pkg/bcerr"
	"github.com/oisee/bcdump/pkg/resolver"
)

// Prototype flag bits, first byte of a prototype's header block.
const (
	ProtoFlagChild   uint8 = 0x01
	ProtoFlagVararg  uint8 = 0x02
	ProtoFlagFFI     uint8 = 0x04
	ProtoFlagJIT     uint8 = 0x08
	ProtoFlagILoop   uint8 = 0x10
)

// Prototype is one callable unit: code, upvalue table, and constant pools.
type Prototype struct {
	Flags       uint8
	NumParams   uint8
	FrameSize   uint8
	NumUpvalues uint8

	Instructions []uint32
	Upvalues     []uint16
	GlobalConsts []GlobalConst
	NumConsts    []NumConst

	cfg *resolver.CFG
}

// CFG returns the basic-block control-flow graph built from this
// prototype's instructions during loading.
func (p *Prototype) CFG() *resolver.CFG { return p.cfg }

func readUint16Array(r io.Reader, n uint32) ([]uint16, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, int(n)*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, bcerr.Wrap(bcerr.KindIO, "reading upvalue array", err)
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	return out, nil
}

func readUint32Array(r io.Reader, n uint32) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, int(n)*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, bcerr.Wrap(bcerr.KindIO, "reading instruction array", err)
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return out, nil
}

// readPrototype reads one prototype record from r (a bounded reader over
// exactly the prototype's declared length) and resolves its control-flow
// graph. loadedProtos is the number of prototypes already pushed onto the
// dump's prototype list, used to resolve ProtoChild back-references.
func readPrototype(r reader, loadedProtos int) (*Prototype, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, bcerr.InProto(loadedProtos, bcerr.Wrap(bcerr.KindIO, "reading prototype header", err))
	}

	p := &Prototype{
		Flags:       head[0],
		NumParams:   head[1],
		FrameSize:   head[2],
		NumUpvalues: head[3],
	}

	sizeGlobalConsts, err := uleb.Read(r)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}
	sizeNumConsts, err := uleb.Read(r)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}
	sizeBC, err := uleb.Read(r)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}

	p.Instructions, err = readUint32Array(r, sizeBC)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}

	p.cfg, err = resolver.Resolve(p.Instructions)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}

	p.Upvalues, err = readUint16Array(r, uint32(p.NumUpvalues))
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}

	p.GlobalConsts, err = readGlobalConsts(r, sizeGlobalConsts, loadedProtos)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}
	p.NumConsts, err = readNumConsts(r, sizeNumConsts)
	if err != nil {
		return nil, bcerr.InProto(loadedProtos, err)
	}

	// Trailing debug info, if the dump is not stripped, is intentionally
	// left unparsed: it does not feed the CFG or IR layers.

	return p, nil
}
