package bytecode

import (
	"io"

	"github.com/oisee/bcdump/internal/uleb"
	"github.com/oisee/bcdump/pkg/bcerr"
)

func readString(r reader, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, bcerr.Wrap(bcerr.KindIO, "reading constant string bytes", err)
	}
	return buf, nil
}

func readConstTableVal(r reader) (ConstTableVal, error) {
	tag, err := uleb.Read(r)
	if err != nil {
		return ConstTableVal{}, err
	}

	switch tag {
	case tableValNil:
		return ConstTableVal{Kind: TVNil}, nil
	case tableValFalse:
		return ConstTableVal{Kind: TVFalse}, nil
	case tableValTrue:
		return ConstTableVal{Kind: TVTrue}, nil
	case tableValInt:
		v, err := uleb.Read(r)
		if err != nil {
			return ConstTableVal{}, err
		}
		return ConstTableVal{Kind: TVInt, Int: v}, nil
	case tableValNum:
		lo, err := uleb.Read(r)
		if err != nil {
			return ConstTableVal{}, err
		}
		hi, err := uleb.Read(r)
		if err != nil {
			return ConstTableVal{}, err
		}
		return ConstTableVal{Kind: TVNum, Lo: lo, Hi: hi}, nil
	default:
		str, err := readString(r, tag-tableValStr)
		if err != nil {
			return ConstTableVal{}, err
		}
		return ConstTableVal{Kind: TVStr, Str: str}, nil
	}
}

func readConstTable(r reader) (ConstTable, error) {
	nArray, err := uleb.Read(r)
	if err != nil {
		return ConstTable{}, err
	}
	nHash, err := uleb.Read(r)
	if err != nil {
		return ConstTable{}, err
	}

	tab := ConstTable{
		Array: make([]ConstTableVal, 0, nArray),
		Hash:  make([]ConstTableEntry, 0, nHash),
	}
	for i := uint32(0); i < nArray; i++ {
		v, err := readConstTableVal(r)
		if err != nil {
			return ConstTable{}, err
		}
		tab.Array = append(tab.Array, v)
	}
	for i := uint32(0); i < nHash; i++ {
		k, err := readConstTableVal(r)
		if err != nil {
			return ConstTable{}, err
		}
		v, err := readConstTableVal(r)
		if err != nil {
			return ConstTable{}, err
		}
		tab.Hash = append(tab.Hash, ConstTableEntry{Key: k, Value: v})
	}
	return tab, nil
}

// readGlobalConsts reads the prototype's global-constant pool.
// protoChildrenSeen tracks how many ProtoChild entries have been consumed so far, in reverse
// order of the dump's already-loaded prototypes (spec §4.5/§9).
func readGlobalConsts(r reader, n uint32, loadedProtos int) ([]GlobalConst, error) {
	consts := make([]GlobalConst, 0, n)
	protoChildrenSeen := 0

	for i := uint32(0); i < n; i++ {
		tag, err := uleb.Read(r)
		if err != nil {
			return nil, err
		}

		switch tag {
		case gcTypeProtoChild:
			protoChildrenSeen++
			consts = append(consts, GlobalConst{
				Kind:            GCProtoChild,
				ProtoChildIndex: loadedProtos - protoChildrenSeen,
			})
		case gcTypeTable:
			tab, err := readConstTable(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, GlobalConst{Kind: GCTable, Table: tab})
		case gcTypeI64, gcTypeU64:
			lo, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			hi, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			kind := GCI64
			if tag == gcTypeU64 {
				kind = GCU64
			}
			consts = append(consts, GlobalConst{Kind: kind, Lo: lo, Hi: hi})
		case gcTypeComplex:
			reLo, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			reHi, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			imLo, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			imHi, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, GlobalConst{Kind: GCComplex, ReLo: reLo, ReHi: reHi, ImLo: imLo, ImHi: imHi})
		default:
			str, err := readString(r, tag-gcTypeStr)
			if err != nil {
				return nil, err
			}
			consts = append(consts, GlobalConst{Kind: GCStr, Str: str})
		}
	}

	return consts, nil
}

func readNumConsts(r reader, n uint32) ([]NumConst, error) {
	consts := make([]NumConst, 0, n)
	for i := uint32(0); i < n; i++ {
		num, err := uleb.Read33(r)
		if err != nil {
			return nil, err
		}
		if num.IsDouble {
			hi, err := uleb.Read(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, NumConst{Kind: NCNum, Lo: num.Lo, Hi: hi})
		} else {
			consts = append(consts, NumConst{Kind: NCInt, Int: num.Lo})
		}
	}
	return consts, nil
}
