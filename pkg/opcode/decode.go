package opcode

import (
	"fmt"

	"github.com/oisee/bcdump/pkg/bcerr"
)

func getOp(ins uint32) uint8 { return uint8(ins & 0xff) }
func getA(ins uint32) uint8  { return uint8((ins >> 8) & 0xff) }
func getB(ins uint32) uint8  { return uint8((ins >> 16) & 0xff) }
func getC(ins uint32) uint8  { return uint8((ins >> 24) & 0xff) }
func getD(ins uint32) uint16 { return uint16(ins >> 16) }

// Decode converts a raw 32-bit instruction word into its typed Op variant.
// Bits 0-7 select the opcode number; bits 8-15 are operand A; bits 16-23
// and 24-31 are operands B and C; bits 16-31 together are the wide operand
// D, used instead of B/C by opcodes that take one 16-bit field. An opcode
// number outside the known table is a decoding failure, never a panic.
func Decode(ins uint32) (Op, error) {
	a, b, c, d := getA(ins), getB(ins), getC(ins), getD(ins)

	switch getOp(ins) {
	case 0x00:
		return ISLT{varFromA(a), varFromD(d)}, nil
	case 0x01:
		return ISGE{varFromA(a), varFromD(d)}, nil
	case 0x02:
		return ISLE{varFromA(a), varFromD(d)}, nil
	case 0x03:
		return ISGT{varFromA(a), varFromD(d)}, nil
	case 0x04:
		return ISEQV{varFromA(a), varFromD(d)}, nil
	case 0x05:
		return ISNEV{varFromA(a), varFromD(d)}, nil
	case 0x06:
		return ISEQS{varFromA(a), strFromD(d)}, nil
	case 0x07:
		return ISNES{varFromA(a), strFromD(d)}, nil
	case 0x08:
		return ISEQN{varFromA(a), numFromD(d)}, nil
	case 0x09:
		return ISNEN{varFromA(a), numFromD(d)}, nil
	case 0x0a:
		pri, err := priFromD(d)
		if err != nil {
			return nil, err
		}
		return ISEQP{varFromA(a), pri}, nil
	case 0x0b:
		pri, err := priFromD(d)
		if err != nil {
			return nil, err
		}
		return ISNEP{varFromA(a), pri}, nil
	case 0x0c:
		return ISTC{dstFromA(a), varFromD(d)}, nil
	case 0x0d:
		return ISFC{dstFromA(a), varFromD(d)}, nil
	case 0x0e:
		return IST{varFromD(d)}, nil
	case 0x0f:
		return ISF{varFromD(d)}, nil
	case 0x10:
		return ISTYPE{varFromA(a), litFromD(d)}, nil
	case 0x11:
		return ISNUM{varFromA(a), litFromD(d)}, nil
	case 0x12:
		return MOV{dstFromA(a), varFromD(d)}, nil
	case 0x13:
		return NOT{dstFromA(a), varFromD(d)}, nil
	case 0x14:
		return UNM{dstFromA(a), varFromD(d)}, nil
	case 0x15:
		return LEN{dstFromA(a), varFromD(d)}, nil
	case 0x16:
		return ADDVN{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x17:
		return SUBVN{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x18:
		return MULVN{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x19:
		return DIVVN{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1a:
		return MODVN{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1b:
		return ADDNV{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1c:
		return SUBNV{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1d:
		return MULNV{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1e:
		return DIVNV{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x1f:
		return MODNV{dstFromA(a), varFromB(b), numFromC(c)}, nil
	case 0x20:
		return ADDVV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x21:
		return SUBVV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x22:
		return MULVV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x23:
		return DIVVV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x24:
		return MODVV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x25:
		return POW{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x26:
		return CAT{dstFromA(a), rbaseFromB(b), rbaseFromC(c)}, nil
	case 0x27:
		return KSTR{dstFromA(a), strFromD(d)}, nil
	case 0x28:
		return KCDATA{dstFromA(a), cdataFromD(d)}, nil
	case 0x29:
		return KSHORT{dstFromA(a), litSFromD(d)}, nil
	case 0x2a:
		return KNUM{dstFromA(a), numFromD(d)}, nil
	case 0x2b:
		pri, err := priFromD(d)
		if err != nil {
			return nil, err
		}
		return KPRI{dstFromA(a), pri}, nil
	case 0x2c:
		return KNIL{baseFromA(a), baseFromD(d)}, nil
	case 0x2d:
		return UGET{dstFromA(a), uvFromD(d)}, nil
	case 0x2e:
		return USETV{UV(a), varFromD(d)}, nil
	case 0x2f:
		return USETS{UV(a), strFromD(d)}, nil
	case 0x30:
		return USETN{UV(a), numFromD(d)}, nil
	case 0x31:
		pri, err := priFromD(d)
		if err != nil {
			return nil, err
		}
		return USETP{UV(a), pri}, nil
	case 0x32:
		return UCLO{rbaseFromA(a), jumpFromD(d)}, nil
	case 0x33:
		return FNEW{dstFromA(a), funcFromD(d)}, nil
	case 0x34:
		return TNEW{dstFromA(a), litFromD(d)}, nil
	case 0x35:
		return TDUP{dstFromA(a), tabFromD(d)}, nil
	case 0x36:
		return GGET{dstFromA(a), strFromD(d)}, nil
	case 0x37:
		return GSET{varFromA(a), strFromD(d)}, nil
	case 0x38:
		return TGETV{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x39:
		return TGETS{dstFromA(a), varFromB(b), strFromC(c)}, nil
	case 0x3a:
		return TGETB{dstFromA(a), varFromB(b), litFromC(c)}, nil
	case 0x3b:
		return TGETR{dstFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x3c:
		return TSETV{varFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x3d:
		return TSETS{varFromA(a), varFromB(b), strFromC(c)}, nil
	case 0x3e:
		return TSETB{varFromA(a), varFromB(b), litFromC(c)}, nil
	case 0x3f:
		return TSETM{baseFromA(a), numFromD(d)}, nil
	case 0x40:
		return TSETR{varFromA(a), varFromB(b), varFromC(c)}, nil
	case 0x41:
		return CALLM{baseFromA(a), litFromB(b), litFromC(c)}, nil
	case 0x42:
		return CALL{baseFromA(a), litFromB(b), litFromC(c)}, nil
	case 0x43:
		return CALLMT{baseFromA(a), litFromD(d)}, nil
	case 0x44:
		return CALLT{baseFromA(a), litFromD(d)}, nil
	case 0x45:
		return ITERC{baseFromA(a), litFromB(b), litFromC(c)}, nil
	case 0x46:
		return ITERN{baseFromA(a), litFromB(b), litFromC(c)}, nil
	case 0x47:
		return VARG{baseFromA(a), litFromB(b), litFromC(c)}, nil
	case 0x48:
		return ISNEXT{baseFromA(a), jumpFromD(d)}, nil
	case 0x49:
		return RETM{baseFromA(a), litFromD(d)}, nil
	case 0x4a:
		return RET{rbaseFromA(a), litFromD(d)}, nil
	case 0x4b:
		return RET0{rbaseFromA(a), litFromD(d)}, nil
	case 0x4c:
		return RET1{rbaseFromA(a), litFromD(d)}, nil
	case 0x4d:
		return FORI{baseFromA(a), jumpFromD(d)}, nil
	case 0x4e:
		return JFORI{baseFromA(a), jumpFromD(d)}, nil
	case 0x4f:
		return FORL{baseFromA(a), jumpFromD(d)}, nil
	case 0x50:
		return IFORL{baseFromA(a), jumpFromD(d)}, nil
	case 0x51:
		return JFORL{baseFromA(a), litFromD(d)}, nil
	case 0x52:
		return ITERL{baseFromA(a), jumpFromD(d)}, nil
	case 0x53:
		return IITERL{baseFromA(a), jumpFromD(d)}, nil
	case 0x54:
		return JITERL{baseFromA(a), litFromD(d)}, nil
	case 0x55:
		return LOOP{rbaseFromA(a), jumpFromD(d)}, nil
	case 0x56:
		return ILOOP{rbaseFromA(a), jumpFromD(d)}, nil
	case 0x57:
		return JLOOP{rbaseFromA(a), litFromD(d)}, nil
	case 0x58:
		return JMP{rbaseFromA(a), jumpFromD(d)}, nil
	case 0x59:
		return FUNCF{rbaseFromA(a)}, nil
	case 0x5a:
		return IFUNCF{rbaseFromA(a)}, nil
	case 0x5b:
		return JFUNCF{rbaseFromA(a), litFromD(d)}, nil
	case 0x5c:
		return FUNCV{rbaseFromA(a)}, nil
	case 0x5d:
		return IFUNCV{rbaseFromA(a)}, nil
	case 0x5e:
		return JFUNCV{rbaseFromA(a), litFromD(d)}, nil
	case 0x5f:
		return FUNCC{rbaseFromA(a)}, nil
	case 0x60:
		return FUNCCW{rbaseFromA(a)}, nil
	default:
		return nil, bcerr.New(bcerr.KindUnknownInsOpcode, fmt.Sprintf("opcode byte %#02x", getOp(ins)))
	}
}
