// Package opcode decodes 32-bit bytecode instruction words into a typed
// Op value: a closed set of roughly 95 variants, each carrying the operand
// fields the original encoding gives it.
package opcode

import "github.com/oisee/bcdump/pkg/bcerr"

var errInvalidPri = bcerr.New(bcerr.KindInvalidPriValue, "primitive operand not in {0,1,2}")

// Kind identifies which Op variant a decoded instruction holds.
type Kind uint8

const (
	// Comparison ops
	KISLT Kind = iota
	KISGE
	KISLE
	KISGT
	KISEQV
	KISNEV
	KISEQS
	KISNES
	KISEQN
	KISNEN
	KISEQP
	KISNEP
	// Unary test and copy ops
	KISTC
	KISFC
	KIST
	KISF
	KISTYPE
	KISNUM
	// Unary ops
	KMOV
	KNOT
	KUNM
	KLEN
	// Binary ops
	KADDVN
	KSUBVN
	KMULVN
	KDIVVN
	KMODVN
	KADDNV
	KSUBNV
	KMULNV
	KDIVNV
	KMODNV
	KADDVV
	KSUBVV
	KMULVV
	KDIVVV
	KMODVV
	KPOW
	KCAT
	// Constant ops
	KKSTR
	KKCDATA
	KKSHORT
	KKNUM
	KKPRI
	KKNIL
	// Upvalue and function ops
	KUGET
	KUSETV
	KUSETS
	KUSETN
	KUSETP
	KUCLO
	KFNEW
	// Table ops
	KTNEW
	KTDUP
	KGGET
	KGSET
	KTGETV
	KTGETS
	KTGETB
	KTGETR
	KTSETV
	KTSETS
	KTSETB
	KTSETM
	KTSETR
	// Calls and vararg handling
	KCALLM
	KCALL
	KCALLMT
	KCALLT
	KITERC
	KITERN
	KVARG
	KISNEXT
	// Returns
	KRETM
	KRET
	KRET0
	KRET1
	// Loops and branches
	KFORI
	KJFORI
	KFORL
	KIFORL
	KJFORL
	KITERL
	KIITERL
	KJITERL
	KLOOP
	KILOOP
	KJLOOP
	KJMP
	// Function headers
	KFUNCF
	KIFUNCF
	KJFUNCF
	KFUNCV
	KIFUNCV
	KJFUNCV
	KFUNCC
	KFUNCCW

	kindCount
)

var kindNames = [kindCount]string{
	KISLT: "ISLT", KISGE: "ISGE", KISLE: "ISLE", KISGT: "ISGT",
	KISEQV: "ISEQV", KISNEV: "ISNEV", KISEQS: "ISEQS", KISNES: "ISNES",
	KISEQN: "ISEQN", KISNEN: "ISNEN", KISEQP: "ISEQP", KISNEP: "ISNEP",
	KISTC: "ISTC", KISFC: "ISFC", KIST: "IST", KISF: "ISF",
	KISTYPE: "ISTYPE", KISNUM: "ISNUM",
	KMOV: "MOV", KNOT: "NOT", KUNM: "UNM", KLEN: "LEN",
	KADDVN: "ADDVN", KSUBVN: "SUBVN", KMULVN: "MULVN", KDIVVN: "DIVVN", KMODVN: "MODVN",
	KADDNV: "ADDNV", KSUBNV: "SUBNV", KMULNV: "MULNV", KDIVNV: "DIVNV", KMODNV: "MODNV",
	KADDVV: "ADDVV", KSUBVV: "SUBVV", KMULVV: "MULVV", KDIVVV: "DIVVV", KMODVV: "MODVV",
	KPOW: "POW", KCAT: "CAT",
	KKSTR: "KSTR", KKCDATA: "KCDATA", KKSHORT: "KSHORT", KKNUM: "KNUM", KKPRI: "KPRI", KKNIL: "KNIL",
	KUGET: "UGET", KUSETV: "USETV", KUSETS: "USETS", KUSETN: "USETN", KUSETP: "USETP",
	KUCLO: "UCLO", KFNEW: "FNEW",
	KTNEW: "TNEW", KTDUP: "TDUP", KGGET: "GGET", KGSET: "GSET",
	KTGETV: "TGETV", KTGETS: "TGETS", KTGETB: "TGETB", KTGETR: "TGETR",
	KTSETV: "TSETV", KTSETS: "TSETS", KTSETB: "TSETB", KTSETM: "TSETM", KTSETR: "TSETR",
	KCALLM: "CALLM", KCALL: "CALL", KCALLMT: "CALLMT", KCALLT: "CALLT",
	KITERC: "ITERC", KITERN: "ITERN", KVARG: "VARG", KISNEXT: "ISNEXT",
	KRETM: "RETM", KRET: "RET", KRET0: "RET0", KRET1: "RET1",
	KFORI: "FORI", KJFORI: "JFORI", KFORL: "FORL", KIFORL: "IFORL", KJFORL: "JFORL",
	KITERL: "ITERL", KIITERL: "IITERL", KJITERL: "JITERL",
	KLOOP: "LOOP", KILOOP: "ILOOP", KJLOOP: "JLOOP", KJMP: "JMP",
	KFUNCF: "FUNCF", KIFUNCF: "IFUNCF", KJFUNCF: "JFUNCF",
	KFUNCV: "FUNCV", KIFUNCV: "IFUNCV", KJFUNCV: "JFUNCV",
	KFUNCC: "FUNCC", KFUNCCW: "FUNCCW",
}

func (k Kind) String() string {
	if int(k) < 0 || k >= kindCount {
		return "INVALID"
	}
	return kindNames[k]
}

// Op is implemented by every decoded instruction variant.
type Op interface {
	Kind() Kind
}

// IsJump reports whether an Op variant carries a Jump operand pointing at
// another instruction offset.
func IsJump(op Op) bool {
	switch op.(type) {
	case UCLO, ISNEXT, ITERL, IITERL, FORI, JFORI, FORL, IFORL, LOOP, ILOOP, JMP:
		return true
	default:
		return false
	}
}
