package opcode

// Variant structs, one per Kind, each carrying exactly the typed operand
// fields the instruction format gives that opcode (spec §3/§4.2). Grouped
// under the same category headers as the instruction catalog.

// Comparison ops
type (
	ISLT  struct{ A, D Var }
	ISGE  struct{ A, D Var }
	ISLE  struct{ A, D Var }
	ISGT  struct{ A, D Var }
	ISEQV struct{ A, D Var }
	ISNEV struct{ A, D Var }
	ISEQS struct {
		A Var
		D Str
	}
	ISNES struct {
		A Var
		D Str
	}
	ISEQN struct {
		A Var
		D Num
	}
	ISNEN struct {
		A Var
		D Num
	}
	ISEQP struct {
		A Var
		D Pri
	}
	ISNEP struct {
		A Var
		D Pri
	}
)

func (ISLT) Kind() Kind  { return KISLT }
func (ISGE) Kind() Kind  { return KISGE }
func (ISLE) Kind() Kind  { return KISLE }
func (ISGT) Kind() Kind  { return KISGT }
func (ISEQV) Kind() Kind { return KISEQV }
func (ISNEV) Kind() Kind { return KISNEV }
func (ISEQS) Kind() Kind { return KISEQS }
func (ISNES) Kind() Kind { return KISNES }
func (ISEQN) Kind() Kind { return KISEQN }
func (ISNEN) Kind() Kind { return KISNEN }
func (ISEQP) Kind() Kind { return KISEQP }
func (ISNEP) Kind() Kind { return KISNEP }

// Unary test and copy ops
type (
	ISTC struct {
		A Dst
		D Var
	}
	ISFC struct {
		A Dst
		D Var
	}
	IST struct{ D Var }
	ISF struct{ D Var }
	ISTYPE struct {
		A Var
		D Lit
	}
	ISNUM struct {
		A Var
		D Lit
	}
)

func (ISTC) Kind() Kind   { return KISTC }
func (ISFC) Kind() Kind   { return KISFC }
func (IST) Kind() Kind    { return KIST }
func (ISF) Kind() Kind    { return KISF }
func (ISTYPE) Kind() Kind { return KISTYPE }
func (ISNUM) Kind() Kind  { return KISNUM }

// Unary ops
type (
	MOV struct {
		A Dst
		D Var
	}
	NOT struct {
		A Dst
		D Var
	}
	UNM struct {
		A Dst
		D Var
	}
	LEN struct {
		A Dst
		D Var
	}
)

func (MOV) Kind() Kind { return KMOV }
func (NOT) Kind() Kind { return KNOT }
func (UNM) Kind() Kind { return KUNM }
func (LEN) Kind() Kind { return KLEN }

// Binary ops
type (
	ADDVN struct {
		A Dst
		B Var
		C Num
	}
	SUBVN struct {
		A Dst
		B Var
		C Num
	}
	MULVN struct {
		A Dst
		B Var
		C Num
	}
	DIVVN struct {
		A Dst
		B Var
		C Num
	}
	MODVN struct {
		A Dst
		B Var
		C Num
	}
	ADDNV struct {
		A Dst
		B Var
		C Num
	}
	SUBNV struct {
		A Dst
		B Var
		C Num
	}
	MULNV struct {
		A Dst
		B Var
		C Num
	}
	DIVNV struct {
		A Dst
		B Var
		C Num
	}
	MODNV struct {
		A Dst
		B Var
		C Num
	}
	ADDVV struct {
		A Dst
		B, C Var
	}
	SUBVV struct {
		A    Dst
		B, C Var
	}
	MULVV struct {
		A    Dst
		B, C Var
	}
	DIVVV struct {
		A    Dst
		B, C Var
	}
	MODVV struct {
		A    Dst
		B, C Var
	}
	POW struct {
		A    Dst
		B, C Var
	}
	CAT struct {
		A    Dst
		B, C RBase
	}
)

func (ADDVN) Kind() Kind { return KADDVN }
func (SUBVN) Kind() Kind { return KSUBVN }
func (MULVN) Kind() Kind { return KMULVN }
func (DIVVN) Kind() Kind { return KDIVVN }
func (MODVN) Kind() Kind { return KMODVN }
func (ADDNV) Kind() Kind { return KADDNV }
func (SUBNV) Kind() Kind { return KSUBNV }
func (MULNV) Kind() Kind { return KMULNV }
func (DIVNV) Kind() Kind { return KDIVNV }
func (MODNV) Kind() Kind { return KMODNV }
func (ADDVV) Kind() Kind { return KADDVV }
func (SUBVV) Kind() Kind { return KSUBVV }
func (MULVV) Kind() Kind { return KMULVV }
func (DIVVV) Kind() Kind { return KDIVVV }
func (MODVV) Kind() Kind { return KMODVV }
func (POW) Kind() Kind   { return KPOW }
func (CAT) Kind() Kind   { return KCAT }

// Constant ops
type (
	KSTR struct {
		A Dst
		D Str
	}
	KCDATA struct {
		A Dst
		D CData
	}
	KSHORT struct {
		A Dst
		D LitS
	}
	KNUM struct {
		A Dst
		D Num
	}
	KPRI struct {
		A Dst
		D Pri
	}
	KNIL struct{ A, D Base }
)

func (KSTR) Kind() Kind   { return KKSTR }
func (KCDATA) Kind() Kind { return KKCDATA }
func (KSHORT) Kind() Kind { return KKSHORT }
func (KNUM) Kind() Kind   { return KKNUM }
func (KPRI) Kind() Kind   { return KKPRI }
func (KNIL) Kind() Kind   { return KKNIL }

// Upvalue and function ops
type (
	UGET struct {
		A Dst
		D UV
	}
	USETV struct {
		A UV
		D Var
	}
	USETS struct {
		A UV
		D Str
	}
	USETN struct {
		A UV
		D Num
	}
	USETP struct {
		A UV
		D Pri
	}
	UCLO struct {
		A RBase
		D Jump
	}
	FNEW struct {
		A Dst
		D Func
	}
)

func (UGET) Kind() Kind  { return KUGET }
func (USETV) Kind() Kind { return KUSETV }
func (USETS) Kind() Kind { return KUSETS }
func (USETN) Kind() Kind { return KUSETN }
func (USETP) Kind() Kind { return KUSETP }
func (UCLO) Kind() Kind  { return KUCLO }
func (FNEW) Kind() Kind  { return KFNEW }

// Table ops
type (
	TNEW struct {
		A Dst
		D Lit
	}
	TDUP struct {
		A Dst
		D Tab
	}
	GGET struct {
		A Dst
		D Str
	}
	GSET struct {
		A Var
		D Str
	}
	TGETV struct {
		A    Dst
		B, C Var
	}
	TGETS struct {
		A Dst
		B Var
		C Str
	}
	TGETB struct {
		A Dst
		B Var
		C Lit
	}
	TGETR struct {
		A    Dst
		B, C Var
	}
	TSETV struct{ A, B, C Var }
	TSETS struct {
		A, B Var
		C    Str
	}
	TSETB struct {
		A, B Var
		C    Lit
	}
	TSETM struct {
		A Base
		D Num
	}
	TSETR struct{ A, B, C Var }
)

func (TNEW) Kind() Kind  { return KTNEW }
func (TDUP) Kind() Kind  { return KTDUP }
func (GGET) Kind() Kind  { return KGGET }
func (GSET) Kind() Kind  { return KGSET }
func (TGETV) Kind() Kind { return KTGETV }
func (TGETS) Kind() Kind { return KTGETS }
func (TGETB) Kind() Kind { return KTGETB }
func (TGETR) Kind() Kind { return KTGETR }
func (TSETV) Kind() Kind { return KTSETV }
func (TSETS) Kind() Kind { return KTSETS }
func (TSETB) Kind() Kind { return KTSETB }
func (TSETM) Kind() Kind { return KTSETM }
func (TSETR) Kind() Kind { return KTSETR }

// Calls and vararg handling
type (
	CALLM struct {
		A    Base
		B, C Lit
	}
	CALL struct {
		A    Base
		B, C Lit
	}
	CALLMT struct {
		A Base
		D Lit
	}
	CALLT struct {
		A Base
		D Lit
	}
	ITERC struct {
		A    Base
		B, C Lit
	}
	ITERN struct {
		A    Base
		B, C Lit
	}
	VARG struct {
		A    Base
		B, C Lit
	}
	ISNEXT struct {
		A Base
		D Jump
	}
)

func (CALLM) Kind() Kind  { return KCALLM }
func (CALL) Kind() Kind   { return KCALL }
func (CALLMT) Kind() Kind { return KCALLMT }
func (CALLT) Kind() Kind  { return KCALLT }
func (ITERC) Kind() Kind  { return KITERC }
func (ITERN) Kind() Kind  { return KITERN }
func (VARG) Kind() Kind   { return KVARG }
func (ISNEXT) Kind() Kind { return KISNEXT }

// Returns
type (
	RETM struct {
		A Base
		D Lit
	}
	RET struct {
		A RBase
		D Lit
	}
	RET0 struct {
		A RBase
		D Lit
	}
	RET1 struct {
		A RBase
		D Lit
	}
)

func (RETM) Kind() Kind { return KRETM }
func (RET) Kind() Kind  { return KRET }
func (RET0) Kind() Kind { return KRET0 }
func (RET1) Kind() Kind { return KRET1 }

// Loops and branches
type (
	FORI struct {
		A Base
		D Jump
	}
	JFORI struct {
		A Base
		D Jump
	}
	FORL struct {
		A Base
		D Jump
	}
	IFORL struct {
		A Base
		D Jump
	}
	JFORL struct {
		A Base
		D Lit
	}
	ITERL struct {
		A Base
		D Jump
	}
	IITERL struct {
		A Base
		D Jump
	}
	JITERL struct {
		A Base
		D Lit
	}
	LOOP struct {
		A RBase
		D Jump
	}
	ILOOP struct {
		A RBase
		D Jump
	}
	JLOOP struct {
		A RBase
		D Lit
	}
	JMP struct {
		A RBase
		D Jump
	}
)

func (FORI) Kind() Kind   { return KFORI }
func (JFORI) Kind() Kind  { return KJFORI }
func (FORL) Kind() Kind   { return KFORL }
func (IFORL) Kind() Kind  { return KIFORL }
func (JFORL) Kind() Kind  { return KJFORL }
func (ITERL) Kind() Kind  { return KITERL }
func (IITERL) Kind() Kind { return KIITERL }
func (JITERL) Kind() Kind { return KJITERL }
func (LOOP) Kind() Kind   { return KLOOP }
func (ILOOP) Kind() Kind  { return KILOOP }
func (JLOOP) Kind() Kind  { return KJLOOP }
func (JMP) Kind() Kind    { return KJMP }

// Function headers
type (
	FUNCF struct{ A RBase }
	IFUNCF struct{ A RBase }
	JFUNCF struct {
		A RBase
		D Lit
	}
	FUNCV struct{ A RBase }
	IFUNCV struct{ A RBase }
	JFUNCV struct {
		A RBase
		D Lit
	}
	FUNCC  struct{ A RBase }
	FUNCCW struct{ A RBase }
)

func (FUNCF) Kind() Kind  { return KFUNCF }
func (IFUNCF) Kind() Kind { return KIFUNCF }
func (JFUNCF) Kind() Kind { return KJFUNCF }
func (FUNCV) Kind() Kind  { return KFUNCV }
func (IFUNCV) Kind() Kind { return KIFUNCV }
func (JFUNCV) Kind() Kind { return KJFUNCV }
func (FUNCC) Kind() Kind  { return KFUNCC }
func (FUNCCW) Kind() Kind { return KFUNCCW }
