package ir

import (
	"fmt"

	"github.com/oisee/bcdump/pkg/bcerr"
	"github.com/oisee/bcdump/pkg/bytecode"
	"github.com/oisee/bcdump/pkg/graph"
	"github.com/oisee/bcdump/pkg/opcode"
)

// Lift translates proto's bytecode CFG into an IR CFG by structure-copying
// it and then walking each bytecode block's instructions in order,
// producing one or more IR statements per instruction (spec §4.7). The
// returned SlotTable records every stack slot and upvalue the lifter
// touched, with usage counts and table/upvalue attributes.
func Lift(proto *bytecode.Prototype) (*CFG, *SlotTable, error) {
	bcg := proto.CFG()
	irg := graph.StructureCopy[Block](bcg)
	slots := NewSlotTable()

	for _, key := range bcg.Keys() {
		block, _ := bcg.NodeWeight(key)
		l := &lifter{proto: proto, slots: slots}
		stmts, err := l.liftBlock(block.Data)
		if err != nil {
			return nil, nil, err
		}
		irg.SetNodeWeight(key, Block{Stmts: stmts})
	}

	return irg, slots, nil
}

// lifter holds the per-block translation state. multres remembers the
// multi-result width of the last open-ended call (a CALL or CALLM with B=0,
// whose result count is not statically known); it is valid
// only for the instruction immediately following the one that set it,
// mirroring the bytecode's own convention that a multres value is consumed
// by the very next CALLM/RETM/TSETM/CALLMT.
type lifter struct {
	proto        *bytecode.Prototype
	slots        *SlotTable
	multres      int
	multresValid bool
}

func (l *lifter) liftBlock(words []uint32) ([]Stmt, error) {
	var stmts []Stmt
	for _, word := range words {
		op, err := opcode.Decode(word)
		if err != nil {
			return nil, err
		}
		s, isSetter, err := l.liftOp(op)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s...)
		l.multresValid = isSetter
	}
	return stmts, nil
}

func (l *lifter) srcSlot(idx uint16) Var   { return l.slots.Ref(idx, false, false) }
func (l *lifter) tableSlot(idx uint16) Var { return l.slots.Ref(idx, false, true) }
func (l *lifter) uvVar(idx uint16) Var     { return l.slots.Ref(idx, true, false) }

func (l *lifter) globalConst(idx uint16) *bytecode.GlobalConst {
	if int(idx) < len(l.proto.GlobalConsts) {
		return &l.proto.GlobalConsts[idx]
	}
	return nil
}

func (l *lifter) resolveStr(idx opcode.Str) Expr {
	if gc := l.globalConst(uint16(idx)); gc != nil {
		return Str{Value: gc.Str}
	}
	return Str{}
}

func (l *lifter) resolveClosure(idx opcode.Func) Expr {
	if gc := l.globalConst(uint16(idx)); gc != nil && gc.Kind == bytecode.GCProtoChild {
		return Closure{ProtoIndex: gc.ProtoChildIndex}
	}
	return Closure{ProtoIndex: -1}
}

func priExpr(p opcode.Pri) Expr {
	switch p {
	case opcode.PriFalse:
		return Bool{Value: false}
	case opcode.PriTrue:
		return Bool{Value: true}
	default:
		return Nil{}
	}
}

// buildCallArgs reproduces "Var(a) followed by Var(a+1)..Var(a+count-1)"
// (spec §4.7), shared by CALL/CALLM/CALLT/CALLMT's fixed argument window.
func (l *lifter) buildCallArgs(a uint16, count uint16) []Expr {
	args := []Expr{l.srcSlot(a)}
	for idx := a + 1; count > 1 && idx <= a+count-1; idx++ {
		args = append(args, l.srcSlot(idx))
	}
	return args
}

// callArgWindowWidth is the number of slots buildCallArgs actually
// consumes: count when at least one argument is declared, or just the
// function's own slot when count is 0 (an all-multres argument list).
func callArgWindowWidth(count uint16) uint16 {
	if count == 0 {
		return 1
	}
	return count
}

func (l *lifter) callResults(a uint16, b uint16) []Var {
	if b == 0 {
		return nil
	}
	var results []Var
	for idx := a; idx < a+b-1; idx++ {
		results = append(results, l.srcSlot(idx))
	}
	return results
}

// consumeMultres appends the trailing arguments contributed by the last
// open-ended call, if one is still pending, starting right after the fixed
// argument window of width count at base a.
func (l *lifter) consumeMultres(args []Expr, a, count uint16) []Expr {
	if !l.multresValid {
		return args
	}
	base := a + count
	for i := 0; i < l.multres; i++ {
		args = append(args, l.srcSlot(base+uint16(i)))
	}
	return args
}

// liftOp translates one decoded instruction into zero or more IR
// statements. isSetter reports whether this instruction leaves a fresh
// multres value for the immediately following instruction to consume.
func (l *lifter) liftOp(op opcode.Op) (stmts []Stmt, isSetter bool, err error) {
	switch v := op.(type) {

	// Comparisons: each records a conditional test; the actual branch
	// lives on the CFG edge emitted by the resolver.
	case opcode.ISLT:
		return []Stmt{If{Cond: Lt{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISGE:
		return []Stmt{If{Cond: Ge{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISLE:
		return []Stmt{If{Cond: Le{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISGT:
		return []Stmt{If{Cond: Gt{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISEQV:
		return []Stmt{If{Cond: Eq{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISNEV:
		return []Stmt{If{Cond: Ne{l.srcSlot(uint16(v.A)), l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISEQS:
		return []Stmt{If{Cond: Eq{l.srcSlot(uint16(v.A)), l.resolveStr(v.D)}}}, false, nil
	case opcode.ISNES:
		return []Stmt{If{Cond: Ne{l.srcSlot(uint16(v.A)), l.resolveStr(v.D)}}}, false, nil
	case opcode.ISEQN:
		return []Stmt{If{Cond: Eq{l.srcSlot(uint16(v.A)), Num{Index: uint16(v.D)}}}}, false, nil
	case opcode.ISNEN:
		return []Stmt{If{Cond: Ne{l.srcSlot(uint16(v.A)), Num{Index: uint16(v.D)}}}}, false, nil
	case opcode.ISEQP:
		return []Stmt{If{Cond: Eq{l.srcSlot(uint16(v.A)), priExpr(v.D)}}}, false, nil
	case opcode.ISNEP:
		return []Stmt{If{Cond: Ne{l.srcSlot(uint16(v.A)), priExpr(v.D)}}}, false, nil

	// Unary test and copy.
	case opcode.ISTC:
		dst := l.srcSlot(uint16(v.A))
		cond := l.srcSlot(uint16(v.D))
		return []Stmt{SetVars{Vars: []Var{dst}, Value: cond}, If{Cond: cond}}, false, nil
	case opcode.ISFC:
		dst := l.srcSlot(uint16(v.A))
		cond := l.srcSlot(uint16(v.D))
		return []Stmt{SetVars{Vars: []Var{dst}, Value: cond}, If{Cond: Not{cond}}}, false, nil
	case opcode.IST:
		return []Stmt{If{Cond: l.srcSlot(uint16(v.D))}}, false, nil
	case opcode.ISF:
		return []Stmt{If{Cond: Not{l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.ISTYPE:
		return []Stmt{Unimplemented{Opcode: "ISTYPE"}}, false, nil
	case opcode.ISNUM:
		return []Stmt{Unimplemented{Opcode: "ISNUM"}}, false, nil

	// Unary.
	case opcode.MOV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, l.srcSlot(uint16(v.D))}}, false, nil
	case opcode.NOT:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Not{l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.UNM:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Minus{l.srcSlot(uint16(v.D))}}}, false, nil
	case opcode.LEN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Len{l.srcSlot(uint16(v.D))}}}, false, nil

	// Binary, var-then-const order.
	case opcode.ADDVN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Add{l.srcSlot(uint16(v.B)), Num{uint16(v.C)}}}}, false, nil
	case opcode.SUBVN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Sub{l.srcSlot(uint16(v.B)), Num{uint16(v.C)}}}}, false, nil
	case opcode.MULVN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mul{l.srcSlot(uint16(v.B)), Num{uint16(v.C)}}}}, false, nil
	case opcode.DIVVN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Div{l.srcSlot(uint16(v.B)), Num{uint16(v.C)}}}}, false, nil
	case opcode.MODVN:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mod{l.srcSlot(uint16(v.B)), Num{uint16(v.C)}}}}, false, nil

	// Binary, const-then-var order (constant on the left).
	case opcode.ADDNV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Add{Num{uint16(v.C)}, l.srcSlot(uint16(v.B))}}}, false, nil
	case opcode.SUBNV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Sub{Num{uint16(v.C)}, l.srcSlot(uint16(v.B))}}}, false, nil
	case opcode.MULNV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mul{Num{uint16(v.C)}, l.srcSlot(uint16(v.B))}}}, false, nil
	case opcode.DIVNV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Div{Num{uint16(v.C)}, l.srcSlot(uint16(v.B))}}}, false, nil
	case opcode.MODNV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mod{Num{uint16(v.C)}, l.srcSlot(uint16(v.B))}}}, false, nil

	// Binary, var-then-var.
	case opcode.ADDVV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Add{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.SUBVV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Sub{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.MULVV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mul{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.DIVVV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Div{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.MODVV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Mod{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.POW:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Pow{l.srcSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil

	case opcode.CAT:
		if uint16(v.C) <= uint16(v.B) {
			return nil, false, bcerr.New(bcerr.KindUnexpectedInsOpcode, "CAT requires c > b")
		}
		var args []Expr
		for idx := uint16(v.B); idx <= uint16(v.C); idx++ {
			args = append(args, l.srcSlot(idx))
		}
		return []Stmt{Cat{Dst: l.srcSlot(uint16(v.A)), Args: args}}, false, nil

	// Constants.
	case opcode.KSTR:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, l.resolveStr(v.D)}}, false, nil
	case opcode.KCDATA:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, CData{Index: uint16(v.D)}}}, false, nil
	case opcode.KSHORT:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Short{Value: int16(v.D)}}}, false, nil
	case opcode.KNUM:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Num{Index: uint16(v.D)}}}, false, nil
	case opcode.KPRI:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, priExpr(v.D)}}, false, nil
	case opcode.KNIL:
		a, d := uint16(v.A), uint16(v.D)
		if d <= a {
			return nil, false, bcerr.New(bcerr.KindUnexpectedInsOpcode, "KNIL requires b > a")
		}
		var vars []Var
		for idx := a; idx <= d; idx++ {
			vars = append(vars, l.srcSlot(idx))
		}
		return []Stmt{SetVars{Vars: vars, Value: Nil{}}}, false, nil

	// Upvalues.
	case opcode.UGET:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, l.uvVar(uint16(v.D))}}, false, nil
	case opcode.USETV:
		return []Stmt{SetVars{[]Var{l.uvVar(uint16(v.A))}, l.srcSlot(uint16(v.D))}}, false, nil
	case opcode.USETS:
		return []Stmt{SetVars{[]Var{l.uvVar(uint16(v.A))}, l.resolveStr(v.D)}}, false, nil
	case opcode.USETN:
		return []Stmt{SetVars{[]Var{l.uvVar(uint16(v.A))}, Num{Index: uint16(v.D)}}}, false, nil
	case opcode.USETP:
		return []Stmt{SetVars{[]Var{l.uvVar(uint16(v.A))}, priExpr(v.D)}}, false, nil
	case opcode.UCLO:
		return nil, false, nil
	case opcode.FNEW:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, l.resolveClosure(v.D)}}, false, nil

	// Tables. TNEW/TDUP register their destination as table-typed but have
	// no representable literal-table expression in the IR's closed set.
	case opcode.TNEW:
		l.tableSlot(uint16(v.A))
		return []Stmt{Unimplemented{Opcode: "TNEW"}}, false, nil
	case opcode.TDUP:
		l.tableSlot(uint16(v.A))
		return []Stmt{Unimplemented{Opcode: "TDUP"}}, false, nil
	case opcode.GGET:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Table{GlobalTable{}, l.resolveStr(v.D)}}}, false, nil
	case opcode.GSET:
		return []Stmt{SetGlobalTableVar{Key: l.resolveStr(v.D), Value: l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.TGETV:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Table{l.tableSlot(uint16(v.B)), l.srcSlot(uint16(v.C))}}}, false, nil
	case opcode.TGETS:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Table{l.tableSlot(uint16(v.B)), l.resolveStr(v.C)}}}, false, nil
	case opcode.TGETB:
		return []Stmt{SetVars{[]Var{l.srcSlot(uint16(v.A))}, Table{l.tableSlot(uint16(v.B)), Lit{Value: uint8(v.C)}}}}, false, nil
	case opcode.TGETR:
		return []Stmt{Unimplemented{Opcode: "TGETR"}}, false, nil
	case opcode.TSETV:
		return []Stmt{SetTableVar{l.tableSlot(uint16(v.B)), l.srcSlot(uint16(v.C)), l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.TSETS:
		return []Stmt{SetTableVar{l.tableSlot(uint16(v.B)), l.resolveStr(v.C), l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.TSETB:
		return []Stmt{SetTableVar{l.tableSlot(uint16(v.B)), Lit{Value: uint8(v.C)}, l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.TSETM:
		return []Stmt{Unimplemented{Opcode: "TSETM"}}, false, nil
	case opcode.TSETR:
		return []Stmt{Unimplemented{Opcode: "TSETR"}}, false, nil

	// Calls and vararg handling.
	case opcode.CALL:
		a, b, c := uint16(v.A), uint16(v.B), uint16(v.C)
		results := l.callResults(a, b)
		args := l.buildCallArgs(a, c)
		isSetter = b == 0
		if isSetter {
			l.multres = int(c) - 1
		}
		return []Stmt{Call{Results: results, Args: args}}, isSetter, nil
	case opcode.CALLM:
		a, b, c := uint16(v.A), uint16(v.B), uint16(v.C)
		results := l.callResults(a, b)
		args := l.consumeMultres(l.buildCallArgs(a, c), a, callArgWindowWidth(c))
		isSetter = b == 0
		if isSetter {
			l.multres = int(c) - 1
		}
		return []Stmt{Call{Results: results, Args: args}}, isSetter, nil
	case opcode.CALLT:
		a, d := uint16(v.A), uint16(v.D)
		return []Stmt{TailCall{Args: l.buildCallArgs(a, d)}}, false, nil
	case opcode.CALLMT:
		a, d := uint16(v.A), uint16(v.D)
		args := l.consumeMultres(l.buildCallArgs(a, d), a, callArgWindowWidth(d))
		return []Stmt{TailCall{Args: args}}, false, nil
	case opcode.ITERC:
		a, b, c := uint16(v.A), uint16(v.B), uint16(v.C)
		return []Stmt{Call{Results: l.callResults(a, b), Args: l.buildCallArgs(a, c)}}, false, nil
	case opcode.ITERN:
		a, b, c := uint16(v.A), uint16(v.B), uint16(v.C)
		return []Stmt{Call{Results: l.callResults(a, b), Args: l.buildCallArgs(a, c)}}, false, nil
	case opcode.VARG:
		return []Stmt{Unimplemented{Opcode: "VARG"}}, false, nil
	case opcode.ISNEXT:
		return nil, false, nil

	// Returns.
	case opcode.RETM:
		a, d := uint16(v.A), uint16(v.D)
		var width uint16
		if d >= 2 && d-2 >= a {
			width = d - 2 - a + 1
		}
		var args []Expr
		for idx := a; idx < a+width; idx++ {
			args = append(args, l.srcSlot(idx))
		}
		args = l.consumeMultres(args, a, width)
		return []Stmt{Return{Args: args}}, false, nil
	case opcode.RET:
		a, d := uint16(v.A), uint16(v.D)
		var args []Expr
		for idx := a; d >= 2 && idx <= d-2; idx++ {
			args = append(args, l.srcSlot(idx))
		}
		return []Stmt{Return{Args: args}}, false, nil
	case opcode.RET0:
		return []Stmt{Return{}}, false, nil
	case opcode.RET1:
		return []Stmt{Return{Args: []Expr{l.srcSlot(uint16(v.A))}}}, false, nil

	// Loops and branches. FORL/IFORL/ITERL/IITERL/JMP/UCLO are pure branch
	// instructions: the resolver already encoded their targets as typed
	// CFG edges, so no IR statement is needed. JFORL/JITERL never reach
	// here (the resolver rejects them outright), but are handled the same
	// way for defensiveness.
	case opcode.FORI:
		a := uint16(v.A)
		return []Stmt{For{Args: []Expr{l.srcSlot(a), l.srcSlot(a + 1), l.srcSlot(a + 2)}}}, false, nil
	case opcode.JFORI:
		a := uint16(v.A)
		return []Stmt{For{Args: []Expr{l.srcSlot(a), l.srcSlot(a + 1), l.srcSlot(a + 2)}}}, false, nil
	case opcode.FORL, opcode.IFORL, opcode.JFORL:
		return nil, false, nil
	case opcode.ITERL, opcode.IITERL, opcode.JITERL:
		return nil, false, nil
	case opcode.LOOP:
		return []Stmt{While{Cond: l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.ILOOP:
		return []Stmt{While{Cond: l.srcSlot(uint16(v.A))}}, false, nil
	case opcode.JLOOP:
		return nil, false, nil
	case opcode.JMP:
		return nil, false, nil

	// Function-header prologue markers: no value or control-flow content
	// to lift.
	case opcode.FUNCF, opcode.IFUNCF, opcode.JFUNCF,
		opcode.FUNCV, opcode.IFUNCV, opcode.JFUNCV,
		opcode.FUNCC, opcode.FUNCCW:
		return nil, false, nil

	default:
		return nil, false, fmt.Errorf("ir: unhandled opcode %T", op)
	}
}
