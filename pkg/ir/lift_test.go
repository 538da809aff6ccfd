package ir

import (
	"bytes"
	"testing"

	"github.com/oisee/bcdump/pkg/bytecode"
	"github.com/oisee/bcdump/pkg/resolver"
)

// instrABC packs a 32-bit instruction word with three 8-bit operands,
// matching pkg/opcode's bit layout (op, A, B, C from low byte to high).
func instrABC(op, a, b, c uint8) uint32 {
	return uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24
}

// instrD packs a 32-bit instruction word with an 8-bit A operand and a
// 16-bit wide D operand occupying the B/C byte positions.
func instrD(op, a uint8, d uint16) uint32 {
	return instrABC(op, a, uint8(d), uint8(d>>8))
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func buildPrototypePayload(instrs []uint32) []byte {
	var buf []byte
	buf = append(buf, 0, 0, 0, 0) // flags, numParams, frameSize, numUpvalues
	buf = append(buf, 0x00)       // size_global_consts
	buf = append(buf, 0x00)       // size_num_consts
	buf = append(buf, byte(len(instrs)))
	for _, ins := range instrs {
		buf = append(buf, le32(ins)...)
	}
	return buf
}

func buildDump(instrs []uint32) []byte {
	payload := buildPrototypePayload(instrs)
	var buf []byte
	buf = append(buf, 0x1b, 0x4c, 0x4a, 0x02, byte(bytecode.FlagStrip))
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, 0x00)
	return buf
}

func loadSoleProto(t *testing.T, instrs []uint32) *bytecode.Prototype {
	t.Helper()
	d, err := bytecode.LoadDump(bytes.NewReader(buildDump(instrs)))
	if err != nil {
		t.Fatalf("LoadDump: %v", err)
	}
	protos := d.Prototypes()
	if len(protos) != 1 {
		t.Fatalf("expected 1 prototype, got %d", len(protos))
	}
	return protos[0]
}

const (
	opISLT  = 0x00
	opCAT   = 0x26
	opKNIL  = 0x2c
	opTNEW  = 0x34
	opTGETV = 0x38
	opCALLM = 0x41
	opCALL  = 0x42
	opRETM  = 0x49
	opRET0  = 0x4b
	opMOV   = 0x12
	opADDVV = 0x20
	opJMP   = 0x58
)

func TestLiftSimpleArithmeticBlock(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrD(opMOV, 2, 1),
		instrABC(opADDVV, 3, 1, 2),
		instrD(opRET0, 0, 0),
	})

	cfg, _, err := Lift(proto)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if cfg.NodeCount() != 1 {
		t.Fatalf("expected 1 block, got %d", cfg.NodeCount())
	}
	block, ok := cfg.NodeWeight(0)
	if !ok {
		t.Fatal("missing block at 0")
	}
	if len(block.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %#v", len(block.Stmts), block.Stmts)
	}

	mov, ok := block.Stmts[0].(SetVars)
	if !ok || len(mov.Vars) != 1 || mov.Vars[0] != (Var{Slot: 2}) || mov.Value != (Var{Slot: 1}) {
		t.Fatalf("unexpected MOV translation: %#v", block.Stmts[0])
	}
	add, ok := block.Stmts[1].(SetVars)
	if !ok || len(add.Vars) != 1 || add.Vars[0] != (Var{Slot: 3}) {
		t.Fatalf("unexpected ADDVV destination: %#v", block.Stmts[1])
	}
	sum, ok := add.Value.(Add)
	if !ok || sum.Left != (Var{Slot: 1}) || sum.Right != (Var{Slot: 2}) {
		t.Fatalf("unexpected ADDVV operands: %#v", add.Value)
	}
	if _, ok := block.Stmts[2].(Return); !ok {
		t.Fatalf("expected Return, got %#v", block.Stmts[2])
	}
}

func TestLiftComparisonBranchEdges(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrD(opISLT, 0, 1),        // 0
		instrD(opJMP, 0, 0x8001),    // 1: jump offset +1 -> targets 3
		instrD(opRET0, 0, 0),        // 2: False fallthrough
		instrD(opRET0, 0, 0),        // 3: True destination
	})

	cfg, _, err := Lift(proto)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if cfg.NodeCount() != 3 {
		t.Fatalf("expected 3 blocks, got %d", cfg.NodeCount())
	}

	entry, ok := cfg.NodeWeight(0)
	if !ok || len(entry.Stmts) != 1 {
		t.Fatalf("unexpected entry block: %#v ok=%v", entry, ok)
	}
	cond, ok := entry.Stmts[0].(If)
	if !ok {
		t.Fatalf("expected If, got %#v", entry.Stmts[0])
	}
	lt, ok := cond.Cond.(Lt)
	if !ok || lt.Left != (Var{Slot: 0}) || lt.Right != (Var{Slot: 1}) {
		t.Fatalf("unexpected comparison: %#v", cond.Cond)
	}

	var sawTrueTo3, sawFalseTo2 bool
	for _, idx := range cfg.Outputs(0) {
		switch cfg.EdgeWeight(idx) {
		case resolver.True:
			if cfg.EdgeTo(idx) == 3 {
				sawTrueTo3 = true
			}
		case resolver.False:
			if cfg.EdgeTo(idx) == 2 {
				sawFalseTo2 = true
			}
		}
	}
	if !sawTrueTo3 || !sawFalseTo2 {
		t.Fatalf("missing expected branch edges, outputs=%v", cfg.Outputs(0))
	}
}

func TestLiftCallMultresChaining(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrABC(opCALL, 0, 0, 3),  // open-ended: results unknown, multres = 2
		instrABC(opCALLM, 5, 2, 0), // consumes the 2 pending multres values
		instrD(opRET0, 0, 0),
	})

	cfg, _, err := Lift(proto)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	block, _ := cfg.NodeWeight(0)
	if len(block.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %#v", len(block.Stmts), block.Stmts)
	}

	first, ok := block.Stmts[0].(Call)
	if !ok || first.Results != nil {
		t.Fatalf("expected open-ended CALL with no fixed results, got %#v", block.Stmts[0])
	}
	wantFirstArgs := []Expr{Var{Slot: 0}, Var{Slot: 1}, Var{Slot: 2}}
	if len(first.Args) != len(wantFirstArgs) {
		t.Fatalf("CALL args = %#v, want %#v", first.Args, wantFirstArgs)
	}

	second, ok := block.Stmts[1].(Call)
	if !ok {
		t.Fatalf("expected CALLM translation, got %#v", block.Stmts[1])
	}
	if len(second.Results) != 1 || second.Results[0] != (Var{Slot: 5}) {
		t.Fatalf("CALLM results = %#v, want [Var{5}]", second.Results)
	}
	wantSecondArgs := []Expr{Var{Slot: 5}, Var{Slot: 6}, Var{Slot: 7}}
	if len(second.Args) != len(wantSecondArgs) {
		t.Fatalf("CALLM args = %#v, want the function slot plus 2 multres slots", second.Args)
	}
	for i, want := range wantSecondArgs {
		if second.Args[i] != want {
			t.Fatalf("CALLM args[%d] = %#v, want %#v", i, second.Args[i], want)
		}
	}
}

func TestLiftKnilRange(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrD(opKNIL, 2, 4),
		instrD(opRET0, 0, 0),
	})

	cfg, _, err := Lift(proto)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	block, _ := cfg.NodeWeight(0)
	knil, ok := block.Stmts[0].(SetVars)
	if !ok {
		t.Fatalf("expected SetVars, got %#v", block.Stmts[0])
	}
	if _, ok := knil.Value.(Nil); !ok {
		t.Fatalf("expected Nil value, got %#v", knil.Value)
	}
	want := []Var{{Slot: 2}, {Slot: 3}, {Slot: 4}}
	if len(knil.Vars) != len(want) {
		t.Fatalf("KNIL range = %#v, want %#v", knil.Vars, want)
	}
	for i, v := range want {
		if knil.Vars[i] != v {
			t.Fatalf("KNIL range[%d] = %#v, want %#v", i, knil.Vars[i], v)
		}
	}
}

func TestLiftCatRejectsEmptyRange(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrABC(opCAT, 0, 0, 0),
		instrD(opRET0, 0, 0),
	})

	if _, _, err := Lift(proto); err == nil {
		t.Fatal("expected an error for a CAT with c <= b")
	}
}

func TestLiftTableNewRegistersTableSlot(t *testing.T) {
	proto := loadSoleProto(t, []uint32{
		instrD(opTNEW, 4, 0),
		instrABC(opTGETV, 0, 4, 1),
		instrD(opRET0, 0, 0),
	})

	cfg, slots, err := Lift(proto)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	block, _ := cfg.NodeWeight(0)
	if _, ok := block.Stmts[0].(Unimplemented); !ok {
		t.Fatalf("expected Unimplemented for TNEW, got %#v", block.Stmts[0])
	}

	get, ok := block.Stmts[1].(SetVars)
	if !ok || len(get.Vars) != 1 || get.Vars[0] != (Var{Slot: 0}) {
		t.Fatalf("unexpected TGETV destination: %#v", block.Stmts[1])
	}
	tbl, ok := get.Value.(Table)
	if !ok || tbl.Container != (Var{Slot: 4}) || tbl.Key != (Var{Slot: 1}) {
		t.Fatalf("unexpected TGETV table access: %#v", get.Value)
	}

	vi, ok := slots.Lookup(4, false)
	if !ok || !vi.IsTable {
		t.Fatalf("slot 4 should be registered as a table, got %#v ok=%v", vi, ok)
	}
}
