package ir

// VarInfo is the registered attributes of one slot (or upvalue slot) seen
// by the lifter.
type VarInfo struct {
	Slot    uint16
	Upvalue bool
	IsTable bool
	Uses    int
}

type slotKey struct {
	slot    uint16
	upvalue bool
}

// SlotTable maps raw slot/upvalue indices to stable Var identities,
// registering each one's attributes on first reference and counting every
// reference after that.
type SlotTable struct {
	vars  map[slotKey]*VarInfo
	order []slotKey
}

// NewSlotTable returns an empty slot table.
func NewSlotTable() *SlotTable {
	return &SlotTable{vars: make(map[slotKey]*VarInfo)}
}

// Ref returns the Var for slot, registering it on first reference. isTable
// sets IsTable on registration, and a later reference with isTable set
// upgrades an already-registered slot to IsTable=true (a slot is a table if
// it is ever used as one); no reference downgrades it.
func (t *SlotTable) Ref(slot uint16, upvalue, isTable bool) Var {
	k := slotKey{slot: slot, upvalue: upvalue}
	if vi, ok := t.vars[k]; ok {
		vi.Uses++
		if isTable {
			vi.IsTable = true
		}
		return Var{Slot: slot, Upvalue: upvalue}
	}
	t.vars[k] = &VarInfo{Slot: slot, Upvalue: upvalue, IsTable: isTable, Uses: 1}
	t.order = append(t.order, k)
	return Var{Slot: slot, Upvalue: upvalue}
}

// Lookup returns the registered info for slot, if any.
func (t *SlotTable) Lookup(slot uint16, upvalue bool) (VarInfo, bool) {
	vi, ok := t.vars[slotKey{slot: slot, upvalue: upvalue}]
	if !ok {
		return VarInfo{}, false
	}
	return *vi, true
}

// Vars returns every registered slot's info in first-reference order.
func (t *SlotTable) Vars() []VarInfo {
	out := make([]VarInfo, len(t.order))
	for i, k := range t.order {
		out[i] = *t.vars[k]
	}
	return out
}
