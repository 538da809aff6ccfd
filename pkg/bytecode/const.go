package bytecode

// Type codes for a prototype's global-constant pool entries. Any code
// greater than or equal to gcTypeStr encodes a string of length (code -
// gcTypeStr) bytes, so these are only the entries with a fixed shape.
const (
	gcTypeProtoChild uint32 = 0
	gcTypeTable      uint32 = 1
	gcTypeI64        uint32 = 2
	gcTypeU64        uint32 = 3
	gcTypeComplex    uint32 = 4
	gcTypeStr        uint32 = 5
)

// Type codes for constant-table array/hash entries; the same tag-minus-5
// string convention applies from tableValStr upward.
const (
	tableValNil   uint32 = 0
	tableValFalse uint32 = 1
	tableValTrue  uint32 = 2
	tableValInt   uint32 = 3
	tableValNum   uint32 = 4
	tableValStr   uint32 = 5
)

// GlobalConstKind discriminates a GlobalConst's variant.
type GlobalConstKind int

const (
	GCProtoChild GlobalConstKind = iota
	GCTable
	GCI64
	GCU64
	GCComplex
	GCStr
)

// GlobalConst is a per-prototype global-constant pool entry. Only the
// fields relevant to Kind are populated.
type GlobalConst struct {
	Kind GlobalConstKind

	// ProtoChild: index into the dump's already-loaded prototype list.
	ProtoChildIndex int

	// Table.
	Table ConstTable

	// I64/U64: (lo, hi) ULEB128 halves, stored as read without sign
	// interpretation (that is a pretty-printer concern).
	Lo, Hi uint32

	// Complex: (re_lo, re_hi, im_lo, im_hi).
	ReLo, ReHi, ImLo, ImHi uint32

	// Str: raw bytes, retained losslessly.
	Str []byte
}

// ConstTable is a literal table constant: an ordered array part and an
// ordered hash part of key/value pairs.
type ConstTable struct {
	Array []ConstTableVal
	Hash  []ConstTableEntry
}

// ConstTableEntry is one key/value pair of a table's hash part.
type ConstTableEntry struct {
	Key, Value ConstTableVal
}

// ConstTableValKind discriminates a ConstTableVal's variant.
type ConstTableValKind int

const (
	TVNil ConstTableValKind = iota
	TVTrue
	TVFalse
	TVInt
	TVNum
	TVStr
)

// ConstTableVal is a single array or hash entry of a ConstTable.
type ConstTableVal struct {
	Kind   ConstTableValKind
	Int    uint32
	Lo, Hi uint32 // Num: (lo, hi)
	Str    []byte
}

// NumConstKind discriminates a NumConst's variant.
type NumConstKind int

const (
	NCInt NumConstKind = iota
	NCNum
)

// NumConst is a numeric-constant pool entry: either a plain integer or a
// double stored as (lo, hi) 32-bit halves.
type NumConst struct {
	Kind   NumConstKind
	Int    uint32
	Lo, Hi uint32
}
