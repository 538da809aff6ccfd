// Package ir translates a prototype's basic-block control-flow graph into a
// typed intermediate representation: a structurally identical CFG whose
// block payloads hold statement lists over a small expression language,
// with stack slots promoted to stable variable identities.
package ir

import (
	"github.com/oisee/bcdump/pkg/graph"
	"github.com/oisee/bcdump/pkg/resolver"
)

// Expr is any IR expression node.
type Expr interface{ isExpr() }

// Var references a stack slot, or — when Upvalue is set — an upvalue slot
// of the enclosing closure.
type Var struct {
	Slot    uint16
	Upvalue bool
}

// Str is a resolved string constant.
type Str struct{ Value []byte }

// Num references an entry of the prototype's numeric-constant pool.
type Num struct{ Index uint16 }

// Lit is a small unsigned literal carried directly in the instruction.
type Lit struct{ Value uint8 }

// Short is a signed 16-bit literal.
type Short struct{ Value int16 }

// UV is a raw upvalue index expression. The lifter does not emit it: upvalue
// reads and writes both use Var with Upvalue set.
type UV struct{ Index uint16 }

// CData references the prototype's cdata-constant pool.
type CData struct{ Index uint16 }

// Bool is a boolean literal.
type Bool struct{ Value bool }

// Nil is the nil literal.
type Nil struct{}

// Closure references a child prototype by its position in the dump's
// prototype list. Index is -1 if the reference could not be resolved.
type Closure struct{ ProtoIndex int }

// GlobalTable is the implicit global table `_G`.
type GlobalTable struct{}

// Lt, Ge, Le, Gt, Eq, Ne are binary comparison expressions.
type (
	Lt struct{ Left, Right Expr }
	Ge struct{ Left, Right Expr }
	Le struct{ Left, Right Expr }
	Gt struct{ Left, Right Expr }
	Eq struct{ Left, Right Expr }
	Ne struct{ Left, Right Expr }
)

// Not, Len, Minus are unary expressions.
type (
	Not   struct{ Operand Expr }
	Len   struct{ Operand Expr }
	Minus struct{ Operand Expr }
)

// Add, Sub, Mul, Div, Mod, Pow are binary arithmetic expressions.
type (
	Add struct{ Left, Right Expr }
	Sub struct{ Left, Right Expr }
	Mul struct{ Left, Right Expr }
	Div struct{ Left, Right Expr }
	Mod struct{ Left, Right Expr }
	Pow struct{ Left, Right Expr }
)

// Table indexes Container by Key.
type Table struct{ Container, Key Expr }

func (Var) isExpr()         {}
func (Str) isExpr()         {}
func (Num) isExpr()         {}
func (Lit) isExpr()         {}
func (Short) isExpr()       {}
func (UV) isExpr()          {}
func (CData) isExpr()       {}
func (Bool) isExpr()        {}
func (Nil) isExpr()         {}
func (Closure) isExpr()     {}
func (GlobalTable) isExpr() {}
func (Lt) isExpr()          {}
func (Ge) isExpr()          {}
func (Le) isExpr()          {}
func (Gt) isExpr()          {}
func (Eq) isExpr()          {}
func (Ne) isExpr()          {}
func (Not) isExpr()         {}
func (Len) isExpr()         {}
func (Minus) isExpr()       {}
func (Add) isExpr()         {}
func (Sub) isExpr()         {}
func (Mul) isExpr()         {}
func (Div) isExpr()         {}
func (Mod) isExpr()         {}
func (Pow) isExpr()         {}
func (Table) isExpr()       {}

// Stmt is any IR statement node.
type Stmt interface{ isStmt() }

// SetVars assigns Value to every variable in Vars (KNIL's range form writes
// more than one variable from a single instruction).
type SetVars struct {
	Vars  []Var
	Value Expr
}

// SetGlobalTableVar assigns Value to _G[Key].
type SetGlobalTableVar struct{ Key, Value Expr }

// SetTableVar assigns Value to Container[Key].
type SetTableVar struct{ Container, Key, Value Expr }

// Call invokes a function, binding Results from its return values.
type Call struct {
	Results []Var
	Args    []Expr
}

// TailCall invokes a function in tail position.
type TailCall struct{ Args []Expr }

// Cat concatenates Args into Dst.
type Cat struct {
	Dst  Var
	Args []Expr
}

// If guards the remainder of the block's control flow on Cond; the actual
// branch targets live on the CFG edges, not on this statement.
type If struct{ Cond Expr }

// For marks a numeric for-loop header with its start/stop/step operands.
type For struct{ Args []Expr }

// While marks a loop-condition test whose back edge is encoded on the CFG.
type While struct{ Cond Expr }

// Repeat marks a repeat-until loop's condition test.
type Repeat struct{ Cond Expr }

// Return exits the function with Args as return values.
type Return struct{ Args []Expr }

// Unimplemented stands in for an opcode this lifter declines to translate
// (out of scope, or with no representable IR value).
type Unimplemented struct{ Opcode string }

func (SetVars) isStmt()           {}
func (SetGlobalTableVar) isStmt() {}
func (SetTableVar) isStmt()       {}
func (Call) isStmt()              {}
func (TailCall) isStmt()          {}
func (Cat) isStmt()               {}
func (If) isStmt()                {}
func (For) isStmt()               {}
func (While) isStmt()             {}
func (Repeat) isStmt()            {}
func (Return) isStmt()            {}
func (Unimplemented) isStmt()     {}

// Block is one IR basic block: the statements lifted from the corresponding
// bytecode block, in order.
type Block struct {
	Stmts []Stmt
}

// CFG is the lifted control-flow graph: identical topology to the bytecode
// CFG, with Block payloads instead of raw instruction words.
type CFG = graph.Graph[Block, resolver.BranchKind]
