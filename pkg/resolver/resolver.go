// Package resolver builds a basic-block control-flow graph from a flat
// bytecode instruction stream by recursive jump discovery: each offset
// reachable from entry is visited at most twice (once to open a new block,
// once to find it already exists), splitting a previously-emitted block
// whenever a later-discovered target lands inside it.
package resolver

import (
	"fmt"

	"github.com/oisee/bcdump/pkg/bcerr"
	"github.com/oisee/bcdump/pkg/graph"
	"github.com/oisee/bcdump/pkg/opcode"
)

// Block is a contiguous run of raw instruction words.
type Block struct {
	Data []uint32
}

// Len returns the number of instruction words in the block.
func (b Block) Len() int { return len(b.Data) }

// split truncates b to its first idx words in place and returns the
// remainder as a new Block.
func (b *Block) split(idx int) Block {
	tail := append([]uint32(nil), b.Data[idx:]...)
	b.Data = b.Data[:idx]
	return Block{Data: tail}
}

// BranchKind classifies a CFG edge.
type BranchKind int

const (
	True BranchKind = iota
	False
	Unconditional
	LoopBody
	LoopOut
	LoopIter
)

func (k BranchKind) String() string {
	switch k {
	case True:
		return "True"
	case False:
		return "False"
	case Unconditional:
		return "Unconditional"
	case LoopBody:
		return "LoopBody"
	case LoopOut:
		return "LoopOut"
	case LoopIter:
		return "LoopIter"
	default:
		return "invalid"
	}
}

// CFG is the basic-block control-flow graph produced by Resolve.
type CFG = graph.Graph[Block, BranchKind]

// Resolve constructs the CFG for one prototype's instruction array.
func Resolve(bc []uint32) (*CFG, error) {
	g := graph.New[Block, BranchKind]()
	if err := recurseBlock(g, bc, 0); err != nil {
		return nil, err
	}
	return g, nil
}

func jumpTarget(cur uint32, jump opcode.Jump) (uint32, error) {
	d := int64(cur) + 1 + int64(jump)
	if d < 0 {
		return 0, bcerr.New(bcerr.KindInvalidJumpTarget, fmt.Sprintf("jump target %d is negative", d))
	}
	return uint32(d), nil
}

// resolveBranchPair handles the common shape shared by ITERL/IITERL,
// FORI/JFORI and FORL/IFORL: emit the node ending at cur (inclusive),
// recurse on the jump destination adding destKind, then recurse on the
// fallthrough adding fallKind. Block resolution may itself split the block
// that was just opened, so the edge source is re-read via TryPrevNode after
// each recursive call rather than assumed to still be blockStart.
func resolveBranchPair(g *CFG, bc []uint32, blockStart, cur uint32, jump opcode.Jump, destKind, fallKind BranchKind) error {
	g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur+1]...)})

	dest, err := jumpTarget(cur, jump)
	if err != nil {
		return err
	}
	if err := recurseBlock(g, bc, dest); err != nil {
		return err
	}
	curStart, _ := g.TryPrevNode(cur)
	if _, err := g.AddEdge(destKind, curStart, dest); err != nil {
		return err
	}

	next := cur + 1
	if err := recurseBlock(g, bc, next); err != nil {
		return err
	}
	curStart, _ = g.TryPrevNode(cur)
	if _, err := g.AddEdge(fallKind, curStart, next); err != nil {
		return err
	}
	return nil
}

func recurseBlock(g *CFG, bc []uint32, idx uint32) error {
	if idx > uint32(len(bc)) {
		return bcerr.New(bcerr.KindInvalidJumpTarget, fmt.Sprintf("jump target %d is past end of bytecode (len %d)", idx, len(bc)))
	}

	if prevIdx, ok := g.TryPrevNode(idx); ok {
		if idx == prevIdx {
			return nil
		}
		dist := int(idx - prevIdx)
		block, _ := g.NodeWeight(prevIdx)
		if block.Len() > dist {
			if err := g.SplitNode(prevIdx, idx, func(b *Block) Block { return b.split(dist) }); err != nil {
				return err
			}
			if _, err := g.AddEdge(Unconditional, prevIdx, idx); err != nil {
				return err
			}
			return nil
		}
		// Falls through: idx lies at or past the end of the existing
		// block, so a fresh block must still be opened at idx.
	}

	blockStart := idx
	nextBlock, hasNext := g.TryNextNode(blockStart)
	prevCondIdx := -1

	for i := int(blockStart); i < len(bc); i++ {
		cur := uint32(i)
		if hasNext && cur == nextBlock {
			g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur]...)})
			if _, err := g.AddEdge(Unconditional, blockStart, cur); err != nil {
				return err
			}
			return nil
		}

		op, err := opcode.Decode(bc[i])
		if err != nil {
			return err
		}

		switch v := op.(type) {
		case opcode.ISLT, opcode.ISGE, opcode.ISLE, opcode.ISGT, opcode.ISEQV, opcode.ISNEV,
			opcode.ISEQS, opcode.ISNES, opcode.ISEQN, opcode.ISNEN, opcode.ISEQP, opcode.ISNEP,
			opcode.IST, opcode.ISF, opcode.ISTC, opcode.ISFC:
			_ = v
			prevCondIdx = i

		case opcode.ISNEXT:
			g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur+1]...)})
			dest, err := jumpTarget(cur, v.D)
			if err != nil {
				return err
			}
			if err := recurseBlock(g, bc, dest); err != nil {
				return err
			}
			curStart, _ := g.TryPrevNode(cur)
			if _, err := g.AddEdge(LoopIter, curStart, dest); err != nil {
				return err
			}
			return nil

		case opcode.ITERL:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopBody, LoopOut)
		case opcode.IITERL:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopBody, LoopOut)

		case opcode.FORI:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopOut, LoopBody)
		case opcode.JFORI:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopOut, LoopBody)

		case opcode.FORL:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopBody, LoopOut)
		case opcode.IFORL:
			return resolveBranchPair(g, bc, blockStart, cur, v.D, LoopBody, LoopOut)

		case opcode.JITERL:
			return bcerr.New(bcerr.KindUnexpectedInsOpcode, "JITERL is not supported by the resolver")
		case opcode.JFORL:
			return bcerr.New(bcerr.KindUnexpectedInsOpcode, "JFORL is not supported by the resolver")

		case opcode.UCLO:
			if v.D == 0 {
				// A zero-offset UCLO does not branch; keep scanning the
				// current block as if this instruction were unremarkable.
				continue
			}
			g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur+1]...)})
			dest, err := jumpTarget(cur, v.D)
			if err != nil {
				return err
			}
			if err := recurseBlock(g, bc, dest); err != nil {
				return err
			}
			curStart, _ := g.TryPrevNode(cur)
			if _, err := g.AddEdge(Unconditional, curStart, dest); err != nil {
				return err
			}
			return nil

		case opcode.JMP:
			g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur+1]...)})
			dest, err := jumpTarget(cur, v.D)
			if err != nil {
				return err
			}
			if err := recurseBlock(g, bc, dest); err != nil {
				return err
			}

			if prevCondIdx >= 0 && uint32(prevCondIdx+1) == cur {
				curStart, _ := g.TryPrevNode(cur)
				if _, err := g.AddEdge(True, curStart, dest); err != nil {
					return err
				}
				next := cur + 1
				if err := recurseBlock(g, bc, next); err != nil {
					return err
				}
				curStart, _ = g.TryPrevNode(cur)
				if _, err := g.AddEdge(False, curStart, next); err != nil {
					return err
				}
			} else {
				curStart, _ := g.TryPrevNode(cur)
				if _, err := g.AddEdge(Unconditional, curStart, dest); err != nil {
					return err
				}
			}
			return nil

		case opcode.RET, opcode.RET0, opcode.RET1, opcode.RETM:
			_ = v
			if i+2 <= len(bc) {
				if next, err := opcode.Decode(bc[i+1]); err == nil {
					if _, isJump := next.(opcode.JMP); isJump {
						continue
					}
				}
			}
			g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:cur+1]...)})
			return nil
		}
	}

	g.AddNode(blockStart, Block{Data: append([]uint32(nil), bc[blockStart:]...)})
	return nil
}
