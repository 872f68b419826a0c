package postlower

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// lowerBranches replaces each If fix node with a single conditional DLX
// branch targeting whichever of its two arms isn't the RPO-adjacent
// (fallthrough) block.
func lowerBranches(g *ir.Graph, s *sched.Schedule) {
	for _, b := range s.Blocks {
		fix := b.Fix()
		if fix == nil || fix.Op != ir.OpIf {
			continue
		}

		trueBlock, falseBlock := s.IfTargets(fix)
		target, invert := selectTarget(b, trueBlock, falseBlock)

		comparand, branchOpcode := comparisonFor(g, ir.AsIf(fix).Condition())
		if invert {
			// target is the false arm -- invert the relation so the
			// branch still fires exactly when the condition is false.
			branchOpcode = invertBranch[branchOpcode]
		}

		branch := ir.NewDLXBranch(g, branchOpcode).
			Compared(comparand).
			TargetBlock(target.RPO).
			Control(ir.AsIf(fix).Control()).
			Build()

		s.ReplaceNode(b, fix, branch)
		ir.Kill(fix, g.DeadSentinel())
	}
}

// selectTarget picks the branch's actual target block -- whichever arm
// is not adjacent in reverse postorder, since the adjacent one falls
// through without needing an explicit transfer. The scheduler always
// places one of an If's two arms immediately after it
// in RPO; a block with neither arm adjacent would mean the scheduler
// produced a CFG this lowering doesn't know how to serialize linearly.
// The second return value reports whether the false arm was selected,
// signaling the caller to invert the comparison.
func selectTarget(b *sched.Block, trueBlock, falseBlock *sched.Block) (target *sched.Block, invert bool) {
	adjacent := b.RPO + 1
	switch {
	case trueBlock.RPO == adjacent:
		return falseBlock, true
	case falseBlock.RPO == adjacent:
		return trueBlock, false
	default:
		ir.Fatalf("branch lowering: neither arm of block %d's If is RPO-adjacent", b.RPO)
		return nil, false
	}
}

// comparisonFor resolves predicate into a DLX branch opcode and the
// single value it compares against zero, synthesizing whatever
// normalization the DLX ISA's zero-compare-only branches require.
func comparisonFor(g *ir.Graph, predicate *ir.Node) (comparand *ir.Node, branchOp ir.Opcode) {
	if !predicate.Op.IsRelational() {
		zero := ir.ConstantInt(g, 0)
		predicate = ir.NewBinOp(g, ir.OpBinNe).LHS(predicate).RHS(zero).Build()
	}

	view := ir.AsBinOp(predicate)
	lhs, rhs := view.LHS(), view.RHS()
	branchOp = relationBranch[predicate.Op]

	if rhs.Op == ir.OpConstantInt && rhs.IntValue == 0 {
		return lhs, branchOp
	}
	return ir.NewDLXBinOp(g, ir.OpDLXSub).LHS(lhs).RHS(rhs).Build(), branchOp
}

// insertUnconditionalJumps appends an explicit jump to every block whose
// single successor isn't its reverse-postorder-adjacent block -- the
// case an If's branch target (selectTarget's fallthrough arm) and every
// Merge/Loop header whose layout position doesn't match control flow
// both produce.
func insertUnconditionalJumps(g *ir.Graph, s *sched.Schedule) {
	for _, b := range s.Blocks {
		if len(b.Succs) != 1 {
			continue
		}
		succ := b.Succs[0]
		if succ.RPO == b.RPO+1 {
			continue
		}
		r0 := ir.NewDLXRegister(g, 0)
		jmp := ir.NewDLXUnconditionalJump(g, r0, succ.RPO, nil)
		s.AppendNode(b, jmp)
	}
}
