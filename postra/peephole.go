package postra

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// visitBlock walks a snapshot of b's current nodes (not b.Nodes itself,
// since trimming mutates it mid-walk) and dispatches each one to the
// peephole that might collapse it, reporting whether anything changed
// this pass.
func visitBlock(s *sched.Schedule, b *sched.Block) bool {
	nodes := append([]*ir.Node(nil), b.Nodes...)

	changed := false
	for _, n := range nodes {
		switch n.Op {
		case ir.OpDLXAdd, ir.OpDLXAddI:
			changed = visitDLXAdd(s, b, n) || changed
		case ir.OpPhi, ir.OpMerge, ir.OpVirtDLXCallsiteBegin, ir.OpVirtDLXCallsiteEnd:
			changed = trimNode(s, b, n) || changed
		}
	}
	return changed
}

// trimNode unschedules n unconditionally -- it's scaffolding (a PHI,
// the Merge it fed, or a callsite marker) that exists purely to carry
// information to an earlier pass and has nothing left to do once
// register allocation has run.
func trimNode(s *sched.Schedule, b *sched.Block, n *ir.Node) bool {
	s.RemoveNode(b, n)
	return true
}

// visitDLXAdd deletes n if it is a fully committed three-address
// `AddI dest, dest, #0` (or register-register `Add`) with no effect:
// dest already holds src1, and src2 contributes nothing. This is
// exactly the shape regalloc.legalizePhiInputs's moves collapse to
// once location-sharing (regalloc.Allocator.assign) assigns a PHI and
// its producer the same register -- the move becomes a no-op in
// place, not a real data transfer.
func visitDLXAdd(s *sched.Schedule, b *sched.Block, n *ir.Node) bool {
	if n.NumValueInput() != 3 {
		return false
	}
	src1, src2, dest := n.ValueInput(0), n.ValueInput(1), n.ValueInput(2)
	if !isZero(src2) || src1 != dest {
		return false
	}
	s.RemoveNode(b, n)
	return true
}

// isZero reports whether v is the hardwired zero register or a literal
// zero constant.
func isZero(v *ir.Node) bool {
	if v.Op.IsDLXRegister() {
		return v.RegNum == 0
	}
	return v.Op == ir.OpConstantInt && v.IntValue == 0
}
