package postlower

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// trim removes the control-skeleton nodes now redundant once block
// layout and explicit branches encode control flow: If, Loop, IfTrue,
// IfFalse, Merge, and any Phi with no value inputs (an effect-only Phi
// threading memory ordering through a join, rather than a real SSA
// value -- its job was done the moment MemoryLegalize/MemoryNormalize
// ran in package opt).
func trim(s *sched.Schedule) {
	for _, b := range s.Blocks {
		var kept []*ir.Node
		for _, n := range b.Nodes {
			if shouldTrim(n) {
				continue
			}
			kept = append(kept, n)
		}
		b.Nodes = kept
	}
}

func shouldTrim(n *ir.Node) bool {
	switch n.Op {
	case ir.OpIf, ir.OpLoop, ir.OpIfTrue, ir.OpIfFalse, ir.OpMerge:
		return true
	case ir.OpPhi:
		return ir.AsPhi(n).IsEffectOnly()
	}
	return false
}
