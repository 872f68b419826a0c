package opt

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// Run drives the whole optimization stage for one function subgraph:
// ValuePromotion first (it needs program order, not the worklist),
// then the reducer-conforming passes to a shared fixed point, then the
// non-reducer memory allocation lowering. fpReg is the target's
// frame-pointer register number, threaded straight through to
// LowerMemAllocation.
func Run(g *ir.Graph, sg *ir.SubGraph, fpReg int) *FrameLayout {
	Promote(g, sg)
	reduce.Run(g, sg,
		Peephole{G: g},
		NewCSE(),
		MemoryNormalize{G: g},
		MemoryLegalize{G: g},
		DCE{G: g},
	)
	return LowerMemAllocation(g, sg, fpReg)
}
