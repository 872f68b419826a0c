package regalloc

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// legalizePhiInputs inserts an `AddI val, #0` move at the tail of each
// of phi's two predecessor blocks and rewrites phi's corresponding
// input to the move (PHI legalization), so every phi
// input lives in an assignable, non-constant node by the time
// assignment runs.
//
// This is restricted to Phis with exactly two value inputs,
// matching PL/0's if/else and while being the only two ways a Merge
// can arise; a Phi with any other count is a builder precondition
// violation this package refuses to paper over.
//
// Reads predecessor-block order from the phi's Merge node, not from
// the phi's own scheduled block: the Merge's control inputs align
// position-wise with the phi's value inputs, so that order is the one
// guaranteed to line values up with the right predecessor.
func legalizePhiInputs(g *ir.Graph, s *sched.Schedule, phi *ir.Node) {
	view := ir.AsPhi(phi)
	values := view.Values()
	if len(values) != 2 {
		ir.Fatalf("regalloc: PHI legalization only supports binary merges, got %d value inputs on %s", len(values), phi)
	}

	mergeBlock := s.BlockOf(view.Merge())
	preds := mergeBlock.Preds
	if len(preds) != 2 {
		ir.Fatalf("regalloc: %s's Merge has %d predecessor blocks, want 2", phi, len(preds))
	}

	zero := ir.ConstantInt(g, 0)
	for i, val := range values {
		move := ir.NewDLXBinOp(g, ir.OpDLXAddI).LHS(val).RHS(zero).Build()
		appendBeforeTerminator(s, preds[i], move)
		ir.SetInput(phi, i, move, ir.KindValue)
	}
}

// appendBeforeTerminator splices n in just before b's terminator, or
// appends it if b has none: regalloc runs after post-machine lowering,
// which leaves fallthrough-only blocks with no explicit terminator, so
// that case is real and not just a defensive fallback.
func appendBeforeTerminator(s *sched.Schedule, b *sched.Block, n *ir.Node) {
	if len(b.Nodes) > 0 && b.Nodes[len(b.Nodes)-1].Op.IsDLXTerminate() {
		s.AddNodeBefore(b, b.Nodes[len(b.Nodes)-1], n)
		return
	}
	s.AppendNode(b, n)
}
