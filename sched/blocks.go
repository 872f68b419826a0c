package sched

import "github.com/gross-lang/gross/ir"

// isFixNode reports whether op is one of the six opcodes that get a
// dedicated block of their own: Start, End, Merge, Loop, the branch
// node If, and Return. IfTrue/IfFalse deliberately are not fix nodes --
// they are single-control-input projections that join whatever block
// the chain eventually reaches.
func isFixNode(op ir.Opcode) bool {
	switch op {
	case ir.OpStart, ir.OpEnd, ir.OpMerge, ir.OpLoop, ir.OpIf, ir.OpReturn:
		return true
	}
	return false
}

// isHeaderFix reports the fix nodes that open a block: nothing in the
// block can execute before them.
func isHeaderFix(op ir.Opcode) bool {
	return op == ir.OpStart || op == ir.OpMerge || op == ir.OpLoop
}

// isTerminatorFix reports the fix nodes that close a block.
func isTerminatorFix(op ir.Opcode) bool {
	return op == ir.OpIf || op == ir.OpReturn || op == ir.OpEnd
}

// assignFixBlocks gives every fix node in nodes its own Block.
func assignFixBlocks(nodes []*ir.Node) map[*ir.Node]*Block {
	blockOf := make(map[*ir.Node]*Block)
	id := 0
	for _, n := range nodes {
		if !isFixNode(n.Op) {
			continue
		}
		b := &Block{ID: id, Nodes: []*ir.Node{n}}
		id++
		blockOf[n] = b
	}
	return blockOf
}

// assignPhiBlocks pins every Phi directly to its Merge/Loop's own
// block, ahead of the general floating-node placement pass. A Phi and
// one of its own value inputs routinely reference each other (the
// back-edge of a loop-carried accumulator: the Phi takes the updated
// value as an input, and that updated value takes the Phi as an input
// in turn), which placeFloating's reverse-topological peel over the
// "user" relation can never resolve on its own -- each side is waiting
// for the other. Anchoring Phi to its Merge directly, before that peel
// starts, breaks the cycle: the accumulator update is left as an
// ordinary floating node whose placement (LCA of its now-resolved Phi
// user, plus any others) no longer has anything to wait on circularly.
func assignPhiBlocks(nodes []*ir.Node, blockOf map[*ir.Node]*Block) {
	for _, n := range nodes {
		if n.Op != ir.OpPhi {
			continue
		}
		b := blockOf[ir.AsPhi(n).Merge()]
		blockOf[n] = b
		b.Nodes = append(b.Nodes, n)
	}
}

// nearestFixPredecessor walks from a fix node's control input to the
// fix node that precedes it, passing through IfTrue/IfFalse projections
// -- block-to-block edges follow the control inputs of the fix nodes,
// and IfTrue/IfFalse carry exactly one control input, the If they
// project from, so the walk is never more than one hop.
func nearestFixPredecessor(n *ir.Node) *ir.Node {
	if isFixNode(n.Op) {
		return n
	}
	if n.Op.IsIfBranch() {
		return nearestFixPredecessor(n.ControlInput(0))
	}
	for _, c := range n.ControlInputs() {
		if f := nearestFixPredecessor(c); f != nil {
			return f
		}
	}
	return nil
}

// nearestFixSuccessor is nearestFixPredecessor's mirror image: it walks
// forward from an IfTrue/IfFalse projection through its single control
// user until it reaches the fix node that owns the block the branch
// arm leads to. Used by IfTargets, which postlower needs to tell which
// of an If's two successor blocks is the true arm and which the false.
func nearestFixSuccessor(n *ir.Node) *ir.Node {
	if isFixNode(n.Op) {
		return n
	}
	for _, u := range n.Users() {
		if u.IsDead() {
			continue
		}
		if f := nearestFixSuccessor(u); f != nil {
			return f
		}
	}
	return nil
}

// IfTargets returns the blocks reached by ifNode's true and false arms.
func (s *Schedule) IfTargets(ifNode *ir.Node) (trueBlock, falseBlock *Block) {
	for _, u := range ifNode.Users() {
		switch u.Op {
		case ir.OpIfTrue:
			trueBlock = s.blockOf[nearestFixSuccessor(u)]
		case ir.OpIfFalse:
			falseBlock = s.blockOf[nearestFixSuccessor(u)]
		}
	}
	return
}

// connectBlocks wires Preds/Succs between fix-node blocks, preserving
// each fix node's own ControlInputs() order in Preds -- that order is
// load-bearing: Phi value inputs line up positionally with their
// Merge's control inputs, and regalloc's PHI legalization inserts moves
// at the tail of the predecessor block matching that same position.
func connectBlocks(blockOf map[*ir.Node]*Block) {
	for n, b := range blockOf {
		for _, c := range n.ControlInputs() {
			pred := nearestFixPredecessor(c)
			if pred == nil {
				continue
			}
			pb := blockOf[pred]
			b.Preds = append(b.Preds, pb)
			pb.Succs = append(pb.Succs, b)
		}
	}
}
